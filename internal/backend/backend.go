// Package backend builds the configured persistence stack. Backend
// selection happens here and only here; everything downstream sees the
// store ports.
package backend

import (
	"fmt"

	"fintracker/internal/amqp"
	"fintracker/internal/config"
	"fintracker/internal/log"
	"fintracker/internal/services"
	"fintracker/internal/storage"
	"fintracker/internal/store/memory"
)

// Type selects the expense store implementation.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	return t == Memory || t == SQLite
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result is the composed expense service plus its cleanup.
type Result struct {
	Service *services.ExpenseService
	Cleanup CleanupFunc
}

// Build assembles the store and optional AMQP publisher described by the
// config and wires them into an expense service.
func Build(cfg *config.Config, logger *log.Logger) (*Result, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
	logger = logger.WithComponent(log.ComponentBackend)

	var publisher services.EventPublisher
	var cleanups []func() error

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are an optional enrichment; the service runs without them.
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			publisher = client
			cleanups = append(cleanups, client.Close)
		}
	}

	var svc *services.ExpenseService
	switch backendType {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		cleanups = append(cleanups, repo.Close)
		svc = services.NewExpenseService(repo, publisher)
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath, "amqp_enabled", publisher != nil)
	case Memory:
		svc = services.NewExpenseService(memory.New(), publisher)
		logger.Info("Initialized memory backend", "amqp_enabled", publisher != nil)
	}

	return &Result{
		Service: svc,
		Cleanup: func() error {
			var firstErr error
			for _, c := range cleanups {
				if err := c(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		},
	}, nil
}
