package http

import (
	"sync"
	"time"
)

const (
	mutationsPerMinute = 60
	staleClientAfter   = 10 * time.Minute
)

// rateLimiter caps mutating requests per client IP. Counters reset a
// minute after the client's last burst started; stale clients are swept
// periodically.
type rateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientInfo
	stopCh   chan struct{}
	stopOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientInfo),
		stopCh:  make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, ok := rl.clients[ip]
	if !ok {
		rl.clients[ip] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= mutationsPerMinute
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-staleClientAfter)
			for ip, client := range rl.clients {
				if client.lastRequest.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}
