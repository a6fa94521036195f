package http

import (
	"net/http"
	"strconv"
	"strings"

	"fintracker/internal/core"
	applog "fintracker/internal/log"
	"fintracker/internal/store"
)

type createExpenseRequest struct {
	UserID      string         `json:"userId"`
	Amount      *decimalString `json:"amount"`
	Category    core.Category  `json:"category"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
}

type updateExpenseRequest struct {
	Amount      *decimalString `json:"amount"`
	Category    *core.Category `json:"category"`
	Description *string        `json:"description"`
	Date        *string        `json:"date"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type expenseResponse struct {
	Success bool         `json:"success"`
	Expense core.Expense `json:"expense"`
}

// scopedUserID returns the userId query parameter after checking it
// against the token identity.
func (s *Server) scopedUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID required")
		return "", false
	}
	if identity, ok := identityFrom(r.Context()); !ok || identity.Username != userID {
		writeError(w, http.StatusUnauthorized, "Token does not match user")
		return "", false
	}
	return userID, true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.scopedUserID(w, r)
	if !ok {
		return
	}

	var filter store.Filter
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	if monthStr != "" && yearStr != "" {
		month, errM := strconv.Atoi(monthStr)
		year, errY := strconv.Atoi(yearStr)
		if errM != nil || errY != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month or year")
			return
		}
		filter = store.Filter{Month: month, Year: year}
	}

	expenses, err := s.service.List(r.Context(), userID, filter)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.Expense{"expenses": expenses})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if identity, ok := identityFrom(r.Context()); !ok || identity.Username != req.UserID {
		writeError(w, http.StatusUnauthorized, "Token does not match user")
		return
	}
	if req.Amount == nil || *req.Amount == "" {
		writeFieldError(w, http.StatusUnprocessableEntity, "amount is required", "amount")
		return
	}
	amount, err := core.ParseMoney(string(*req.Amount))
	if err != nil {
		writeFieldError(w, http.StatusUnprocessableEntity, "invalid amount", "amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeFieldError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD", "date")
		return
	}

	expense := core.Expense{
		UserID:      req.UserID,
		Amount:      amount,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}
	stored, err := s.service.Create(r.Context(), expense)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.invalidateDashboard(stored.UserID)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, stored.ID,
		applog.FieldUserID, stored.UserID,
		applog.FieldAmountCents, stored.Amount.Cents,
		applog.FieldCategory, stored.Category)
	writeJSON(w, http.StatusOK, expenseResponse{Success: true, Expense: stored})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := store.Patch{
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Amount != nil {
		raw := string(*req.Amount)
		patch.Amount = &raw
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeFieldError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD", "date")
			return
		}
		patch.Date = &date
	}

	// The store scopes the mutation by owner, so a foreign id comes back
	// as not found.
	updated, err := s.service.Update(r.Context(), identity.Username, id, patch)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.invalidateDashboard(updated.UserID)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	removed, err := s.service.Remove(r.Context(), identity.Username, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.invalidateDashboard(removed.UserID)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
