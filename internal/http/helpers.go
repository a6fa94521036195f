package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintracker/internal/auth"
	"fintracker/internal/core"
	applog "fintracker/internal/log"
	"fintracker/internal/store"
)

const maxBodyBytes = 1 << 20 // 1MB

type identityKey struct{}

func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// writeStoreError translates store and validation failures into responses:
// validation with field context, not-found, and a generic server error for
// everything else.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case isValidationError(err):
		writeFieldError(w, http.StatusUnprocessableEntity, validationMessage(err), fieldFor(err))
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Store operation failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isValidationError(err error) bool {
	return fieldFor(err) != ""
}

func fieldFor(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingUserID):
		return "userId"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrUnknownCategory):
		return "category"
	case errors.Is(err, core.ErrMissingDate):
		return "date"
	case errors.Is(err, core.ErrLongDescription):
		return "description"
	default:
		return ""
	}
}

func validationMessage(err error) string {
	for _, sentinel := range []error{
		core.ErrMissingUserID, core.ErrInvalidAmount, core.ErrUnknownCategory,
		core.ErrMissingDate, core.ErrLongDescription,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// bearerToken pulls the token from the Authorization header, falling back
// to the token query parameter used by /auth/verify.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i > 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// decimalString accepts either a JSON number or string, keeping the raw
// decimal text so the store re-parses it.
type decimalString string

func (d *decimalString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "null" {
		s = ""
	}
	*d = decimalString(strings.TrimSpace(s))
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
