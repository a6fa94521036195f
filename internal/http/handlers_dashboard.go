package http

import (
	"net/http"

	applog "fintracker/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.scopedUserID(w, r)
	if !ok {
		return
	}

	if summary, hit := s.dashCache.Get(userID); hit {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.service.Dashboard(r.Context(), userID, s.now())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashCache.Set(userID, summary)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Dashboard computed",
		applog.FieldUserID, userID)
	writeJSON(w, http.StatusOK, summary)
}
