package server

import (
	"net/http"

	"Spitbox/logger"
)

// ResetDBHandler drops and recreates every table. Requires the Admin-Secret header.
func (h *APIHandler) ResetDBHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Authorize(r.Header.Get("Admin-Secret")); err != nil {
		logger.Warn("Rejected admin request", logger.String("path", r.URL.Path), logger.String("remote", r.RemoteAddr))
		writeError(w, r, err)
		return
	}
	if err := h.admin.ResetDB(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Warn("Database reset through admin endpoint", logger.String("remote", r.RemoteAddr))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Database reset successfully"})
}
