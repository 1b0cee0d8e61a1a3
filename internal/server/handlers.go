package server

import (
	"errors"
	"net/http"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			history.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	history.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTriggerRun performs one smoke run and returns the recorded run.
// An empty response is reported with 201 and status "empty"; a failed
// provider call with 502.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		history.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "runner not configured"})
		return
	}

	res, err := s.runner.Run(r.Context(), history.SourceServer)
	if res == nil {
		history.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if err != nil && !errors.Is(err, smoke.ErrEmptyResponse) {
		status = http.StatusBadGateway
	}
	history.WriteJSON(w, status, res.Run)
}
