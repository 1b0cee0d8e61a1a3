package dashboard

import (
	"net/http"

	"github.com/ziadkadry99/toolprobe/internal/history"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	history.Summary
	Clients int `json:"clients"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := d.store.Summarize(r.Context())
	if err != nil {
		history.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	history.WriteJSON(w, http.StatusOK, statsResponse{
		Summary: *sum,
		Clients: d.hub.Count(),
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	runs, err := d.store.List(r.Context(), history.Filter{Limit: 10})
	if err != nil {
		history.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}

	history.WriteJSON(w, http.StatusOK, runs)
}
