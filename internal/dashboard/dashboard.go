package dashboard

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// Runner triggers one smoke run. *smoke.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, source history.Source) (*smoke.Result, error)
}

// Dashboard provides the run dashboard and its live feed.
type Dashboard struct {
	hub    *Hub
	store  *history.Store
	runner Runner
}

// New creates a new Dashboard. runner may be nil, in which case clients
// cannot trigger runs over the websocket.
func New(hub *Hub, store *history.Store, runner Runner) *Dashboard {
	return &Dashboard{
		hub:    hub,
		store:  store,
		runner: runner,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
	r.Get("/ws/runs", d.handleWebSocket)
}
