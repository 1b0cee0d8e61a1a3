package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/toolprobe/internal/dashboard"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/scheduler"
	"github.com/ziadkadry99/toolprobe/internal/server"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

var (
	serverPort     int
	serverSchedule string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server with run history, live feed and scheduled checks",
	Long: `Starts an HTTP server exposing run history (/api/runs), on-demand runs
(POST /api/runs), a dashboard (/) with a live websocket feed (/ws/runs) and,
with --schedule, periodic smoke checks driven by a cron expression.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("schedule") {
			cfg.Server.Schedule = serverSchedule
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return err
		}

		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		hub := dashboard.NewHub()
		opts := []smoke.Option{
			smoke.WithRecorder(store),
			smoke.WithNotify(hub.Broadcast),
		}
		opts = append(opts, webhookOptions(cfg)...)
		runner := smoke.NewRunner(provider, cfg, opts...)

		// Leave headroom over the provider timeout so a triggered run
		// reports its own error instead of the middleware's.
		requestTimeout := time.Duration(0)
		if cfg.Timeout() > 0 {
			requestTimeout = cfg.Timeout() + 10*time.Second
		}

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowAll:       cfg.Server.AllowAll,
			RequestTimeout: requestTimeout,
		}, database, runner)

		// Register feature routes.
		r := srv.Router()
		history.RegisterRoutes(r, store)
		dashboard.New(hub, store, runner).RegisterRoutes(r)

		var sched *scheduler.Scheduler
		if cfg.Server.Schedule != "" {
			sched = scheduler.New(runner, cfg.Timeout())
			if err := sched.Schedule(cfg.Server.Schedule); err != nil {
				return err
			}
			sched.Start()
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			if sched != nil {
				<-sched.Stop().Done()
			}
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "toolprobe server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)
		fmt.Fprintf(os.Stderr, "  History:  %s\n", database.Path())
		if n := len(cfg.Notify.Webhooks); n > 0 {
			fmt.Fprintf(os.Stderr, "  Webhooks: %d\n", n)
		}
		if sched != nil {
			fmt.Fprintf(os.Stderr, "  Schedule: %s (next run %s)\n", cfg.Server.Schedule, sched.Next().Format(time.RFC3339))
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides server.port)")
	serverCmd.Flags().StringVar(&serverSchedule, "schedule", "", `cron expression for periodic runs, e.g. "*/15 * * * *" or "@every 1h"`)
	rootCmd.AddCommand(serverCmd)
}
