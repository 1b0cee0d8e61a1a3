package cmd

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/toolprobe/internal/config"
	"github.com/ziadkadry99/toolprobe/internal/db"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/llm"
	"github.com/ziadkadry99/toolprobe/internal/notifications"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `toolprobe init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.ProviderOptions())
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

// openHistory opens the run history database named in the config.
func openHistory(cfg *config.Config) (*db.DB, *history.Store, error) {
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history %s: %w", cfg.HistoryDB, err)
	}
	return database, history.NewStore(database), nil
}

// openHistoryOrWarn is openHistory for paths where recording is optional.
// It returns nils and prints a warning instead of failing.
func openHistoryOrWarn(cfg *config.Config) (*db.DB, *history.Store) {
	database, store, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; runs will not be recorded\n", err)
		return nil, nil
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Recording runs to %s\n", cfg.HistoryDB)
	}
	return database, store
}

// webhookOptions returns the runner option that posts run notifications to
// the configured webhooks, or nothing when none are configured.
func webhookOptions(cfg *config.Config) []smoke.Option {
	if len(cfg.Notify.Webhooks) == 0 {
		return nil
	}
	severity, err := notifications.ParseSeverity(cfg.Notify.MinSeverity)
	if err != nil {
		severity = notifications.SeverityWarning
	}
	d := notifications.NewDispatcher(cfg.Notify.Webhooks, severity)
	return []smoke.Option{smoke.WithNotify(d.Notify)}
}
