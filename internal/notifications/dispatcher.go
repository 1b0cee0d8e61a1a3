package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ziadkadry99/toolprobe/internal/history"
)

// Dispatcher delivers run notifications to webhook subscribers.
type Dispatcher struct {
	webhooks    []string
	minSeverity Severity
	client      *http.Client
}

// NewDispatcher creates a Dispatcher that posts notifications at or above
// minSeverity to every webhook URL.
func NewDispatcher(webhooks []string, minSeverity Severity) *Dispatcher {
	return &Dispatcher{
		webhooks:    webhooks,
		minSeverity: minSeverity,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify is a smoke.WithNotify callback: it dispatches the run's
// notification and logs delivery failures.
func (d *Dispatcher) Notify(run history.Run) {
	n := FromRun(run)
	if !severityMatches(n.Severity, d.minSeverity) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
	defer cancel()
	if err := d.Dispatch(ctx, n); err != nil {
		log.Printf("notifications: %v", err)
	}
}

// Dispatch sends n to every webhook and returns the combined delivery errors.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	var errs []error
	for _, url := range d.webhooks {
		if err := d.SendWebhook(ctx, url, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// severityMatches returns true if the notification severity meets or exceeds the filter threshold.
func severityMatches(actual, filter Severity) bool {
	levels := map[Severity]int{
		SeverityInfo:     0,
		SeverityWarning:  1,
		SeverityCritical: 2,
	}
	return levels[actual] >= levels[filter]
}
