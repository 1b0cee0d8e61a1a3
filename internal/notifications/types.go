package notifications

import (
	"fmt"
	"time"

	"github.com/ziadkadry99/toolprobe/internal/history"
)

// Severity indicates the importance of a notification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a configured severity threshold. Empty means warning.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case "":
		return SeverityWarning, nil
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("unknown severity %q: must be info, warning or critical", s)
	}
}

// Notification is the JSON body posted to webhook subscribers. Text makes
// the payload readable by Slack-style incoming webhooks as-is.
type Notification struct {
	ID        string         `json:"id"`
	Severity  Severity       `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Text      string         `json:"text"`
	Run       history.Run    `json:"run"`
	Status    history.Status `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// severityFor maps a run outcome to a notification severity.
func severityFor(s history.Status) Severity {
	switch s {
	case history.StatusOK:
		return SeverityInfo
	case history.StatusEmpty:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

// FromRun builds the notification for a completed run.
func FromRun(run history.Run) Notification {
	title := fmt.Sprintf("toolprobe %s: %s/%s", run.Status, run.Provider, run.Model)

	var msg string
	switch run.Status {
	case history.StatusOK:
		msg = fmt.Sprintf("Smoke run succeeded in %s (%d in / %d out tokens, $%.6f).",
			run.Duration.Round(time.Millisecond), run.InputTokens, run.OutputTokens, run.CostUSD)
	case history.StatusEmpty:
		msg = "Smoke run returned an empty response."
	default:
		msg = "Smoke run failed: " + run.Error
	}

	return Notification{
		ID:        run.ID,
		Severity:  severityFor(run.Status),
		Title:     title,
		Message:   msg,
		Text:      title + "\n" + msg,
		Run:       run,
		Status:    run.Status,
		CreatedAt: time.Now().UTC(),
	}
}
