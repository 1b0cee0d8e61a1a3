package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides feedback while a blocking request is in flight.
type Reporter interface {
	Start(description string)
	Finish(message string)
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set. Output goes to w,
// which should be stderr so stdout carries only the response.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: w}
	}
	return &TerminalReporter{w: w}
}

// TerminalReporter displays a spinner in the terminal.
type TerminalReporter struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	stop chan struct{}
	wg   sync.WaitGroup
}

func (r *TerminalReporter) Start(description string) {
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				_ = r.bar.Add(1)
			}
		}
	}()
}

func (r *TerminalReporter) Finish(message string) {
	if r.bar == nil {
		return
	}
	close(r.stop)
	r.wg.Wait()
	_ = r.bar.Finish()
	r.bar = nil
	if message != "" {
		fmt.Fprintln(r.w, message)
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w       io.Writer
	started time.Time
}

func (r *CIReporter) Start(description string) {
	r.started = time.Now()
	fmt.Fprintf(r.w, "%s\n", description)
}

func (r *CIReporter) Finish(message string) {
	elapsed := time.Since(r.started).Round(time.Millisecond)
	if message == "" {
		message = "done"
	}
	fmt.Fprintf(r.w, "%s (%s)\n", message, elapsed)
}

// Nop discards all progress output.
type Nop struct{}

func (Nop) Start(string)  {}
func (Nop) Finish(string) {}
