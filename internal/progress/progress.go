// Package progress draws progress bars and spinners on stderr for the slow
// stages of a run: cloning a remote and analyzing files.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker is a progress bar, or a spinner when the total is unknown.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithWriter draws on w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(t *Tracker) { t.out = w }
}

// Quiet discards all output.
func Quiet() Option {
	return WithWriter(io.Discard)
}

func newTracker(label string, opts []Option) *Tracker {
	t := &Tracker{label: label, out: os.Stderr}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewSpinner creates a spinner for work of unknown size.
func NewSpinner(label string, opts ...Option) *Tracker {
	t := newTracker(label, opts)
	t.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionClearOnFinish(),
	)
	return t
}

// NewTracker creates a bar counting up to total files.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	t := newTracker(label, opts)
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)
	return t
}

// Tick advances by one. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Write swallows p and ticks once, so a Tracker can stand in for the
// progress stream of a git clone.
func (t *Tracker) Write(p []byte) (int, error) {
	t.Tick()
	return len(p), nil
}

// Count returns the number of ticks so far.
func (t *Tracker) Count() int {
	return int(t.bar.State().CurrentNum)
}

// Finish removes the bar.
func (t *Tracker) Finish() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishSkipped removes the bar and reports skipped files, if any.
func (t *Tracker) FinishSkipped(skipped int) {
	t.Finish()
	if skipped > 0 {
		fmt.Fprintf(t.out, "  %s: %d file(s) skipped\n", t.label, skipped)
	}
}

// FinishError removes the bar and reports err.
func (t *Tracker) FinishError(err error) {
	t.Finish()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
