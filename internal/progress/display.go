// Package progress renders per-contract progress for the quacker CLI.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// TerminalCapabilities describes what the output terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// ProgressSymbols are the markers printed for finished checks.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int
}

// Display prints one line per finished check, with a spinner while a
// check is running on a TTY.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewDisplay creates a display writing to out.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{out: out, caps: caps, symbols: SelectSymbols(caps)}
}

// Start marks the named check as running.
func (d *Display) Start(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.caps.IsTTY {
		return
	}
	d.stopSpinner()
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
	d.spin.Suffix = " checking " + name
	d.spin.Start()
}

// Finish prints the outcome of the named check.
func (d *Display) Finish(name string, elapsed time.Duration, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSpinner()
	mark, paint := d.symbols.Checkmark, color.New(color.FgGreen)
	if err != nil {
		mark, paint = d.symbols.Failure, color.New(color.FgRed)
	}
	if d.caps.SupportsColor {
		paint.EnableColor()
	} else {
		paint.DisableColor()
	}
	fmt.Fprintf(d.out, "%s %s (%s)\n", paint.Sprint(mark), name, elapsed.Round(time.Millisecond))
}

// Close stops any running spinner.
func (d *Display) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
}

func (d *Display) stopSpinner() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
