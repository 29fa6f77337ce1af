package sink

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

// Progress rewrites a one-line frame counter. It stays silent unless the
// output is a terminal.
type Progress struct {
	w     io.Writer
	every uint64
	total uint64
	on    bool
}

// NewProgress reports to stderr every n frames. total may be 0 when the
// run is open ended.
func NewProgress(every, total uint64) *Progress {
	return &Progress{
		w:     os.Stderr,
		every: max(every, 1),
		total: total,
		on:    term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func (p *Progress) Frame(f *emu.Frame) error {
	if !p.on || f.Number%p.every != 0 {
		return nil
	}
	if p.total > 0 {
		fmt.Fprintf(p.w, "\rframe %d/%d", f.Number, p.total)
	} else {
		fmt.Fprintf(p.w, "\rframe %d", f.Number)
	}
	return nil
}

func (p *Progress) Audio(emu.AudioBlock) error { return nil }

func (p *Progress) Close() error {
	if p.on {
		fmt.Fprintln(p.w)
	}
	return nil
}
