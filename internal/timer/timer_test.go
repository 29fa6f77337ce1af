package timer

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

func newTimer(opts Options) (*Timer, *interrupt.Controller) {
	ic := &interrupt.Controller{}
	tm := New(ic, opts)
	tm.Write(DIV, 0)
	return tm, ic
}

func TestTIMAEvery16Ticks(t *testing.T) {
	tm, _ := newTimer(Options{})
	tm.Write(TAC, 0x05) // enabled, bit 3
	for i := 0; i < 16*10; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 10 {
		t.Fatalf("TIMA got %02X want 0A", got)
	}
}

func TestDisabledDoesNotCount(t *testing.T) {
	tm, _ := newTimer(Options{})
	tm.Write(TAC, 0x01)
	for i := 0; i < 1024; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 0 {
		t.Fatalf("TIMA got %02X want 00", got)
	}
}

// Default overflow reloads once the counter reaches 0xFF.
func TestOverflowLiteral(t *testing.T) {
	tm, ic := newTimer(Options{})
	tm.Write(TMA, 0x42)
	tm.Write(TIMA, 0xFD)
	tm.Write(TAC, 0x05)
	for i := 0; i < 16; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 0xFE || ic.IF != 0 {
		t.Fatalf("after 1 step TIMA=%02X IF=%02X", got, ic.IF)
	}
	for i := 0; i < 16; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 0x42 {
		t.Fatalf("reload TIMA got %02X want 42", got)
	}
	if ic.IF&byte(interrupt.Timer) == 0 {
		t.Fatalf("timer interrupt not requested")
	}
}

func TestOverflowWrap(t *testing.T) {
	tm, ic := newTimer(Options{WrapOverflow: true})
	tm.Write(TMA, 0x42)
	tm.Write(TIMA, 0xFE)
	tm.Write(TAC, 0x05)
	for i := 0; i < 16; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 0xFF || ic.IF != 0 {
		t.Fatalf("TIMA got %02X IF=%02X want FF/00", got, ic.IF)
	}
	for i := 0; i < 16; i++ {
		tm.Tick()
	}
	if got := tm.Read(TIMA); got != 0x42 || ic.IF&byte(interrupt.Timer) == 0 {
		t.Fatalf("wrap reload TIMA got %02X IF=%02X", got, ic.IF)
	}
}

func TestDIVWriteResets(t *testing.T) {
	ic := &interrupt.Controller{}
	tm := New(ic, Options{})
	if got := tm.Read(DIV); got != 0xAC {
		t.Fatalf("initial DIV got %02X want AC", got)
	}
	tm.Write(DIV, 0x99)
	if tm.Div() != 0 {
		t.Fatalf("DIV not reset: %04X", tm.Div())
	}
	for i := 0; i < 256; i++ {
		tm.Tick()
	}
	if got := tm.Read(DIV); got != 0x01 {
		t.Fatalf("DIV got %02X want 01", got)
	}
}
