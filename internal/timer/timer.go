package timer

import "github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"

// Register addresses.
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// divInit is the divider value left behind by the boot ROM.
const divInit = 0xAC00

// tapBits selects the divider bit watched for each TAC clock select.
var tapBits = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

// Options changes overflow handling.
type Options struct {
	// WrapOverflow reloads TIMA when the increment wraps past 0xFF, as on
	// hardware. When false the counter reloads as soon as it reaches 0xFF.
	WrapOverflow bool
}

// Timer is the divider plus the TIMA/TMA/TAC counter.
type Timer struct {
	div  uint16
	tima byte
	tma  byte
	tac  byte

	opts Options
	irq  interrupt.Requester
}

func New(irq interrupt.Requester, opts Options) *Timer {
	return &Timer{div: divInit, irq: irq, opts: opts}
}

// Tick advances the divider by one clock and clocks TIMA on a falling edge
// of the selected divider bit.
func (t *Timer) Tick() {
	prev := t.div
	t.div++

	tap := tapBits[t.tac&0x03]
	if prev&tap == 0 || t.div&tap != 0 || t.tac&0x04 == 0 {
		return
	}

	if t.opts.WrapOverflow {
		t.tima++
		if t.tima == 0 {
			t.overflow()
		}
		return
	}
	t.tima++
	if t.tima == 0xFF {
		t.overflow()
	}
}

func (t *Timer) overflow() {
	t.tima = t.tma
	if t.irq != nil {
		t.irq.Request(interrupt.Timer)
	}
}

func (t *Timer) Read(addr uint16) byte {
	switch addr {
	case DIV:
		return byte(t.div >> 8)
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

func (t *Timer) Write(addr uint16, v byte) {
	switch addr {
	case DIV:
		t.div = 0
	case TIMA:
		t.tima = v
	case TMA:
		t.tma = v
	case TAC:
		t.tac = v & 0x07
	}
}

// Div returns the full 16-bit divider.
func (t *Timer) Div() uint16 { return t.div }
