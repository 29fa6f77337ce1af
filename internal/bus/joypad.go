package bus

import "github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"

// Joypad button bits for SetJoypadState.
const (
	JoypRight byte = 1 << iota
	JoypLeft
	JoypUp
	JoypDown
	JoypA
	JoypB
	JoypSelect
	JoypStart
)

type joyp struct {
	sel   byte // P1 bits 4-5, 0 selects
	state byte // pressed buttons
}

func (j *joyp) read() byte {
	low := byte(0x0F)
	if j.sel&0x10 == 0 {
		low &^= j.state & 0x0F
	}
	if j.sel&0x20 == 0 {
		low &^= j.state >> 4
	}
	return 0xC0 | j.sel | low
}

// selected is the mask of buttons in the groups chosen by P1 bits 4-5.
func (j *joyp) selected() byte {
	var m byte
	if j.sel&0x10 == 0 {
		m |= 0x0F
	}
	if j.sel&0x20 == 0 {
		m |= 0xF0
	}
	return m
}

// SetJoypadState replaces the pressed-button mask. Newly pressed buttons
// in a selected group raise the joypad interrupt.
func (b *Bus) SetJoypadState(state byte) {
	pressed := state &^ b.joyp.state & b.joyp.selected()
	b.joyp.state = state
	if pressed != 0 {
		b.irq.Request(interrupt.Joypad)
	}
}
