// Package interrupt holds the IE/IF register pair and resolves which
// pending source the CPU services next.
package interrupt

// Kind is one bit of IE/IF.
type Kind byte

const (
	VBlank  Kind = 1 << 0
	LCDStat Kind = 1 << 1
	Timer   Kind = 1 << 2
	Serial  Kind = 1 << 3
	Joypad  Kind = 1 << 4
)

const mask = 0x1F

func (k Kind) String() string {
	switch k {
	case VBlank:
		return "VBLANK"
	case LCDStat:
		return "STAT"
	case Timer:
		return "TIMER"
	case Serial:
		return "SERIAL"
	case Joypad:
		return "JOYPAD"
	}
	return "NONE"
}

// Vector returns the service routine address for k.
func (k Kind) Vector() uint16 {
	for bit := uint16(0); bit < 5; bit++ {
		if byte(k) == 1<<bit {
			return 0x40 + 8*bit
		}
	}
	return 0
}

// Requester is implemented by anything that can raise an interrupt.
type Requester interface {
	Request(k Kind)
}

// Controller owns IE (0xFFFF) and IF (0xFF0F).
type Controller struct {
	IE byte
	IF byte
}

func (c *Controller) Request(k Kind) { c.IF |= byte(k) }

func (c *Controller) Clear(k Kind) { c.IF &^= byte(k) }

// Pending reports the enabled and flagged sources.
func (c *Controller) Pending() byte { return c.IE & c.IF & mask }

// Highest returns the highest priority pending source, VBlank first.
func (c *Controller) Highest() (Kind, bool) {
	p := c.Pending()
	if p == 0 {
		return 0, false
	}
	for bit := 0; bit < 5; bit++ {
		if p&(1<<bit) != 0 {
			return Kind(1 << bit), true
		}
	}
	return 0, false
}

// ReadIF returns IF with the unused upper bits set.
func (c *Controller) ReadIF() byte { return c.IF | 0xE0 }

func (c *Controller) WriteIF(v byte) { c.IF = v & mask }
