package cpu

// flag is a per-bit update for setFlags.
type flag uint8

const (
	keep flag = iota
	off
	on
)

func flagOf(b bool) flag {
	if b {
		return on
	}
	return off
}

func (c *CPU) setFlags(z, n, h, cy flag) {
	apply := func(mask byte, f flag) {
		switch f {
		case on:
			c.r.F |= mask
		case off:
			c.r.F &^= mask
		}
	}
	apply(flagZ, z)
	apply(flagN, n)
	apply(flagH, h)
	apply(flagC, cy)
	c.r.F &= 0xF0
}

func (c *CPU) cond(cc Cond) bool {
	switch cc {
	case CondNZ:
		return !c.r.Flag(flagZ)
	case CondZ:
		return c.r.Flag(flagZ)
	case CondNC:
		return !c.r.Flag(flagC)
	case CondC:
		return c.r.Flag(flagC)
	}
	return true
}

func (c *CPU) carry() byte {
	if c.r.Flag(flagC) {
		return 1
	}
	return 0
}

func (c *CPU) add8(b byte, ci byte) {
	a := c.r.A
	r := uint16(a) + uint16(b) + uint16(ci)
	c.r.A = byte(r)
	c.setFlags(flagOf(byte(r) == 0), off, flagOf((a&0x0F)+(b&0x0F)+ci > 0x0F), flagOf(r > 0xFF))
}

func (c *CPU) sub8(b byte, ci byte) byte {
	a := c.r.A
	r := int16(a) - int16(b) - int16(ci)
	c.setFlags(flagOf(byte(r) == 0), on, flagOf(int16(a&0x0F)-int16(b&0x0F)-int16(ci) < 0), flagOf(r < 0))
	return byte(r)
}

func (c *CPU) and8(b byte) {
	c.r.A &= b
	c.setFlags(flagOf(c.r.A == 0), off, on, off)
}

func (c *CPU) xor8(b byte) {
	c.r.A ^= b
	c.setFlags(flagOf(c.r.A == 0), off, off, off)
}

func (c *CPU) or8(b byte) {
	c.r.A |= b
	c.setFlags(flagOf(c.r.A == 0), off, off, off)
}

// addHL is ADD HL,rr: H from bit 11, C from bit 15, Z untouched.
func (c *CPU) addHL(v uint16) {
	hl := c.r.HL()
	r := uint32(hl) + uint32(v)
	c.r.SetHL(uint16(r))
	c.setFlags(keep, off, flagOf((hl&0x0FFF)+(v&0x0FFF) > 0x0FFF), flagOf(r > 0xFFFF))
}

// spOffset computes SP+e8 with the flags ADD SP,e8 and LD HL,SP+e8 share.
func (c *CPU) spOffset(e byte) uint16 {
	sp := c.r.SP
	c.setFlags(off, off,
		flagOf((sp&0x0F)+uint16(e&0x0F) > 0x0F),
		flagOf((sp&0xFF)+uint16(e) > 0xFF))
	return sp + uint16(int8(e))
}

func (c *CPU) daa() {
	a := c.r.A
	var adj byte
	cy := c.r.Flag(flagC)
	sub := c.r.Flag(flagN)
	if c.r.Flag(flagH) || (!sub && a&0x0F > 0x09) {
		adj |= 0x06
	}
	if cy || (!sub && a > 0x99) {
		adj |= 0x60
		cy = true
	}
	if sub {
		a -= adj
	} else {
		a += adj
	}
	c.r.A = a
	c.setFlags(flagOf(a == 0), keep, off, flagOf(cy))
}
