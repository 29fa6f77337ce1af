package cpu

// cb executes a CB-prefixed opcode. (HL) operands add a read, and a write
// for everything but BIT.
func (c *CPU) cb(op byte) {
	reg := cbRegs[op&7]
	bit := (op >> 3) & 7

	var v byte
	if reg == RegHL {
		v = c.read8(c.r.HL())
	} else {
		v = byte(c.r.read(reg))
	}

	switch op >> 6 {
	case 0:
		v = c.shift(bit, v)
	case 1:
		c.setFlags(flagOf(v&(1<<bit) == 0), off, on, keep)
		return
	case 2:
		v &^= 1 << bit
	case 3:
		v |= 1 << bit
	}

	if reg == RegHL {
		c.write8(c.r.HL(), v)
	} else {
		c.r.set(reg, uint16(v))
	}
}

// shift covers the rotate/shift row of the CB page; op selects
// RLC RRC RL RR SLA SRA SWAP SRL.
func (c *CPU) shift(op, v byte) byte {
	var r byte
	var cy bool
	switch op {
	case 0:
		r, cy = v<<1|v>>7, v&0x80 != 0
	case 1:
		r, cy = v>>1|v<<7, v&1 != 0
	case 2:
		r, cy = v<<1|c.carry(), v&0x80 != 0
	case 3:
		r, cy = v>>1|c.carry()<<7, v&1 != 0
	case 4:
		r, cy = v<<1, v&0x80 != 0
	case 5:
		r, cy = v>>1|v&0x80, v&1 != 0
	case 6:
		r = v<<4 | v>>4
	case 7:
		r, cy = v>>1, v&1 != 0
	}
	c.setFlags(flagOf(r == 0), off, off, flagOf(cy))
	return r
}
