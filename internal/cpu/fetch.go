package cpu

// addrOf resolves a register used as a pointer. (C) addresses high memory.
func (c *CPU) addrOf(r Reg) uint16 {
	if r == RegC {
		return 0xFF00 | uint16(c.r.C)
	}
	return c.r.read(r)
}

// fetchData resolves the operands for in according to its mode.
func (c *CPU) fetchData(in *Instruction) {
	c.fetched = 0
	c.memDest = 0
	c.destIsMem = false

	switch in.Mode {
	case ModeImplied:
	case ModeR:
		c.fetched = c.r.read(in.Reg1)
	case ModeRR:
		c.fetched = c.r.read(in.Reg2)
	case ModeRD8, ModeD8, ModeRA8, ModeHLSPR:
		c.fetched = uint16(c.fetch8())
	case ModeRD16, ModeD16:
		c.fetched = c.fetch16()
	case ModeMRR:
		c.fetched = c.r.read(in.Reg2)
		c.memDest = c.addrOf(in.Reg1)
		c.destIsMem = true
	case ModeRMR:
		c.fetched = uint16(c.read8(c.addrOf(in.Reg2)))
	case ModeRHLI:
		hl := c.r.HL()
		c.fetched = uint16(c.read8(hl))
		c.r.SetHL(hl + 1)
	case ModeRHLD:
		hl := c.r.HL()
		c.fetched = uint16(c.read8(hl))
		c.r.SetHL(hl - 1)
	case ModeHLIR:
		hl := c.r.HL()
		c.fetched = c.r.read(in.Reg2)
		c.memDest = hl
		c.destIsMem = true
		c.r.SetHL(hl + 1)
	case ModeHLDR:
		hl := c.r.HL()
		c.fetched = c.r.read(in.Reg2)
		c.memDest = hl
		c.destIsMem = true
		c.r.SetHL(hl - 1)
	case ModeA8R:
		c.memDest = 0xFF00 | uint16(c.fetch8())
		c.fetched = c.r.read(in.Reg2)
		c.destIsMem = true
	case ModeD16R, ModeA16R:
		c.memDest = c.fetch16()
		c.fetched = c.r.read(in.Reg2)
		c.destIsMem = true
	case ModeMRD8:
		c.fetched = uint16(c.fetch8())
		c.memDest = c.r.read(in.Reg1)
		c.destIsMem = true
	case ModeMR:
		c.memDest = c.r.read(in.Reg1)
		c.fetched = uint16(c.read8(c.memDest))
		c.destIsMem = true
	case ModeRA16:
		c.fetched = uint16(c.read8(c.fetch16()))
	}
}
