package cpu

import "fmt"

func (c *CPU) execute(in *Instruction) {
	switch in.Kind {
	case KindNOP, KindSTOP:
		// STOP has no low-power model; it behaves as a two-byte NOP.
	case KindLD:
		c.ld(in)
	case KindLDH:
		if in.Reg1 == RegA {
			c.r.A = c.read8(0xFF00 | c.fetched&0xFF)
		} else {
			c.write8(c.memDest, c.r.A)
		}
	case KindINC:
		c.inc(in)
	case KindDEC:
		c.dec(in)
	case KindADD:
		switch in.Reg1 {
		case RegHL:
			c.addHL(c.fetched)
			c.clock.Cycles(1)
		case RegSP:
			c.r.SP = c.spOffset(byte(c.fetched))
			c.clock.Cycles(2)
		default:
			c.add8(byte(c.fetched), 0)
		}
	case KindADC:
		c.add8(byte(c.fetched), c.carry())
	case KindSUB:
		c.r.A = c.sub8(byte(c.fetched), 0)
	case KindSBC:
		c.r.A = c.sub8(byte(c.fetched), c.carry())
	case KindCP:
		c.sub8(byte(c.fetched), 0)
	case KindAND:
		c.and8(byte(c.fetched))
	case KindXOR:
		c.xor8(byte(c.fetched))
	case KindOR:
		c.or8(byte(c.fetched))
	case KindRLCA:
		a := c.r.A
		c.r.A = a<<1 | a>>7
		c.setFlags(off, off, off, flagOf(a&0x80 != 0))
	case KindRRCA:
		a := c.r.A
		c.r.A = a>>1 | a<<7
		c.setFlags(off, off, off, flagOf(a&1 != 0))
	case KindRLA:
		a := c.r.A
		c.r.A = a<<1 | c.carry()
		c.setFlags(off, off, off, flagOf(a&0x80 != 0))
	case KindRRA:
		a := c.r.A
		c.r.A = a>>1 | c.carry()<<7
		c.setFlags(off, off, off, flagOf(a&1 != 0))
	case KindDAA:
		c.daa()
	case KindCPL:
		c.r.A = ^c.r.A
		c.setFlags(keep, on, on, keep)
	case KindSCF:
		c.setFlags(keep, off, off, on)
	case KindCCF:
		c.setFlags(keep, off, off, flagOf(!c.r.Flag(flagC)))
	case KindJP:
		if c.cond(in.Cond) {
			c.r.PC = c.fetched
			c.clock.Cycles(1)
		}
	case KindJPHL:
		c.r.PC = c.fetched
	case KindJR:
		if c.cond(in.Cond) {
			c.r.PC += uint16(int8(byte(c.fetched)))
			c.clock.Cycles(1)
		}
	case KindCALL:
		if c.cond(in.Cond) {
			c.clock.Cycles(1)
			c.push16(c.r.PC)
			c.r.PC = c.fetched
		}
	case KindRST:
		c.clock.Cycles(1)
		c.push16(c.r.PC)
		c.r.PC = uint16(in.Param)
	case KindRET:
		c.ret(in.Cond)
	case KindRETI:
		c.IME = true
		c.ret(CondNone)
	case KindPUSH:
		c.clock.Cycles(1)
		c.push16(c.fetched)
	case KindPOP:
		c.r.set(in.Reg1, c.pop16())
	case KindDI:
		c.IME = false
		c.eiPending = false
	case KindEI:
		c.eiPending = true
	case KindHALT:
		// With IME clear and an interrupt already pending the CPU does not
		// halt and the next opcode byte is read twice.
		if !c.IME && c.irq.Pending() != 0 {
			c.haltBug = true
		} else {
			c.halted = true
		}
	case KindCB:
		c.cb(byte(c.fetched))
	default:
		panic(fmt.Sprintf("cpu: no handler for %v", in.Kind))
	}
}

func (c *CPU) ld(in *Instruction) {
	if c.destIsMem {
		if in.Reg2.Wide() {
			c.write16(c.memDest, c.fetched)
		} else {
			c.write8(c.memDest, byte(c.fetched))
		}
		return
	}
	if in.Mode == ModeHLSPR {
		c.r.SetHL(c.spOffset(byte(c.fetched)))
		c.clock.Cycles(1)
		return
	}
	if in.Reg1.Wide() && in.Reg2.Wide() {
		// LD SP,HL
		c.clock.Cycles(1)
	}
	c.r.set(in.Reg1, c.fetched)
}

func (c *CPU) inc(in *Instruction) {
	if in.Reg1.Wide() && !c.destIsMem {
		c.r.set(in.Reg1, c.fetched+1)
		c.clock.Cycles(1)
		return
	}
	v := byte(c.fetched) + 1
	if c.destIsMem {
		c.write8(c.memDest, v)
	} else {
		c.r.set(in.Reg1, uint16(v))
	}
	c.setFlags(flagOf(v == 0), off, flagOf(v&0x0F == 0), keep)
}

func (c *CPU) dec(in *Instruction) {
	if in.Reg1.Wide() && !c.destIsMem {
		c.r.set(in.Reg1, c.fetched-1)
		c.clock.Cycles(1)
		return
	}
	v := byte(c.fetched) - 1
	if c.destIsMem {
		c.write8(c.memDest, v)
	} else {
		c.r.set(in.Reg1, uint16(v))
	}
	c.setFlags(flagOf(v == 0), on, flagOf(v&0x0F == 0x0F), keep)
}

func (c *CPU) ret(cc Cond) {
	if cc != CondNone {
		c.clock.Cycles(1)
	}
	if !c.cond(cc) {
		return
	}
	c.r.PC = c.pop16()
	c.clock.Cycles(1)
}
