// Package cpu implements the SM83 core. Every bus access costs one machine
// cycle and is reported to the Clock so the rest of the system can advance
// in lock step with the instruction being executed.
package cpu

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

// Bus is the memory view the CPU executes against.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// Clock is advanced once per machine cycle the CPU spends.
type Clock interface {
	Cycles(n int)
}

// DecodeError is returned by Step when the fetched opcode is undefined.
type DecodeError struct {
	Opcode byte
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: invalid opcode %02X at %04X", e.Opcode, e.PC)
}

type CPU struct {
	r Registers

	IME bool
	// EI enables IME after the following instruction
	eiPending bool
	halted    bool
	haltBug   bool

	bus   Bus
	irq   *interrupt.Controller
	clock Clock

	// operand state for the instruction in flight
	fetched   uint16
	memDest   uint16
	destIsMem bool
}

type nopClock struct{}

func (nopClock) Cycles(int) {}

// New creates a CPU in the DMG post-boot state. A nil clock is allowed.
func New(b Bus, irq *interrupt.Controller, clk Clock) *CPU {
	if clk == nil {
		clk = nopClock{}
	}
	c := &CPU{bus: b, irq: irq, clock: clk}
	c.ResetPostBoot()
	return c
}

// ResetPostBoot loads the register file the boot ROM leaves behind.
func (c *CPU) ResetPostBoot() {
	c.r = Registers{
		A: 0x01, F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
	c.IME = false
	c.eiPending = false
	c.halted = false
	c.haltBug = false
}

func (c *CPU) Registers() Registers { return c.r }
func (c *CPU) PC() uint16           { return c.r.PC }

// SetPC allows tests or a boot stub to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.r.PC = pc }

func (c *CPU) Halted() bool { return c.halted }

// Step executes one instruction, or one idle cycle while halted, then
// dispatches a pending interrupt if IME allows it.
func (c *CPU) Step() error {
	enable := c.eiPending
	if c.halted {
		c.clock.Cycles(1)
		if c.irq.Pending() == 0 {
			return nil
		}
		c.halted = false
	} else {
		pc := c.r.PC
		op := c.read8(pc)
		if c.haltBug {
			c.haltBug = false
		} else {
			c.r.PC++
		}
		in := &Table[op]
		if in.Kind == KindNone {
			return &DecodeError{Opcode: op, PC: pc}
		}
		c.fetchData(in)
		c.execute(in)
	}
	if enable && c.eiPending {
		c.eiPending = false
		c.IME = true
	}
	if c.IME {
		c.serviceInterrupt()
	}
	return nil
}

// serviceInterrupt pushes PC and jumps to the highest priority pending
// vector. It costs five machine cycles.
func (c *CPU) serviceInterrupt() {
	k, ok := c.irq.Highest()
	if !ok {
		return
	}
	c.clock.Cycles(2)
	c.push16(c.r.PC)
	c.irq.Clear(k)
	c.IME = false
	c.r.PC = k.Vector()
	c.clock.Cycles(1)
}

// Disassemble decodes the instruction at pc without touching the clock.
// It returns the text and the encoded length in bytes.
func (c *CPU) Disassemble(pc uint16) (string, int) {
	op := c.bus.Read(pc)
	in := Table[op]
	if in.Kind == KindNone {
		return fmt.Sprintf("DB $%02X", op), 1
	}
	b1 := c.bus.Read(pc + 1)
	b2 := c.bus.Read(pc + 2)
	if in.Kind == KindCB {
		return cbMnemonic(b1), 2
	}
	return in.render(fmt.Sprintf("$%02X", b1), fmt.Sprintf("$%04X", uint16(b2)<<8|uint16(b1))), in.Mode.Len()
}

func (c *CPU) read8(addr uint16) byte {
	v := c.bus.Read(addr)
	c.clock.Cycles(1)
	return v
}

func (c *CPU) write8(addr uint16, v byte) {
	c.bus.Write(addr, v)
	c.clock.Cycles(1)
}

func (c *CPU) fetch8() byte {
	v := c.read8(c.r.PC)
	c.r.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.r.SP--
	c.write8(c.r.SP, byte(v>>8))
	c.r.SP--
	c.write8(c.r.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.read8(c.r.SP)
	c.r.SP++
	hi := c.read8(c.r.SP)
	c.r.SP++
	return uint16(hi)<<8 | uint16(lo)
}
