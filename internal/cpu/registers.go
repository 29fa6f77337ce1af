package cpu

import "fmt"

// Flag bits in F. The low nibble always reads zero.
const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// Registers is the SM83 register file.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16
}

func (r *Registers) AF() uint16     { return uint16(r.A)<<8 | uint16(r.F&0xF0) }
func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) & 0xF0 }
func (r *Registers) BC() uint16     { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) DE() uint16     { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }
func (r *Registers) HL() uint16     { return uint16(r.H)<<8 | uint16(r.L) }
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }

// Flag reports whether any of the given F bits is set.
func (r *Registers) Flag(mask byte) bool { return r.F&mask != 0 }

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC)
}

// Reg names an operand register in the decode table.
type Reg uint8

const (
	RegNone Reg = iota
	RegA
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegAF
	RegBC
	RegDE
	RegHL
	RegSP
	RegPC
)

var regNames = [...]string{"", "A", "F", "B", "C", "D", "E", "H", "L", "AF", "BC", "DE", "HL", "SP", "PC"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("Reg(%d)", uint8(r))
}

// Wide reports whether r is a 16-bit register or pair.
func (r Reg) Wide() bool { return r >= RegAF }

func (r *Registers) read(reg Reg) uint16 {
	switch reg {
	case RegA:
		return uint16(r.A)
	case RegF:
		return uint16(r.F)
	case RegB:
		return uint16(r.B)
	case RegC:
		return uint16(r.C)
	case RegD:
		return uint16(r.D)
	case RegE:
		return uint16(r.E)
	case RegH:
		return uint16(r.H)
	case RegL:
		return uint16(r.L)
	case RegAF:
		return r.AF()
	case RegBC:
		return r.BC()
	case RegDE:
		return r.DE()
	case RegHL:
		return r.HL()
	case RegSP:
		return r.SP
	case RegPC:
		return r.PC
	}
	return 0
}

func (r *Registers) set(reg Reg, v uint16) {
	switch reg {
	case RegA:
		r.A = byte(v)
	case RegF:
		r.F = byte(v) & 0xF0
	case RegB:
		r.B = byte(v)
	case RegC:
		r.C = byte(v)
	case RegD:
		r.D = byte(v)
	case RegE:
		r.E = byte(v)
	case RegH:
		r.H = byte(v)
	case RegL:
		r.L = byte(v)
	case RegAF:
		r.SetAF(v)
	case RegBC:
		r.SetBC(v)
	case RegDE:
		r.SetDE(v)
	case RegHL:
		r.SetHL(v)
	case RegSP:
		r.SP = v
	case RegPC:
		r.PC = v
	}
}

// cbRegs maps the low three bits of a CB opcode to its operand.
var cbRegs = [8]Reg{RegB, RegC, RegD, RegE, RegH, RegL, RegHL, RegA}
