package cpu

import (
	"fmt"
	"strings"
)

// Kind is the operation an opcode performs.
type Kind uint8

const (
	KindNone Kind = iota
	KindNOP
	KindLD
	KindINC
	KindDEC
	KindRLCA
	KindADD
	KindRRCA
	KindSTOP
	KindRLA
	KindJR
	KindRRA
	KindDAA
	KindCPL
	KindSCF
	KindCCF
	KindHALT
	KindADC
	KindSUB
	KindSBC
	KindAND
	KindXOR
	KindOR
	KindCP
	KindPOP
	KindJP
	KindPUSH
	KindRET
	KindCB
	KindCALL
	KindRETI
	KindLDH
	KindJPHL
	KindDI
	KindEI
	KindRST
)

var kindNames = [...]string{
	"???", "NOP", "LD", "INC", "DEC", "RLCA", "ADD", "RRCA", "STOP", "RLA", "JR",
	"RRA", "DAA", "CPL", "SCF", "CCF", "HALT", "ADC", "SUB", "SBC", "AND", "XOR",
	"OR", "CP", "POP", "JP", "PUSH", "RET", "CB", "CALL", "RETI", "LDH", "JP",
	"DI", "EI", "RST",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Mode says where an instruction's operand comes from and where its
// result goes.
type Mode uint8

const (
	ModeImplied Mode = iota
	ModeR            // register
	ModeRR           // register, register
	ModeRD8          // register, immediate byte
	ModeRD16         // register, immediate word
	ModeD16          // immediate word
	ModeD8           // immediate byte
	ModeMRR          // (register), register
	ModeRMR          // register, (register)
	ModeRHLI         // register, (HL+)
	ModeRHLD         // register, (HL-)
	ModeHLIR         // (HL+), register
	ModeHLDR         // (HL-), register
	ModeRA8          // register, (FF00+n)
	ModeA8R          // (FF00+n), register
	ModeHLSPR        // HL, SP+e8
	ModeD16R         // (nn), register
	ModeA16R         // (nn), register
	ModeMRD8         // (register), immediate byte
	ModeMR           // (register)
	ModeRA16         // register, (nn)
)

// Len is the encoded instruction length in bytes for the mode.
func (m Mode) Len() int {
	switch m {
	case ModeRD8, ModeD8, ModeRA8, ModeA8R, ModeHLSPR, ModeMRD8:
		return 2
	case ModeRD16, ModeD16, ModeD16R, ModeA16R, ModeRA16:
		return 3
	}
	return 1
}

// Cond is a branch condition.
type Cond uint8

const (
	CondNone Cond = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

var condNames = [...]string{"", "NZ", "Z", "NC", "C"}

func (c Cond) String() string { return condNames[c] }

// Instruction is one decode table entry.
type Instruction struct {
	Kind  Kind
	Mode  Mode
	Reg1  Reg
	Reg2  Reg
	Cond  Cond
	Param byte // RST vector
}

// Table decodes the unprefixed opcode page. Undefined opcodes are KindNone.
var Table [256]Instruction

func init() {
	Table = [256]Instruction{
		0x00: {Kind: KindNOP},
		0x01: {Kind: KindLD, Mode: ModeRD16, Reg1: RegBC},
		0x02: {Kind: KindLD, Mode: ModeMRR, Reg1: RegBC, Reg2: RegA},
		0x03: {Kind: KindINC, Mode: ModeR, Reg1: RegBC},
		0x04: {Kind: KindINC, Mode: ModeR, Reg1: RegB},
		0x05: {Kind: KindDEC, Mode: ModeR, Reg1: RegB},
		0x06: {Kind: KindLD, Mode: ModeRD8, Reg1: RegB},
		0x07: {Kind: KindRLCA},
		0x08: {Kind: KindLD, Mode: ModeD16R, Reg2: RegSP},
		0x09: {Kind: KindADD, Mode: ModeRR, Reg1: RegHL, Reg2: RegBC},
		0x0A: {Kind: KindLD, Mode: ModeRMR, Reg1: RegA, Reg2: RegBC},
		0x0B: {Kind: KindDEC, Mode: ModeR, Reg1: RegBC},
		0x0C: {Kind: KindINC, Mode: ModeR, Reg1: RegC},
		0x0D: {Kind: KindDEC, Mode: ModeR, Reg1: RegC},
		0x0E: {Kind: KindLD, Mode: ModeRD8, Reg1: RegC},
		0x0F: {Kind: KindRRCA},

		0x10: {Kind: KindSTOP, Mode: ModeD8},
		0x11: {Kind: KindLD, Mode: ModeRD16, Reg1: RegDE},
		0x12: {Kind: KindLD, Mode: ModeMRR, Reg1: RegDE, Reg2: RegA},
		0x13: {Kind: KindINC, Mode: ModeR, Reg1: RegDE},
		0x14: {Kind: KindINC, Mode: ModeR, Reg1: RegD},
		0x15: {Kind: KindDEC, Mode: ModeR, Reg1: RegD},
		0x16: {Kind: KindLD, Mode: ModeRD8, Reg1: RegD},
		0x17: {Kind: KindRLA},
		0x18: {Kind: KindJR, Mode: ModeD8},
		0x19: {Kind: KindADD, Mode: ModeRR, Reg1: RegHL, Reg2: RegDE},
		0x1A: {Kind: KindLD, Mode: ModeRMR, Reg1: RegA, Reg2: RegDE},
		0x1B: {Kind: KindDEC, Mode: ModeR, Reg1: RegDE},
		0x1C: {Kind: KindINC, Mode: ModeR, Reg1: RegE},
		0x1D: {Kind: KindDEC, Mode: ModeR, Reg1: RegE},
		0x1E: {Kind: KindLD, Mode: ModeRD8, Reg1: RegE},
		0x1F: {Kind: KindRRA},

		0x20: {Kind: KindJR, Mode: ModeD8, Cond: CondNZ},
		0x21: {Kind: KindLD, Mode: ModeRD16, Reg1: RegHL},
		0x22: {Kind: KindLD, Mode: ModeHLIR, Reg1: RegHL, Reg2: RegA},
		0x23: {Kind: KindINC, Mode: ModeR, Reg1: RegHL},
		0x24: {Kind: KindINC, Mode: ModeR, Reg1: RegH},
		0x25: {Kind: KindDEC, Mode: ModeR, Reg1: RegH},
		0x26: {Kind: KindLD, Mode: ModeRD8, Reg1: RegH},
		0x27: {Kind: KindDAA},
		0x28: {Kind: KindJR, Mode: ModeD8, Cond: CondZ},
		0x29: {Kind: KindADD, Mode: ModeRR, Reg1: RegHL, Reg2: RegHL},
		0x2A: {Kind: KindLD, Mode: ModeRHLI, Reg1: RegA, Reg2: RegHL},
		0x2B: {Kind: KindDEC, Mode: ModeR, Reg1: RegHL},
		0x2C: {Kind: KindINC, Mode: ModeR, Reg1: RegL},
		0x2D: {Kind: KindDEC, Mode: ModeR, Reg1: RegL},
		0x2E: {Kind: KindLD, Mode: ModeRD8, Reg1: RegL},
		0x2F: {Kind: KindCPL},

		0x30: {Kind: KindJR, Mode: ModeD8, Cond: CondNC},
		0x31: {Kind: KindLD, Mode: ModeRD16, Reg1: RegSP},
		0x32: {Kind: KindLD, Mode: ModeHLDR, Reg1: RegHL, Reg2: RegA},
		0x33: {Kind: KindINC, Mode: ModeR, Reg1: RegSP},
		0x34: {Kind: KindINC, Mode: ModeMR, Reg1: RegHL},
		0x35: {Kind: KindDEC, Mode: ModeMR, Reg1: RegHL},
		0x36: {Kind: KindLD, Mode: ModeMRD8, Reg1: RegHL},
		0x37: {Kind: KindSCF},
		0x38: {Kind: KindJR, Mode: ModeD8, Cond: CondC},
		0x39: {Kind: KindADD, Mode: ModeRR, Reg1: RegHL, Reg2: RegSP},
		0x3A: {Kind: KindLD, Mode: ModeRHLD, Reg1: RegA, Reg2: RegHL},
		0x3B: {Kind: KindDEC, Mode: ModeR, Reg1: RegSP},
		0x3C: {Kind: KindINC, Mode: ModeR, Reg1: RegA},
		0x3D: {Kind: KindDEC, Mode: ModeR, Reg1: RegA},
		0x3E: {Kind: KindLD, Mode: ModeRD8, Reg1: RegA},
		0x3F: {Kind: KindCCF},

		0xC0: {Kind: KindRET, Cond: CondNZ},
		0xC1: {Kind: KindPOP, Mode: ModeR, Reg1: RegBC},
		0xC2: {Kind: KindJP, Mode: ModeD16, Cond: CondNZ},
		0xC3: {Kind: KindJP, Mode: ModeD16},
		0xC4: {Kind: KindCALL, Mode: ModeD16, Cond: CondNZ},
		0xC5: {Kind: KindPUSH, Mode: ModeR, Reg1: RegBC},
		0xC6: {Kind: KindADD, Mode: ModeRD8, Reg1: RegA},
		0xC7: {Kind: KindRST, Param: 0x00},
		0xC8: {Kind: KindRET, Cond: CondZ},
		0xC9: {Kind: KindRET},
		0xCA: {Kind: KindJP, Mode: ModeD16, Cond: CondZ},
		0xCB: {Kind: KindCB, Mode: ModeD8},
		0xCC: {Kind: KindCALL, Mode: ModeD16, Cond: CondZ},
		0xCD: {Kind: KindCALL, Mode: ModeD16},
		0xCE: {Kind: KindADC, Mode: ModeRD8, Reg1: RegA},
		0xCF: {Kind: KindRST, Param: 0x08},

		0xD0: {Kind: KindRET, Cond: CondNC},
		0xD1: {Kind: KindPOP, Mode: ModeR, Reg1: RegDE},
		0xD2: {Kind: KindJP, Mode: ModeD16, Cond: CondNC},
		0xD4: {Kind: KindCALL, Mode: ModeD16, Cond: CondNC},
		0xD5: {Kind: KindPUSH, Mode: ModeR, Reg1: RegDE},
		0xD6: {Kind: KindSUB, Mode: ModeRD8, Reg1: RegA},
		0xD7: {Kind: KindRST, Param: 0x10},
		0xD8: {Kind: KindRET, Cond: CondC},
		0xD9: {Kind: KindRETI},
		0xDA: {Kind: KindJP, Mode: ModeD16, Cond: CondC},
		0xDC: {Kind: KindCALL, Mode: ModeD16, Cond: CondC},
		0xDE: {Kind: KindSBC, Mode: ModeRD8, Reg1: RegA},
		0xDF: {Kind: KindRST, Param: 0x18},

		0xE0: {Kind: KindLDH, Mode: ModeA8R, Reg2: RegA},
		0xE1: {Kind: KindPOP, Mode: ModeR, Reg1: RegHL},
		0xE2: {Kind: KindLD, Mode: ModeMRR, Reg1: RegC, Reg2: RegA},
		0xE5: {Kind: KindPUSH, Mode: ModeR, Reg1: RegHL},
		0xE6: {Kind: KindAND, Mode: ModeRD8, Reg1: RegA},
		0xE7: {Kind: KindRST, Param: 0x20},
		0xE8: {Kind: KindADD, Mode: ModeRD8, Reg1: RegSP},
		0xE9: {Kind: KindJPHL, Mode: ModeR, Reg1: RegHL},
		0xEA: {Kind: KindLD, Mode: ModeA16R, Reg2: RegA},
		0xEE: {Kind: KindXOR, Mode: ModeRD8, Reg1: RegA},
		0xEF: {Kind: KindRST, Param: 0x28},

		0xF0: {Kind: KindLDH, Mode: ModeRA8, Reg1: RegA},
		0xF1: {Kind: KindPOP, Mode: ModeR, Reg1: RegAF},
		0xF2: {Kind: KindLD, Mode: ModeRMR, Reg1: RegA, Reg2: RegC},
		0xF3: {Kind: KindDI},
		0xF5: {Kind: KindPUSH, Mode: ModeR, Reg1: RegAF},
		0xF6: {Kind: KindOR, Mode: ModeRD8, Reg1: RegA},
		0xF7: {Kind: KindRST, Param: 0x30},
		0xF8: {Kind: KindLD, Mode: ModeHLSPR, Reg1: RegHL, Reg2: RegSP},
		0xF9: {Kind: KindLD, Mode: ModeRR, Reg1: RegSP, Reg2: RegHL},
		0xFA: {Kind: KindLD, Mode: ModeRA16, Reg1: RegA},
		0xFB: {Kind: KindEI},
		0xFE: {Kind: KindCP, Mode: ModeRD8, Reg1: RegA},
		0xFF: {Kind: KindRST, Param: 0x38},
	}

	// 0x40-0xBF is a regular grid: LD dst,src then the ALU ops on A.
	alu := [8]Kind{KindADD, KindADC, KindSUB, KindSBC, KindAND, KindXOR, KindOR, KindCP}
	for op := 0x40; op < 0xC0; op++ {
		dst, src := cbRegs[(op>>3)&7], cbRegs[op&7]
		var in Instruction
		switch {
		case op == 0x76:
			in = Instruction{Kind: KindHALT}
		case op < 0x80 && dst == RegHL:
			in = Instruction{Kind: KindLD, Mode: ModeMRR, Reg1: RegHL, Reg2: src}
		case op < 0x80:
			in = Instruction{Kind: KindLD, Mode: ModeRR, Reg1: dst, Reg2: src}
		default:
			in = Instruction{Kind: alu[(op>>3)&7], Mode: ModeRR, Reg1: RegA, Reg2: src}
		}
		if op != 0x76 && src == RegHL {
			in.Mode = ModeRMR
		}
		Table[op] = in
	}
}

// String renders the instruction with symbolic immediates.
func (in Instruction) String() string { return in.render("n", "nn") }

func (in Instruction) render(imm8, imm16 string) string {
	name := in.Kind.String()
	var ops []string
	if in.Cond != CondNone {
		ops = append(ops, in.Cond.String())
	}
	ind := func(s string) string { return "(" + s + ")" }
	switch in.Mode {
	case ModeImplied:
		if in.Kind == KindRST {
			ops = append(ops, fmt.Sprintf("$%02X", in.Param))
		}
	case ModeR:
		ops = append(ops, in.Reg1.String())
	case ModeRR:
		ops = append(ops, in.Reg1.String(), in.Reg2.String())
	case ModeRD8:
		ops = append(ops, in.Reg1.String(), imm8)
	case ModeRD16:
		ops = append(ops, in.Reg1.String(), imm16)
	case ModeD16:
		ops = append(ops, imm16)
	case ModeD8:
		if in.Kind == KindJR {
			ops = append(ops, imm8)
		}
	case ModeMRR:
		ops = append(ops, ind(in.Reg1.String()), in.Reg2.String())
	case ModeRMR:
		ops = append(ops, in.Reg1.String(), ind(in.Reg2.String()))
	case ModeRHLI:
		ops = append(ops, in.Reg1.String(), "(HL+)")
	case ModeRHLD:
		ops = append(ops, in.Reg1.String(), "(HL-)")
	case ModeHLIR:
		ops = append(ops, "(HL+)", in.Reg2.String())
	case ModeHLDR:
		ops = append(ops, "(HL-)", in.Reg2.String())
	case ModeRA8:
		ops = append(ops, in.Reg1.String(), ind(imm8))
	case ModeA8R:
		ops = append(ops, ind(imm8), in.Reg2.String())
	case ModeHLSPR:
		ops = append(ops, "HL", "SP+"+imm8)
	case ModeD16R, ModeA16R:
		ops = append(ops, ind(imm16), in.Reg2.String())
	case ModeMRD8:
		ops = append(ops, ind(in.Reg1.String()), imm8)
	case ModeMR:
		ops = append(ops, ind(in.Reg1.String()))
	case ModeRA16:
		ops = append(ops, in.Reg1.String(), ind(imm16))
	}
	if len(ops) == 0 {
		return name
	}
	return name + " " + strings.Join(ops, ",")
}

var cbOps = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

func cbMnemonic(op byte) string {
	r := cbRegs[op&7].String()
	if r == "HL" {
		r = "(HL)"
	}
	bit := (op >> 3) & 7
	switch op >> 6 {
	case 0:
		return cbOps[bit] + " " + r
	case 1:
		return fmt.Sprintf("BIT %d,%s", bit, r)
	case 2:
		return fmt.Sprintf("RES %d,%s", bit, r)
	}
	return fmt.Sprintf("SET %d,%s", bit, r)
}
