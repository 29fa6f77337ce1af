package cart

import "log"

// MBC1 implements MBC1 ROM/RAM banking with optional battery RAM.
// Bank 0 is always mapped at 0x0000–0x3FFF.
type MBC1 struct {
	rom      []byte
	romBanks int
	ramBanks [][]byte

	romBank    byte // 5-bit register, 0 remapped to 1
	bankHigh   byte // 2-bit register: RAM bank (mode 1) or ROM bank bits 5-6 (mode 0)
	ramEnabled bool
	ramBanking bool // mode select bit
	active     []byte
	romOffset  int

	store *Battery
	dirty bool
}

func NewMBC1(rom []byte, ramBanks int, store *Battery) *MBC1 {
	m := &MBC1{rom: rom, store: store, romBank: 1}
	m.romBanks = len(rom) / ROMBankSize
	if m.romBanks == 0 {
		m.romBanks = 1
	}
	if ramBanks > 16 {
		ramBanks = 16
	}
	for i := 0; i < ramBanks; i++ {
		m.ramBanks = append(m.ramBanks, make([]byte, RAMBankSize))
	}
	if len(m.ramBanks) > 0 {
		m.active = m.ramBanks[0]
	}
	m.updateROMOffset()
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.romOffset + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || m.active == nil {
			return 0xFF
		}
		return m.active[addr-0xA000]
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBank = value & 0x1F
		if m.romBank == 0 {
			m.romBank = 1
		}
		m.updateROMOffset()
	case addr < 0x6000:
		m.bankHigh = value & 0x03
		if m.ramBanking {
			m.switchRAMBank()
		}
		m.updateROMOffset()
	case addr < 0x8000:
		m.ramBanking = value&0x01 != 0
		m.switchRAMBank()
		m.updateROMOffset()
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || m.active == nil {
			return
		}
		m.active[addr-0xA000] = value
		m.dirty = true
	}
}

// switchRAMBank flushes the outgoing bank to the battery file when it holds
// unsaved writes, then repoints the active bank. Outside RAM banking mode
// bank 0 is always mapped.
func (m *MBC1) switchRAMBank() {
	if m.dirty && m.store != nil && m.active != nil {
		if err := m.store.Save(m.active); err != nil {
			log.Printf("cart: battery save: %v", err)
		} else {
			m.dirty = false
		}
	}
	idx := 0
	if m.ramBanking {
		idx = int(m.bankHigh)
	}
	if idx < len(m.ramBanks) {
		m.active = m.ramBanks[idx]
	} else {
		m.active = nil
	}
}

func (m *MBC1) updateROMOffset() {
	bank := int(m.romBank)
	if !m.ramBanking {
		bank |= int(m.bankHigh) << 5
	}
	bank %= m.romBanks
	m.romOffset = bank * ROMBankSize
}

// ROMBank returns the bank currently mapped at 0x4000–0x7FFF.
func (m *MBC1) ROMBank() int { return m.romOffset / ROMBankSize }

func (m *MBC1) SaveRAM() []byte {
	if m.active == nil {
		return nil
	}
	out := make([]byte, RAMBankSize)
	copy(out, m.active)
	return out
}

func (m *MBC1) LoadRAM(data []byte) {
	if m.active != nil {
		copy(m.active, data)
	}
}

func (m *MBC1) Dirty() bool { return m.dirty }
func (m *MBC1) ClearDirty() { m.dirty = false }
