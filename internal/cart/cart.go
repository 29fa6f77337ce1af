package cart

import "log"

// Cartridge defines the minimal interface the Bus needs for ROM/RAM banking.
// Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000–0x7FFF) and external RAM (0xA000–0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000–0x7FFF) and external RAM writes (0xA000–0xBFFF).
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges whose external RAM is persisted.
// SaveRAM returns a copy of the active RAM bank.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
	Dirty() bool
	ClearDirty()
}

// NewCartridge picks an implementation based on the ROM header. store may be
// nil, in which case RAM is never persisted.
func NewCartridge(rom []byte, h *Header, store *Battery) Cartridge {
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom, 0)
	case 0x08, 0x09: // ROM+RAM(+BAT)
		return NewROMOnly(rom, h.RAMBanks)
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMBanks, store)
	default:
		log.Printf("cart: type %02X (%s) not supported, falling back to MBC1", h.CartType, h.CartTypeStr)
		return NewMBC1(rom, h.RAMBanks, store)
	}
}

// hasBattery reports whether the cartridge type keeps RAM across power cycles.
func hasBattery(cartType byte) bool {
	switch cartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0x22, 0xFF:
		return true
	}
	return false
}
