package cart

// ROMOnly is a cartridge without a bank controller. It may carry a single
// RAM bank mapped at 0xA000.
type ROMOnly struct {
	rom   []byte
	ram   []byte
	dirty bool
}

func NewROMOnly(rom []byte, ramBanks int) *ROMOnly {
	c := &ROMOnly{rom: rom}
	if ramBanks > 0 {
		c.ram = make([]byte, RAMBankSize)
	}
	return c
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if c.ram == nil {
			return 0xFF
		}
		return c.ram[addr-0xA000]
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr <= 0xBFFF && c.ram != nil {
		c.ram[addr-0xA000] = value
		c.dirty = true
	}
}

func (c *ROMOnly) SaveRAM() []byte {
	if c.ram == nil {
		return nil
	}
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

func (c *ROMOnly) LoadRAM(data []byte) {
	if c.ram != nil {
		copy(c.ram, data)
	}
}

func (c *ROMOnly) Dirty() bool { return c.dirty }
func (c *ROMOnly) ClearDirty() { c.dirty = false }
