package ppu

// oamEntry is one 4-byte sprite descriptor.
type oamEntry struct {
	y     byte
	x     byte
	tile  byte
	flags byte
}

const (
	attrBGPriority = 1 << 7
	attrYFlip      = 1 << 6
	attrXFlip      = 1 << 5
	attrPalette    = 1 << 4
)

// bgPriority reports BG/window colors 1-3 drawn over the sprite.
func (e oamEntry) bgPriority() bool { return e.flags&attrBGPriority != 0 }
func (e oamEntry) yFlip() bool      { return e.flags&attrYFlip != 0 }
func (e oamEntry) xFlip() bool      { return e.flags&attrXFlip != 0 }

// palette returns 0 for OBP0 and 1 for OBP1.
func (e oamEntry) palette() int { return int(e.flags&attrPalette) >> 4 }

func (e *oamEntry) byteAt(field int) *byte {
	switch field {
	case 0:
		return &e.y
	case 1:
		return &e.x
	case 2:
		return &e.tile
	default:
		return &e.flags
	}
}

func oamOffset(addr uint16) int {
	if addr >= 0xFE00 {
		addr -= 0xFE00
	}
	return int(addr) % 0xA0
}

// ReadOAM reads OAM as a flat byte array. addr may be absolute (0xFE00+) or an offset.
func (p *PPU) ReadOAM(addr uint16) byte {
	off := oamOffset(addr)
	return *p.oam[off/4].byteAt(off % 4)
}

func (p *PPU) WriteOAM(addr uint16, v byte) {
	off := oamOffset(addr)
	*p.oam[off/4].byteAt(off % 4) = v
}

// ReadVRAM reads video RAM at an absolute 0x8000–0x9FFF address.
func (p *PPU) ReadVRAM(addr uint16) byte { return p.vram[(addr-0x8000)&0x1FFF] }

func (p *PPU) WriteVRAM(addr uint16, v byte) { p.vram[(addr-0x8000)&0x1FFF] = v }
