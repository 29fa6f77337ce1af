package ppu

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// LCD register addresses.
const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

// STAT interrupt source bits.
const (
	statHBlank = 1 << 3
	statVBlank = 1 << 4
	statOAM    = 1 << 5
	statLYC    = 1 << 6
	statCoinc  = 1 << 2
)

// Shades is the four-color DMG palette as 0xAARRGGBB.
var Shades = [4]uint32{
	argb(colornames.White),
	argb(colornames.Darkgray),
	argb(colornames.Dimgray),
	argb(colornames.Black),
}

func argb(c color.RGBA) uint32 {
	return 0xFF000000 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

type lcd struct {
	lcdc byte
	stat byte
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp  [2]byte
	wy   byte
	wx   byte

	bgColors  [4]uint32
	objColors [2][4]uint32
}

func (l *lcd) reset() {
	*l = lcd{lcdc: 0x91, bgp: 0xFC, obp: [2]byte{0xFF, 0xFF}}
	l.setMode(ModeOAMScan)
	updatePalette(&l.bgColors, l.bgp)
	updatePalette(&l.objColors[0], l.obp[0]&0xFC)
	updatePalette(&l.objColors[1], l.obp[1]&0xFC)
}

func updatePalette(dst *[4]uint32, v byte) {
	for i := range dst {
		dst[i] = Shades[(v>>(i*2))&0x03]
	}
}

func (l *lcd) enabled() bool     { return l.lcdc&0x80 != 0 }
func (l *lcd) bgwEnabled() bool  { return l.lcdc&0x01 != 0 }
func (l *lcd) objEnabled() bool  { return l.lcdc&0x02 != 0 }
func (l *lcd) winEnabled() bool  { return l.lcdc&0x20 != 0 }
func (l *lcd) bgMapArea() uint16 { return mapArea(l.lcdc&0x08 != 0) }
func (l *lcd) winMapArea() uint16 {
	return mapArea(l.lcdc&0x40 != 0)
}

func mapArea(high bool) uint16 {
	if high {
		return 0x9C00
	}
	return 0x9800
}

// bgwDataArea returns 0x8000 (unsigned tile ids) or 0x8800 (signed).
func (l *lcd) bgwDataArea() uint16 {
	if l.lcdc&0x10 != 0 {
		return 0x8000
	}
	return 0x8800
}

func (l *lcd) objHeight() int {
	if l.lcdc&0x04 != 0 {
		return 16
	}
	return 8
}

func (l *lcd) mode() Mode            { return Mode(l.stat & 0x03) }
func (l *lcd) setMode(m Mode)        { l.stat = l.stat&^0x03 | byte(m) }
func (l *lcd) statInt(bit byte) bool { return l.stat&bit != 0 }

func (l *lcd) windowVisible() bool {
	return l.winEnabled() && l.wx <= 166 && l.wy < ScreenHeight
}

// CPURead returns LCD registers FF40–FF4B (except DMA at FF46).
func (p *PPU) CPURead(addr uint16) byte {
	l := &p.lcd
	switch addr {
	case LCDC:
		return l.lcdc
	case STAT:
		return 0x80 | l.stat
	case SCY:
		return l.scy
	case SCX:
		return l.scx
	case LY:
		return l.ly
	case LYC:
		return l.lyc
	case BGP:
		return l.bgp
	case OBP0:
		return l.obp[0]
	case OBP1:
		return l.obp[1]
	case WY:
		return l.wy
	case WX:
		return l.wx
	}
	return 0xFF
}

func (p *PPU) CPUWrite(addr uint16, v byte) {
	l := &p.lcd
	switch addr {
	case LCDC:
		wasOn := l.enabled()
		l.lcdc = v
		if wasOn && !l.enabled() {
			p.lcdOff()
		} else if !wasOn && l.enabled() {
			p.lcdOn()
		}
	case STAT:
		l.stat = l.stat&0x07 | v&0x78
	case SCY:
		l.scy = v
	case SCX:
		l.scx = v
	case LY:
		// read only
	case LYC:
		l.lyc = v
		p.compareLY()
	case BGP:
		l.bgp = v
		updatePalette(&l.bgColors, v)
	case OBP0:
		l.obp[0] = v
		updatePalette(&l.objColors[0], v&0xFC)
	case OBP1:
		l.obp[1] = v
		updatePalette(&l.objColors[1], v&0xFC)
	case WY:
		l.wy = v
	case WX:
		l.wx = v
	}
}
