// Package ppu renders the 160x144 LCD one pixel per tick through a
// background/window fetcher feeding a pixel FIFO.
package ppu

import "github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"

const (
	ScreenWidth   = 160
	ScreenHeight  = 144
	LinesPerFrame = 154
	TicksPerLine  = 456

	oamScanTicks = 80
)

// Mode is the value of STAT bits 0-1.
type Mode byte

const (
	ModeHBlank   Mode = 0
	ModeVBlank   Mode = 1
	ModeOAMScan  Mode = 2
	ModeTransfer Mode = 3
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBLANK"
	case ModeVBlank:
		return "VBLANK"
	case ModeOAMScan:
		return "OAM"
	default:
		return "XFER"
	}
}

// PPU owns VRAM, OAM, the LCD registers and the framebuffer.
type PPU struct {
	vram [0x2000]byte
	oam  [40]oamEntry
	lcd  lcd
	pfc  pipeline

	lineSprites  spriteList
	fetched      [maxFetchSprites]oamEntry
	fetchedCount int

	windowLine byte
	frame      uint64
	lineTicks  int
	fb         []uint32

	irq     interrupt.Requester
	onFrame func(fb []uint32)
}

func New(irq interrupt.Requester) *PPU {
	p := &PPU{irq: irq, fb: make([]uint32, ScreenWidth*ScreenHeight)}
	p.lcd.reset()
	return p
}

// SetFrameHandler registers fn to be called once per frame on VBlank entry.
// fn must not keep fb past its return.
func (p *PPU) SetFrameHandler(fn func(fb []uint32)) { p.onFrame = fn }

// Framebuffer returns the live framebuffer, row major, 0xAARRGGBB.
func (p *PPU) Framebuffer() []uint32 { return p.fb }

// Frame returns the number of frames completed.
func (p *PPU) Frame() uint64 { return p.frame }

func (p *PPU) Mode() Mode { return p.lcd.mode() }

func (p *PPU) LineTicks() int { return p.lineTicks }

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	if !p.lcd.enabled() {
		return
	}
	p.lineTicks++

	switch p.lcd.mode() {
	case ModeOAMScan:
		p.modeOAMScan()
	case ModeTransfer:
		p.modeTransfer()
	case ModeHBlank:
		p.modeHBlank()
	case ModeVBlank:
		p.modeVBlank()
	}
}

func (p *PPU) request(k interrupt.Kind) {
	if p.irq != nil {
		p.irq.Request(k)
	}
}

func (p *PPU) lcdOff() {
	p.lcd.ly = 0
	p.lineTicks = 0
	p.lcd.setMode(ModeHBlank)
	p.pfc.reset()
}

func (p *PPU) lcdOn() {
	p.lcd.ly = 0
	p.lineTicks = 0
	p.windowLine = 0
	p.lcd.setMode(ModeOAMScan)
	p.compareLY()
}
