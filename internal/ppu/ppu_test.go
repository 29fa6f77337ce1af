package ppu

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

func statMode(p *PPU) byte { return p.CPURead(STAT) & 0x03 }

func tick(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Tick()
	}
}

func TestFullFrameTiming(t *testing.T) {
	ic := &interrupt.Controller{}
	p := New(ic)
	frames := 0
	p.SetFrameHandler(func(fb []uint32) {
		frames++
		if len(fb) != ScreenWidth*ScreenHeight {
			t.Fatalf("framebuffer len got %d want %d", len(fb), ScreenWidth*ScreenHeight)
		}
	})

	tick(p, LinesPerFrame*TicksPerLine-1)
	if p.CPURead(LY) != 153 {
		t.Fatalf("LY before wrap got %d want 153", p.CPURead(LY))
	}
	tick(p, 1)
	if p.Frame() != 1 || frames != 1 {
		t.Fatalf("frame counter got %d (handler %d) want 1", p.Frame(), frames)
	}
	if ly := p.CPURead(LY); ly != 0 {
		t.Fatalf("LY after frame got %d want 0", ly)
	}
	if m := statMode(p); m != byte(ModeOAMScan) {
		t.Fatalf("mode after frame got %d want 2", m)
	}
	if ic.IF&byte(interrupt.VBlank) == 0 {
		t.Fatalf("VBlank not requested")
	}
}

func TestModeSequenceOneLine(t *testing.T) {
	p := New(nil)
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at start, got %d", m)
	}
	tick(p, oamScanTicks-1)
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at dot 79, got %d", m)
	}
	tick(p, 1)
	if m := statMode(p); m != 3 {
		t.Fatalf("expected mode 3 at dot 80, got %d", m)
	}
	for statMode(p) == 3 {
		if p.LineTicks() >= TicksPerLine {
			t.Fatalf("pixel transfer did not finish within a line")
		}
		p.Tick()
	}
	if m := statMode(p); m != 0 {
		t.Fatalf("expected HBlank after transfer, got %d", m)
	}
	tick(p, TicksPerLine-p.LineTicks())
	if ly := p.CPURead(LY); ly != 1 {
		t.Fatalf("expected LY=1, got %d", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at new line, got %d", m)
	}
}

func TestSTATOnVBlankAndHBlank(t *testing.T) {
	ic := &interrupt.Controller{}
	p := New(ic)
	p.CPUWrite(STAT, statHBlank)
	tick(p, 350)
	if ic.IF&byte(interrupt.LCDStat) == 0 {
		t.Fatalf("expected STAT on HBlank entry")
	}
	ic.IF = 0
	p.CPUWrite(STAT, statVBlank)
	tick(p, ScreenHeight*TicksPerLine)
	if ic.IF&byte(interrupt.LCDStat) == 0 || ic.IF&byte(interrupt.VBlank) == 0 {
		t.Fatalf("expected VBlank and STAT, IF=%02X", ic.IF)
	}
}

func TestLYCCoincidence(t *testing.T) {
	ic := &interrupt.Controller{}
	p := New(ic)
	p.CPUWrite(STAT, statLYC)
	p.CPUWrite(LYC, 1)
	ic.IF = 0
	tick(p, TicksPerLine)
	if ic.IF&byte(interrupt.LCDStat) == 0 {
		t.Fatalf("expected STAT IF on LYC=LY match at LY=1")
	}
	if p.CPURead(STAT)&statCoinc == 0 {
		t.Fatalf("expected coincidence flag set when LY==LYC")
	}
	tick(p, TicksPerLine)
	if p.CPURead(STAT)&statCoinc != 0 {
		t.Fatalf("coincidence flag still set at LY=2")
	}
}

func TestLCDOffStopsClock(t *testing.T) {
	p := New(nil)
	tick(p, 1000)
	p.CPUWrite(LCDC, 0x11)
	if ly := p.CPURead(LY); ly != 0 {
		t.Fatalf("LY after LCD off got %d want 0", ly)
	}
	tick(p, 10*TicksPerLine)
	if ly := p.CPURead(LY); ly != 0 || p.Frame() != 0 {
		t.Fatalf("LCD off still advancing: LY=%d frame=%d", ly, p.Frame())
	}
	p.CPUWrite(LCDC, 0x91)
	if m := statMode(p); m != 2 {
		t.Fatalf("mode after LCD on got %d want 2", m)
	}
}

func TestVRAMAndOAMRoundTrip(t *testing.T) {
	p := New(nil)
	for addr := 0x8000; addr <= 0x9FFF; addr++ {
		v := byte(addr*7 + 3)
		p.WriteVRAM(uint16(addr), v)
		if got := p.ReadVRAM(uint16(addr)); got != v {
			t.Fatalf("VRAM %04X got %02X want %02X", addr, got, v)
		}
	}
	for addr := 0xFE00; addr <= 0xFE9F; addr++ {
		v := byte(addr*5 + 1)
		p.WriteOAM(uint16(addr), v)
		if got := p.ReadOAM(uint16(addr)); got != v {
			t.Fatalf("OAM %04X got %02X want %02X", addr, got, v)
		}
	}
	// Offsets and absolute addresses hit the same slot.
	p.WriteOAM(0x0005, 0xA5)
	if got := p.ReadOAM(0xFE05); got != 0xA5 {
		t.Fatalf("OAM offset write got %02X want A5", got)
	}
	if p.oam[1].x != 0xA5 {
		t.Fatalf("OAM entry 1 x got %02X want A5", p.oam[1].x)
	}
}

func TestOAMAttributeAccessors(t *testing.T) {
	e := oamEntry{flags: 0xF0}
	if !e.bgPriority() || !e.yFlip() || !e.xFlip() || e.palette() != 1 {
		t.Fatalf("accessors on F0 got %v %v %v %d", e.bgPriority(), e.yFlip(), e.xFlip(), e.palette())
	}
	e.flags = 0x20
	if e.bgPriority() || e.yFlip() || !e.xFlip() || e.palette() != 0 {
		t.Fatalf("accessors on 20 wrong")
	}
}

func TestBackgroundRendersTile(t *testing.T) {
	p := New(nil)
	// Tile 1 row 0: low=FF high=00 -> color index 1 across the row.
	p.WriteVRAM(0x8010, 0xFF)
	p.WriteVRAM(0x8011, 0x00)
	p.WriteVRAM(0x9800, 0x01)
	p.CPUWrite(LCDC, 0x91)
	p.CPUWrite(BGP, 0xE4)

	tick(p, TicksPerLine)
	for x := 0; x < 8; x++ {
		if got := p.fb[x]; got != Shades[1] {
			t.Fatalf("pixel %d got %08X want %08X", x, got, Shades[1])
		}
	}
	if got := p.fb[8]; got != Shades[0] {
		t.Fatalf("pixel 8 got %08X want %08X", got, Shades[0])
	}
}

func TestScrollXDiscard(t *testing.T) {
	p := New(nil)
	// Tile 1 row 0 alternates index 1/0 per pixel: 0xAA.
	p.WriteVRAM(0x8010, 0xAA)
	p.WriteVRAM(0x9800, 0x01)
	p.CPUWrite(BGP, 0xE4)
	p.CPUWrite(SCX, 3)

	tick(p, TicksPerLine)
	// With SCX=3 the first visible pixel is tile column 3 (index 0).
	want := []uint32{Shades[0], Shades[1], Shades[0], Shades[1], Shades[0]}
	for x, w := range want {
		if got := p.fb[x]; got != w {
			t.Fatalf("pixel %d got %08X want %08X", x, got, w)
		}
	}
}

func TestSignedTileData(t *testing.T) {
	p := New(nil)
	p.CPUWrite(LCDC, 0x81) // BG on, 0x8800 data area
	p.CPUWrite(BGP, 0xE4)
	// Tile id 0 lives at 0x9000 in signed mode.
	p.WriteVRAM(0x9000, 0x00)
	p.WriteVRAM(0x9001, 0xFF)
	p.WriteVRAM(0x9800, 0x00)
	tick(p, TicksPerLine)
	if got := p.fb[0]; got != Shades[2] {
		t.Fatalf("pixel 0 got %08X want %08X", got, Shades[2])
	}
}

func TestSpriteOverBackground(t *testing.T) {
	p := New(nil)
	p.CPUWrite(LCDC, 0x93) // BG + OBJ
	p.CPUWrite(OBP0, 0xE4)
	// Sprite tile 2 row 0: high plane only -> index 2.
	p.WriteVRAM(0x8021, 0xFF)
	// Sprite 0 at screen x=16, y=0.
	p.WriteOAM(0xFE00, 16)
	p.WriteOAM(0xFE01, 24)
	p.WriteOAM(0xFE02, 2)
	p.WriteOAM(0xFE03, 0)

	tick(p, TicksPerLine)
	if got := p.fb[16]; got != Shades[2] {
		t.Fatalf("sprite pixel got %08X want %08X", got, Shades[2])
	}
	if got := p.fb[15]; got != Shades[0] {
		t.Fatalf("pixel left of sprite got %08X want %08X", got, Shades[0])
	}
}

func TestOAMScanSelectsTenSortedSprites(t *testing.T) {
	p := New(nil)
	xs := []byte{90, 20, 50, 20, 80, 10, 70, 60, 40, 30, 15, 25}
	for i, x := range xs {
		p.WriteOAM(uint16(i*4), 16) // covers LY 0
		p.WriteOAM(uint16(i*4+1), x)
		p.WriteOAM(uint16(i*4+2), byte(i))
	}
	// One more sprite off the line.
	p.WriteOAM(uint16(len(xs)*4), 100)
	p.WriteOAM(uint16(len(xs)*4+1), 5)

	p.Tick()
	if n := p.lineSprites.Len(); n != maxLineSprites {
		t.Fatalf("selected %d sprites want %d", n, maxLineSprites)
	}
	prev := -1
	for i := 0; i < p.lineSprites.Len(); i++ {
		e := p.lineSprites.At(i)
		if int(e.x) < prev {
			t.Fatalf("sprite %d x=%d after x=%d", i, e.x, prev)
		}
		prev = int(e.x)
	}
	// Equal x keeps OAM order: entries 1 and 3 both have x=20.
	for i := 0; i+1 < p.lineSprites.Len(); i++ {
		a, b := p.lineSprites.At(i), p.lineSprites.At(i+1)
		if a.x == 20 && b.x == 20 && a.tile > b.tile {
			t.Fatalf("tie broken out of OAM order: %d before %d", a.tile, b.tile)
		}
	}
}

func TestFIFOBounds(t *testing.T) {
	var q pixelFIFO
	if _, err := q.Pop(); err != ErrFIFOUnderrun {
		t.Fatalf("pop from empty got %v want ErrFIFOUnderrun", err)
	}
	for i := 0; i < fifoCap; i++ {
		if !q.Push(uint32(i)) {
			t.Fatalf("unexpected full at %d", i)
		}
	}
	if q.Push(0) {
		t.Fatalf("push beyond capacity accepted")
	}
	for i := 0; i < fifoCap; i++ {
		v, err := q.Pop()
		if err != nil || v != uint32(i) {
			t.Fatalf("pop %d got %d,%v", i, v, err)
		}
	}
}

func TestFIFOAddRejectedWhenMoreThanEight(t *testing.T) {
	p := New(nil)
	for i := 0; i < 9; i++ {
		p.pfc.fifo.Push(0)
	}
	p.pfc.fetchX = 8
	if p.fifoAdd() {
		t.Fatalf("fifoAdd accepted with 9 queued pixels")
	}
	p.pfc.fifo.Pop()
	if !p.fifoAdd() || p.pfc.fifo.Len() != 16 {
		t.Fatalf("fifoAdd with 8 queued got len %d want 16", p.pfc.fifo.Len())
	}
}

func TestWindowLineCounter(t *testing.T) {
	p := New(nil)
	p.CPUWrite(LCDC, 0xA1) // LCD, BG and window on
	p.CPUWrite(WY, 10)
	p.CPUWrite(WX, 7)

	tick(p, 10*TicksPerLine)
	if ly := p.CPURead(LY); ly != 10 {
		t.Fatalf("expected LY=10, got %d", ly)
	}
	if p.windowLine != 0 {
		t.Fatalf("window line at WY got %d want 0", p.windowLine)
	}
	tick(p, TicksPerLine)
	if p.windowLine != 1 {
		t.Fatalf("window line at WY+1 got %d want 1", p.windowLine)
	}
}

func TestWindowNotVisibleWhenWXTooLarge(t *testing.T) {
	p := New(nil)
	p.CPUWrite(LCDC, 0xA1)
	p.CPUWrite(WY, 5)
	p.CPUWrite(WX, 200)
	tick(p, 12*TicksPerLine)
	if p.windowLine != 0 {
		t.Fatalf("window line got %d want 0 when WX > 166", p.windowLine)
	}
}

func TestWindowCoversLineToRightEdge(t *testing.T) {
	p := New(nil)
	for i := uint16(0); i < 16; i++ {
		p.WriteVRAM(0x8010+i, 0xFF) // tile 1: color index 3 on every row
	}
	for i := uint16(0); i < 32*32; i++ {
		p.WriteVRAM(0x9800+i, 0x01)
	}
	p.CPUWrite(LCDC, 0xB9)
	p.CPUWrite(BGP, 0xE4)
	p.CPUWrite(WY, 0)
	p.CPUWrite(WX, 7)

	tick(p, ScreenHeight*TicksPerLine)
	for _, y := range []int{0, 100, ScreenHeight - 1} {
		for _, x := range []int{0, 150, ScreenWidth - 1} {
			if got := p.fb[y*ScreenWidth+x]; got != Shades[3] {
				t.Fatalf("pixel (%d,%d) got %08X want window %08X", x, y, got, Shades[3])
			}
		}
	}
}

func TestWindowRendersOverBackground(t *testing.T) {
	p := New(nil)
	p.WriteVRAM(0x8010, 0xFF) // tile 1 row 0: color index 1
	p.WriteVRAM(0x9800, 0x01) // window map
	// LCD, window on, 8000 data, BG map at 9C00 (all tile 0), window map 9800.
	p.CPUWrite(LCDC, 0xB9)
	p.CPUWrite(BGP, 0xE4)
	p.CPUWrite(WY, 0)
	p.CPUWrite(WX, 7)

	tick(p, TicksPerLine)
	for x := 0; x < 8; x++ {
		if got := p.fb[x]; got != Shades[1] {
			t.Fatalf("pixel %d got %08X want window %08X", x, got, Shades[1])
		}
	}
}
