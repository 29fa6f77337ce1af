package ppu

type fetchState byte

const (
	fetchTile fetchState = iota
	fetchDataLow
	fetchDataHigh
	fetchIdle
	fetchPush
)

// pipeline is the fetcher and FIFO state for one scanline.
type pipeline struct {
	state fetchState
	fifo  pixelFIFO

	lineX   int // pixels popped, including discarded ones
	pushedX int // pixels written to the framebuffer
	fetchX  int
	fifoX   int

	bgw     [3]byte // tile id, low plane, high plane
	objData [maxFetchSprites * 2]byte
	window  bool // current tile came from the window map

	mapX  byte
	mapY  byte
	tileY byte
}

func (f *pipeline) start() {
	f.state = fetchTile
	f.lineX, f.fetchX, f.pushedX, f.fifoX = 0, 0, 0, 0
}

func (f *pipeline) reset() { f.fifo.Clear() }

func (p *PPU) pipelineProcess() {
	f := &p.pfc
	l := &p.lcd
	f.mapX = byte(f.fetchX) + l.scx
	f.mapY = l.ly + l.scy
	f.tileY = (f.mapY % 8) * 2

	if p.lineTicks&1 == 0 {
		p.fetch()
	}
	p.pushPixel()
}

func (p *PPU) fetch() {
	f := &p.pfc
	l := &p.lcd
	switch f.state {
	case fetchTile:
		p.fetchedCount = 0
		f.window = false
		if l.bgwEnabled() {
			f.bgw[0] = p.ReadVRAM(l.bgMapArea() + uint16(f.mapX/8) + uint16(f.mapY/8)*32)
			if l.bgwDataArea() == 0x8800 {
				f.bgw[0] += 128
			}
			p.loadWindowTile()
		}
		if l.objEnabled() && p.lineSprites.Len() > 0 {
			p.loadSpriteTiles()
		}
		f.state = fetchDataLow
		f.fetchX += 8

	case fetchDataLow:
		f.bgw[1] = p.ReadVRAM(p.tileRowAddr())
		p.loadSpriteData(0)
		f.state = fetchDataHigh

	case fetchDataHigh:
		f.bgw[2] = p.ReadVRAM(p.tileRowAddr() + 1)
		p.loadSpriteData(1)
		f.state = fetchIdle

	case fetchIdle:
		f.state = fetchPush

	case fetchPush:
		if p.fifoAdd() {
			f.state = fetchTile
		}
	}
}

func (p *PPU) tileRowAddr() uint16 {
	f := &p.pfc
	row := uint16(f.tileY)
	if f.window {
		row = uint16(p.windowLine%8) * 2
	}
	return p.lcd.bgwDataArea() + uint16(f.bgw[0])*16 + row
}

// loadWindowTile replaces the background tile id when the window covers
// the span being fetched.
func (p *PPU) loadWindowTile() {
	l := &p.lcd
	if !l.windowVisible() {
		return
	}
	wx := int(l.wx)
	fx := p.pfc.fetchX + 7
	if fx < wx || fx >= wx+ScreenWidth+7 {
		return
	}
	if l.ly < l.wy {
		return
	}
	tileY := uint16(p.windowLine / 8)
	p.pfc.bgw[0] = p.ReadVRAM(l.winMapArea() + uint16((fx-wx)/8) + tileY*32)
	if l.bgwDataArea() == 0x8800 {
		p.pfc.bgw[0] += 128
	}
	p.pfc.window = true
}

// fifoAdd pushes the 8 decoded pixels. It refuses while the FIFO holds
// more than 8 entries.
func (p *PPU) fifoAdd() bool {
	f := &p.pfc
	l := &p.lcd
	if f.fifo.Len() > 8 {
		return false
	}

	x := f.fetchX - (8 - int(l.scx%8))
	for i := 0; i < 8; i++ {
		bit := 7 - i
		var idx byte
		if l.bgwEnabled() {
			lo := (f.bgw[1] >> bit) & 1
			hi := ((f.bgw[2] >> bit) & 1) << 1
			idx = lo | hi
		}
		color := l.bgColors[idx]
		if l.objEnabled() {
			color = p.spritePixel(color, idx)
		}
		if x >= 0 {
			f.fifo.Push(color)
			f.fifoX++
		}
	}
	return true
}

// pushPixel pops one pixel into the framebuffer once the FIFO holds more
// than 8 entries, dropping the first SCX%8 pixels of the line.
func (p *PPU) pushPixel() {
	f := &p.pfc
	if f.fifo.Len() <= 8 {
		return
	}
	c, err := f.fifo.Pop()
	if err != nil {
		panic(err)
	}
	if f.lineX >= int(p.lcd.scx%8) {
		p.fb[f.pushedX+int(p.lcd.ly)*ScreenWidth] = c
		f.pushedX++
	}
	f.lineX++
}
