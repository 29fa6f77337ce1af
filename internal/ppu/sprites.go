package ppu

const (
	maxLineSprites  = 10
	maxFetchSprites = 3
)

// spriteList is the per-line selection, ordered by x then OAM index.
type spriteList struct {
	entries [maxLineSprites]oamEntry
	n       int
}

func (l *spriteList) Reset()            { l.n = 0 }
func (l *spriteList) Len() int          { return l.n }
func (l *spriteList) At(i int) oamEntry { return l.entries[i] }

// insert keeps the list ordered by ascending x. Equal x keeps the earlier
// insertion first, so OAM order breaks ties.
func (l *spriteList) insert(e oamEntry) bool {
	if l.n == maxLineSprites {
		return false
	}
	i := l.n
	for i > 0 && l.entries[i-1].x > e.x {
		l.entries[i] = l.entries[i-1]
		i--
	}
	l.entries[i] = e
	l.n++
	return true
}

// loadLineSprites scans all of OAM for sprites covering LY.
func (p *PPU) loadLineSprites() {
	p.lineSprites.Reset()
	curY := int(p.lcd.ly) + 16
	height := p.lcd.objHeight()
	for _, e := range p.oam {
		if e.x == 0 {
			continue
		}
		if p.lineSprites.Len() >= maxLineSprites {
			break
		}
		if int(e.y) <= curY && int(e.y)+height > curY {
			p.lineSprites.insert(e)
		}
	}
}

// loadSpriteTiles picks up to three line sprites overlapping the 8 pixels
// about to be fetched.
func (p *PPU) loadSpriteTiles() {
	fx := p.pfc.fetchX
	for i := 0; i < p.lineSprites.Len(); i++ {
		e := p.lineSprites.At(i)
		spX := int(e.x) - 8 + int(p.lcd.scx%8)
		if (spX >= fx && spX < fx+8) || (spX+8 >= fx && spX+8 < fx+8) {
			p.fetched[p.fetchedCount] = e
			p.fetchedCount++
		}
		if p.fetchedCount >= maxFetchSprites {
			break
		}
	}
}

// loadSpriteData reads bitplane offset (0 low, 1 high) of each fetched sprite row.
func (p *PPU) loadSpriteData(offset int) {
	curY := int(p.lcd.ly) + 16
	height := p.lcd.objHeight()
	for i := 0; i < p.fetchedCount; i++ {
		e := p.fetched[i]
		ty := (curY - int(e.y)) * 2
		if e.yFlip() {
			ty = height*2 - 2 - ty
		}
		tile := e.tile
		if height == 16 {
			tile &^= 1
		}
		p.pfc.objData[i*2+offset] = p.ReadVRAM(0x8000 + uint16(tile)*16 + uint16(ty+offset))
	}
}

// spritePixel mixes fetched sprites over a background pixel.
func (p *PPU) spritePixel(color uint32, bgIndex byte) uint32 {
	for i := 0; i < p.fetchedCount; i++ {
		e := p.fetched[i]
		spX := int(e.x) - 8 + int(p.lcd.scx%8)
		if spX+8 < p.pfc.fifoX {
			continue
		}
		offset := p.pfc.fifoX - spX
		if offset < 0 || offset > 7 {
			continue
		}
		bit := 7 - offset
		if e.xFlip() {
			bit = offset
		}
		lo := (p.pfc.objData[i*2] >> bit) & 1
		hi := ((p.pfc.objData[i*2+1] >> bit) & 1) << 1
		idx := lo | hi
		if idx == 0 {
			continue
		}
		if !e.bgPriority() || bgIndex == 0 {
			return p.lcd.objColors[e.palette()][idx]
		}
	}
	return color
}
