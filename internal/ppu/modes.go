package ppu

import "github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"

func (p *PPU) modeOAMScan() {
	if p.lineTicks == 1 {
		p.loadLineSprites()
	}
	if p.lineTicks >= oamScanTicks {
		p.lcd.setMode(ModeTransfer)
		p.pfc.start()
	}
}

func (p *PPU) modeTransfer() {
	p.pipelineProcess()

	if p.pfc.pushedX >= ScreenWidth {
		p.pfc.reset()
		p.lcd.setMode(ModeHBlank)
		if p.lcd.statInt(statHBlank) {
			p.request(interrupt.LCDStat)
		}
	}
}

func (p *PPU) modeHBlank() {
	if p.lineTicks < TicksPerLine {
		return
	}
	p.incrementLY()

	if p.lcd.ly >= ScreenHeight {
		p.enterVBlank()
	} else {
		p.lcd.setMode(ModeOAMScan)
		if p.lcd.statInt(statOAM) {
			p.request(interrupt.LCDStat)
		}
	}
	p.lineTicks = 0
}

func (p *PPU) enterVBlank() {
	p.lcd.setMode(ModeVBlank)
	p.request(interrupt.VBlank)
	if p.lcd.statInt(statVBlank) {
		p.request(interrupt.LCDStat)
	}
	p.frame++
	p.windowLine = 0
	if p.onFrame != nil {
		p.onFrame(p.fb)
	}
}

func (p *PPU) modeVBlank() {
	if p.lineTicks < TicksPerLine {
		return
	}
	p.incrementLY()

	if p.lcd.ly >= LinesPerFrame {
		p.lcd.ly = 0
		p.compareLY()
		p.lcd.setMode(ModeOAMScan)
		if p.lcd.statInt(statOAM) {
			p.request(interrupt.LCDStat)
		}
	}
	p.lineTicks = 0
}

func (p *PPU) incrementLY() {
	l := &p.lcd
	if l.windowVisible() && l.ly >= l.wy && int(l.ly) < int(l.wy)+ScreenHeight {
		p.windowLine++
	}
	l.ly++
	p.compareLY()
}

// compareLY updates the coincidence flag and raises STAT on a match.
func (p *PPU) compareLY() {
	l := &p.lcd
	if l.ly == l.lyc {
		l.stat |= statCoinc
		if l.statInt(statLYC) {
			p.request(interrupt.LCDStat)
		}
	} else {
		l.stat &^= statCoinc
	}
}
