package apu

type wave struct {
	on      bool
	dac     bool
	volCode byte
	freq    uint16
	timer   int
	pos     int
	ram     [16]byte

	length lengthCounter
}

func newWave() wave { return wave{length: lengthCounter{max: 256}} }

func (w *wave) period() int { return (2048 - int(w.freq&0x7FF)) * 2 }

// sample returns the 4-bit sample at the current position after the
// volume shift (mute, 100%, 50%, 25%).
func (w *wave) sample() int {
	b := w.ram[w.pos/2]
	if w.pos&1 == 0 {
		b >>= 4
	}
	b &= 0x0F
	switch w.volCode {
	case 0:
		return 0
	case 1:
		return int(b)
	case 2:
		return int(b >> 1)
	default:
		return int(b >> 2)
	}
}

func (w *wave) level() int {
	if !w.on {
		return 0
	}
	return w.sample()
}

func (w *wave) trigger() {
	w.on = w.dac
	w.length.trigger()
	w.timer = w.period()
	w.pos = 0
}

func (w *wave) run(ticks int) int {
	if !w.on {
		return 0
	}
	return countdown(&w.timer, w.period(), ticks, w.level, func() { w.pos = (w.pos + 1) & 31 })
}
