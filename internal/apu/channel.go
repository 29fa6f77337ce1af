package apu

// lengthCounter silences a channel after a programmed number of
// sequencer length clocks.
type lengthCounter struct {
	value   int
	max     int
	enabled bool
}

func (l *lengthCounter) load(v int) { l.value = l.max - v }

func (l *lengthCounter) trigger() {
	if l.value == 0 {
		l.value = l.max
	}
}

// clock returns true when the counter expires.
func (l *lengthCounter) clock() bool {
	if !l.enabled || l.value == 0 {
		return false
	}
	l.value--
	return l.value == 0
}

// envelope steps volume up or down every period sequencer step-7 clocks.
type envelope struct {
	initial byte
	up      bool
	period  byte
	volume  byte
	timer   byte
	auto    bool
}

func (e *envelope) write(v byte) {
	e.initial = v >> 4
	e.up = v&0x08 != 0
	e.period = v & 0x07
}

// dac reports whether NRx2 leaves the DAC powered.
func (e *envelope) dac() bool { return e.initial != 0 || e.up }

func (e *envelope) trigger() {
	e.volume = e.initial
	e.timer = e.period
	e.auto = e.period != 0
}

func (e *envelope) clock() {
	if !e.auto {
		return
	}
	if e.timer > 0 {
		e.timer--
	}
	if e.timer != 0 {
		return
	}
	e.timer = e.period
	switch {
	case e.up && e.volume < 15:
		e.volume++
	case !e.up && e.volume > 0:
		e.volume--
	default:
		e.auto = false
	}
}

// countdown runs a channel's frequency timer for ticks ticks, summing the
// level held during each tick. step is called each time the timer expires.
func countdown(timer *int, period int, ticks int, level func() int, step func()) int {
	energy := 0
	for ticks > 0 {
		n := *timer
		if n > ticks {
			n = ticks
		}
		energy += level() * n
		*timer -= n
		ticks -= n
		if *timer == 0 {
			*timer = period
			step()
		}
	}
	return energy
}
