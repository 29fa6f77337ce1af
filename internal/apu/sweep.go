package apu

// sweep is channel 1's periodic frequency shifter.
type sweep struct {
	period  byte
	negate  bool
	shift   byte
	timer   byte
	enabled bool
	shadow  uint16
}

func (sw *sweep) write(v byte) {
	sw.period = (v >> 4) & 0x07
	sw.negate = v&0x08 != 0
	sw.shift = v & 0x07
}

func (sw *sweep) reload() {
	sw.timer = sw.period
	if sw.timer == 0 {
		sw.timer = 8
	}
}

func (sw *sweep) next() uint16 {
	d := sw.shadow >> sw.shift
	if sw.negate {
		return sw.shadow - d
	}
	return sw.shadow + d
}

// trigger reloads the sweep from ch and reports whether the initial
// overflow check passes.
func (sw *sweep) trigger(freq uint16) bool {
	sw.shadow = freq
	sw.reload()
	sw.enabled = sw.period != 0 || sw.shift != 0
	return sw.shift == 0 || sw.next() <= 2047
}

// clock runs one sweep step on ch. It returns false if the channel must be
// disabled on overflow.
func (sw *sweep) clock(ch *square) bool {
	if sw.timer > 0 {
		sw.timer--
	}
	if sw.timer != 0 {
		return true
	}
	sw.reload()
	if !sw.enabled || sw.period == 0 {
		return true
	}
	f := sw.next()
	if f > 2047 {
		return false
	}
	if sw.shift != 0 {
		sw.shadow = f
		ch.freq = f
		if sw.next() > 2047 {
			return false
		}
	}
	return true
}
