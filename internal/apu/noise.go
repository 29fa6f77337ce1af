package apu

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// StepLFSR shifts the noise register once. Bit 0 XOR bit 1 is fed back
// into bit 14, and also into bit 6 when narrow is set.
func StepLFSR(lfsr uint16, narrow bool) uint16 {
	bit := (lfsr ^ lfsr>>1) & 1
	lfsr = lfsr>>1 | bit<<14
	if narrow {
		lfsr = lfsr&^(1<<6) | bit<<6
	}
	return lfsr
}

type noise struct {
	on      bool
	shift   byte
	narrow  bool
	divCode byte
	timer   int
	lfsr    uint16

	length lengthCounter
	env    envelope
}

func newNoise() noise { return noise{length: lengthCounter{max: 64}, lfsr: 0x7FFF} }

func (n *noise) write(v byte) {
	n.shift = v >> 4
	n.narrow = v&0x08 != 0
	n.divCode = v & 0x07
}

func (n *noise) period() int { return noiseDivisors[n.divCode] << n.shift }

// level outputs the volume while bit 0 of the LFSR is clear.
func (n *noise) level() int {
	if !n.on || n.lfsr&1 != 0 {
		return 0
	}
	return int(n.env.volume)
}

func (n *noise) trigger() {
	n.on = n.env.dac()
	n.length.trigger()
	n.timer = n.period()
	n.lfsr = 0x7FFF
	n.env.trigger()
}

func (n *noise) run(ticks int) int {
	if !n.on {
		return 0
	}
	return countdown(&n.timer, n.period(), ticks, n.level, func() { n.lfsr = StepLFSR(n.lfsr, n.narrow) })
}
