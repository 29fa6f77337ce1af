// Package apu synthesizes the four sound channels and resamples them to
// interleaved unsigned 8-bit stereo.
package apu

const (
	// SequencerPeriod is the number of ticks between frame sequencer steps.
	SequencerPeriod = 8192

	regBase = 0xFF10
	regEnd  = 0xFF3F
	waveRAM = 0xFF30
)

// readMask ORs the unreadable bits of FF10–FF2F.
var readMask = [0x20]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // NR20-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // NR40-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// APU is the DMG sound unit driven by the global tick count.
type APU struct {
	power bool
	regs  [0x20]byte

	ch1 square
	sw  sweep
	ch2 square
	ch3 wave
	ch4 noise

	nr50 byte
	nr51 byte

	ticks    uint64
	seqTicks uint64
	seqStep  int

	res     *Resampler
	buf     []byte
	frames  int
	dropped int
}

// New creates an APU producing sampleRate frames per second, buffering up
// to bufferFrames stereo frames before Full reports true.
func New(sampleRate, bufferFrames int) *APU {
	if bufferFrames <= 0 {
		bufferFrames = 2048
	}
	a := &APU{
		res:    NewResampler(sampleRate),
		frames: bufferFrames,
		buf:    make([]byte, 0, (bufferFrames+64)*2),
	}
	a.reset()
	a.power = true
	a.nr50 = 0x77
	a.nr51 = 0xF3
	return a
}

func (a *APU) reset() {
	a.ch1 = newSquare()
	a.ch2 = newSquare()
	a.sw = sweep{}
	ram := a.ch3.ram
	a.ch3 = newWave()
	a.ch3.ram = ram
	a.ch4 = newNoise()
	a.nr50, a.nr51 = 0, 0
	a.regs = [0x20]byte{}
	a.seqStep = 0
}

// SampleRate returns the output rate in Hz.
func (a *APU) SampleRate() int { return int(a.res.rate) }

// Ticks returns the APU's own tick count.
func (a *APU) Ticks() uint64 { return a.ticks }

// Update advances the APU from its own tick count to total.
func (a *APU) Update(total uint64) {
	for a.ticks < total {
		n := total - a.ticks
		if s := SequencerPeriod - a.seqTicks; s < n {
			n = s
		}
		if s := a.res.UntilNext(); s < n {
			n = s
		}
		a.run(int(n))
		a.ticks += n

		if a.power {
			a.seqTicks += n
			if a.seqTicks == SequencerPeriod {
				a.seqTicks = 0
				a.clockSequencer()
			}
		}
		if a.res.Advance(n) {
			l, r := a.res.Emit(a.nr51, a.nr50)
			a.push(l, r)
		}
	}
}

func (a *APU) run(n int) {
	if !a.power {
		return
	}
	a.res.Fold(0, uint64(a.ch1.run(n)))
	a.res.Fold(1, uint64(a.ch2.run(n)))
	a.res.Fold(2, uint64(a.ch3.run(n)))
	a.res.Fold(3, uint64(a.ch4.run(n)))
}

// clockSequencer runs step seqStep: length on even steps, sweep on 2 and 6,
// envelope on 7.
func (a *APU) clockSequencer() {
	step := a.seqStep
	a.seqStep = (a.seqStep + 1) & 7

	if step&1 == 0 {
		if a.ch1.length.clock() {
			a.ch1.on = false
		}
		if a.ch2.length.clock() {
			a.ch2.on = false
		}
		if a.ch3.length.clock() {
			a.ch3.on = false
		}
		if a.ch4.length.clock() {
			a.ch4.on = false
		}
	}
	if (step == 2 || step == 6) && a.ch1.on {
		if !a.sw.clock(&a.ch1) {
			a.ch1.on = false
		}
	}
	if step == 7 {
		a.ch1.env.clock()
		a.ch2.env.clock()
		a.ch4.env.clock()
	}
}

func (a *APU) push(l, r byte) {
	if len(a.buf) == cap(a.buf) {
		a.dropped++
		return
	}
	a.buf = append(a.buf, l, r)
}

// Full reports whether the output buffer holds bufferFrames frames.
func (a *APU) Full() bool { return len(a.buf) >= a.frames*2 }

// Samples returns the buffered interleaved stereo samples without draining.
func (a *APU) Samples() []byte { return a.buf }

// Drain copies buffered samples into dst and removes them from the buffer.
func (a *APU) Drain(dst []byte) int {
	n := copy(dst, a.buf)
	rest := copy(a.buf, a.buf[n:])
	a.buf = a.buf[:rest]
	return n
}

// Dropped returns the number of frames lost because nobody drained the buffer.
func (a *APU) Dropped() int { return a.dropped }

// Active reports the NR52 channel status bits.
func (a *APU) Active() byte {
	var b byte
	for i, on := range [4]bool{a.ch1.on, a.ch2.on, a.ch3.on, a.ch4.on} {
		if on {
			b |= 1 << i
		}
	}
	return b
}

// CPURead reads FF10–FF3F.
func (a *APU) CPURead(addr uint16) byte {
	if addr >= waveRAM && addr <= regEnd {
		return a.ch3.ram[addr-waveRAM]
	}
	if addr < regBase || addr >= waveRAM {
		return 0xFF
	}
	i := addr - regBase
	switch addr {
	case 0xFF24:
		return a.nr50
	case 0xFF25:
		return a.nr51
	case 0xFF26:
		var p byte
		if a.power {
			p = 0x80
		}
		return p | 0x70 | a.Active()
	}
	return a.regs[i] | readMask[i]
}

// CPUWrite writes FF10–FF3F. While powered off only NR52 and wave RAM
// accept writes.
func (a *APU) CPUWrite(addr uint16, v byte) {
	if addr >= waveRAM && addr <= regEnd {
		a.ch3.ram[addr-waveRAM] = v
		return
	}
	if addr < regBase || addr >= waveRAM {
		return
	}
	if addr == 0xFF26 {
		on := v&0x80 != 0
		if a.power && !on {
			a.reset()
		}
		if !a.power && on {
			a.seqTicks = 0
			a.seqStep = 0
		}
		a.power = on
		return
	}
	if !a.power {
		return
	}
	a.regs[addr-regBase] = v

	switch addr {
	case 0xFF10:
		a.sw.write(v)
	case 0xFF11:
		a.ch1.duty = v >> 6
		a.ch1.length.load(int(v & 0x3F))
	case 0xFF12:
		a.ch1.env.write(v)
		if !a.ch1.env.dac() {
			a.ch1.on = false
		}
	case 0xFF13:
		a.ch1.freq = a.ch1.freq&0x700 | uint16(v)
	case 0xFF14:
		a.ch1.freq = a.ch1.freq&0xFF | uint16(v&7)<<8
		a.ch1.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch1.trigger()
			if !a.sw.trigger(a.ch1.freq) {
				a.ch1.on = false
			}
		}

	case 0xFF16:
		a.ch2.duty = v >> 6
		a.ch2.length.load(int(v & 0x3F))
	case 0xFF17:
		a.ch2.env.write(v)
		if !a.ch2.env.dac() {
			a.ch2.on = false
		}
	case 0xFF18:
		a.ch2.freq = a.ch2.freq&0x700 | uint16(v)
	case 0xFF19:
		a.ch2.freq = a.ch2.freq&0xFF | uint16(v&7)<<8
		a.ch2.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch2.trigger()
		}

	case 0xFF1A:
		a.ch3.dac = v&0x80 != 0
		if !a.ch3.dac {
			a.ch3.on = false
		}
	case 0xFF1B:
		a.ch3.length.load(int(v))
	case 0xFF1C:
		a.ch3.volCode = (v >> 5) & 3
	case 0xFF1D:
		a.ch3.freq = a.ch3.freq&0x700 | uint16(v)
	case 0xFF1E:
		a.ch3.freq = a.ch3.freq&0xFF | uint16(v&7)<<8
		a.ch3.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch3.trigger()
		}

	case 0xFF20:
		a.ch4.length.load(int(v & 0x3F))
	case 0xFF21:
		a.ch4.env.write(v)
		if !a.ch4.env.dac() {
			a.ch4.on = false
		}
	case 0xFF22:
		a.ch4.write(v)
	case 0xFF23:
		a.ch4.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch4.trigger()
		}

	case 0xFF24:
		a.nr50 = v
	case 0xFF25:
		a.nr51 = v
	}
}
