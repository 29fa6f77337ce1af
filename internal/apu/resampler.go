package apu

const (
	// NativeRate is the APU tick rate in Hz.
	NativeRate = 4194304

	channelCount = 4
	maxVolume    = 7
)

// Resampler decimates per-tick channel levels to the output rate by
// averaging everything folded in since the previous output sample.
type Resampler struct {
	rate    uint64
	counter uint64
	divisor uint64
	acc     [channelCount]uint64
}

func NewResampler(rate int) *Resampler {
	if rate <= 0 || rate > NativeRate {
		rate = 44100
	}
	return &Resampler{rate: uint64(rate)}
}

// UntilNext returns how many native ticks remain before the next output sample.
func (r *Resampler) UntilNext() uint64 {
	return (NativeRate - r.counter + r.rate - 1) / r.rate
}

// Fold adds energy (level times ticks) for channel ch.
func (r *Resampler) Fold(ch int, energy uint64) { r.acc[ch] += energy }

// Advance records ticks native ticks and reports whether a sample is due.
func (r *Resampler) Advance(ticks uint64) bool {
	r.divisor += ticks
	r.counter += r.rate * ticks
	if r.counter >= NativeRate {
		r.counter -= NativeRate
		return true
	}
	return false
}

// Emit mixes the folded energy into one stereo pair and resets the
// accumulators. routing is NR51 and volume is NR50.
func (r *Resampler) Emit(routing, volume byte) (left, right byte) {
	var sum [2]uint64
	for ch := 0; ch < channelCount; ch++ {
		if routing&(0x10<<ch) != 0 {
			sum[0] += r.acc[ch]
		}
		if routing&(0x01<<ch) != 0 {
			sum[1] += r.acc[ch]
		}
	}
	vol := [2]uint64{uint64(volume>>4) & 7, uint64(volume) & 7}
	var out [2]byte
	for side := range out {
		if r.divisor == 0 {
			break
		}
		s := sum[side] * (vol[side] + 1) * 16
		s /= (maxVolume + 1) * channelCount
		out[side] = byte(s / r.divisor)
	}
	r.acc = [channelCount]uint64{}
	r.divisor = 0
	return out[0], out[1]
}
