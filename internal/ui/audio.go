package ui

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

// startAudio creates the ebiten audio player fed from the runner's audio
// queue.
func (a *App) startAudio(sampleRate int) error {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	a.audioSrc = &apuStream{blocks: a.r.Audio(), mono: !a.cfg.AudioStereo}
	p, err := ctx.NewPlayer(a.audioSrc)
	if err != nil {
		return err
	}
	a.audioPlayer = p
	a.audioPlayer.SetBufferSize(time.Duration(a.cfg.AudioBufferMs) * time.Millisecond)
	a.audioPlayer.Play()
	return nil
}

// apuStream implements io.Reader by pulling blocks from the runner and
// converting them to 16-bit little-endian stereo frames.
type apuStream struct {
	blocks  <-chan emu.AudioBlock
	pending emu.AudioBlock
	mono    bool
	closed  bool
	// stats
	underruns atomic.Int64
}

const streamWait = 15 * time.Millisecond

func (s *apuStream) Read(p []byte) (int, error) {
	// Each frame is 4 bytes (stereo int16). Anything shorter is silence.
	if len(p) < 4 {
		clear(p)
		return len(p), nil
	}
	i := 0
	for i+3 < len(p) {
		if len(s.pending) < 2 {
			if !s.next(i == 0) {
				break
			}
			continue
		}
		l, r := level16(s.pending[0]), level16(s.pending[1])
		s.pending = s.pending[2:]
		if s.mono {
			m := int16((int32(l) + int32(r)) / 2)
			l, r = m, m
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(l))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
		i += 4
	}
	if i == 0 {
		// Nothing arrived in time: hand back a short silence chunk.
		s.underruns.Add(1)
		n := min(len(p)&^3, 256*4)
		clear(p[:n])
		return n, nil
	}
	return i, nil
}

// next loads the following block. When wait is set it waits briefly for
// emulation to produce one.
func (s *apuStream) next(wait bool) bool {
	if s.closed {
		return false
	}
	if !wait {
		select {
		case b, ok := <-s.blocks:
			return s.take(b, ok)
		default:
			return false
		}
	}
	select {
	case b, ok := <-s.blocks:
		return s.take(b, ok)
	case <-time.After(streamWait):
		return false
	}
}

func (s *apuStream) take(b emu.AudioBlock, ok bool) bool {
	if !ok {
		s.closed = true
		return false
	}
	s.pending = b
	return true
}

func level16(v byte) int16 { return int16(v) << 7 }
