package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

// Speaker plays the audio stream through oto. Audio blocks once depth
// converted blocks are queued, which is what paces headless emulation to
// real time.
type Speaker struct {
	ctx     *oto.Context
	player  *oto.Player
	blocks  chan []byte
	pending []byte

	done      chan struct{}
	closeOnce sync.Once
}

// ErrSpeakerClosed is returned by Audio after Close.
var ErrSpeakerClosed = errors.New("sink: speaker closed")

func NewSpeaker(sampleRate, depth int) (*Speaker, error) {
	if depth <= 0 {
		depth = 4
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("sink: speaker: %w", err)
	}
	<-ready
	s := &Speaker{ctx: ctx, blocks: make(chan []byte, depth), done: make(chan struct{})}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

func (s *Speaker) Frame(*emu.Frame) error { return nil }

func (s *Speaker) Audio(b emu.AudioBlock) error {
	select {
	case s.blocks <- encodeFloat32(b):
		return nil
	case <-s.done:
		return ErrSpeakerClosed
	}
}

// Read feeds the oto player. It pads with silence rather than blocking
// when emulation falls behind.
func (s *Speaker) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			select {
			case b := <-s.blocks:
				s.pending = b
			default:
				clear(p[n:])
				return len(p), nil
			}
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

// Close stops playback and releases any Audio call waiting on a full queue.
func (s *Speaker) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.player != nil {
			err = s.player.Close()
		}
	})
	return err
}

func encodeFloat32(b []byte) []byte {
	out := make([]byte, 4*len(b))
	for i, v := range b {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(levelF32(v)))
	}
	return out
}
