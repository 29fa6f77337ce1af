package emu

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/apu"
)

// FrameDuration is the real time one LCD frame takes on hardware.
const FrameDuration = time.Duration(TicksPerFrame) * time.Second / apu.NativeRate

const pausePoll = 10 * time.Millisecond

// Frame is a completed LCD frame in 0xAARRGGBB pixels.
type Frame struct {
	Number uint64
	Pixels []uint32
}

// AudioBlock is interleaved unsigned 8-bit stereo.
type AudioBlock []byte

// Sink consumes runner output on the presenter goroutine.
type Sink interface {
	Frame(f *Frame) error
	Audio(b AudioBlock) error
}

type RunnerOptions struct {
	AudioDepth   int    // audio blocks queued before emulation waits
	DiscardAudio bool   // drain the APU without queueing blocks
	Realtime     bool   // pace frames to the hardware refresh rate
	MaxFrames    uint64 // stop after this many frames; 0 runs until cancelled
}

// Runner moves a Machine onto its own goroutine. Frames are published only
// at VBlank entry through a one-slot channel where the newest frame
// replaces an unread one. Audio blocks are never dropped: emulation waits
// while the audio queue is full.
type Runner struct {
	m      *Machine
	opts   RunnerOptions
	frames chan *Frame
	audio  chan AudioBlock
	latest atomic.Pointer[Frame]
}

func NewRunner(m *Machine, opts RunnerOptions) *Runner {
	if opts.AudioDepth <= 0 {
		opts.AudioDepth = 4
	}
	r := &Runner{
		m:      m,
		opts:   opts,
		frames: make(chan *Frame, 1),
		audio:  make(chan AudioBlock, opts.AudioDepth),
	}
	m.SetFrameHandler(r.publish)
	return r
}

func (r *Runner) Frames() <-chan *Frame    { return r.frames }
func (r *Runner) Audio() <-chan AudioBlock { return r.audio }

// Latest returns the most recently completed frame, or nil before the first.
func (r *Runner) Latest() *Frame { return r.latest.Load() }

func (r *Runner) publish(fb []uint32, n uint64) {
	f := &Frame{Number: n, Pixels: append([]uint32(nil), fb...)}
	r.latest.Store(f)
	select {
	case r.frames <- f:
	default:
		select {
		case <-r.frames:
		default:
		}
		select {
		case r.frames <- f:
		default:
		}
	}
}

// Run emulates and presents to sink until ctx is cancelled, MaxFrames is
// reached, the sink fails or the CPU hits an invalid opcode.
func (r *Runner) Run(ctx context.Context, sink Sink) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Emulate(ctx) })
	g.Go(func() error { return r.present(ctx, sink) })
	return g.Wait()
}

// Emulate is the emulation loop. It closes the output channels and flushes
// battery RAM when it returns. Cancellation is not an error.
func (r *Runner) Emulate(ctx context.Context) error {
	defer close(r.audio)
	defer close(r.frames)
	defer func() {
		if err := r.m.Close(); err != nil {
			log.Printf("emu: %v", err)
		}
	}()

	var pace <-chan time.Time
	if r.opts.Realtime {
		t := time.NewTicker(FrameDuration)
		defer t.Stop()
		pace = t.C
	}

	for ctx.Err() == nil {
		if r.m.Paused() {
			select {
			case <-ctx.Done():
			case <-time.After(pausePoll):
			}
			continue
		}
		ev := r.m.RunUntil(r.m.Ticks() + TicksPerFrame)
		if ev&EventInvalidOpcode != 0 {
			return r.m.Err()
		}
		if ev&EventBreakpoint != 0 {
			log.Printf("emu: breakpoint at %04X", r.m.CPU().PC())
			r.m.SetPaused(true)
		}
		if err := r.flushAudio(ctx); err != nil {
			return nil
		}
		if ev&EventNewFrame == 0 {
			continue
		}
		if r.opts.MaxFrames > 0 && r.m.Frame() >= r.opts.MaxFrames {
			return nil
		}
		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
	}
	return nil
}

func (r *Runner) flushAudio(ctx context.Context) error {
	n := r.m.BufferedAudio()
	if n == 0 {
		return nil
	}
	if r.opts.DiscardAudio {
		r.m.DrainAudio(nil)
		return nil
	}
	b := make(AudioBlock, n)
	r.m.DrainAudio(b)
	select {
	case r.audio <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) present(ctx context.Context, sink Sink) error {
	frames, audio := r.frames, r.audio
	for frames != nil || audio != nil {
		select {
		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			if err := sink.Frame(f); err != nil {
				return err
			}
		case b, ok := <-audio:
			if !ok {
				audio = nil
				continue
			}
			if err := sink.Audio(b); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
