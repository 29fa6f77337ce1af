package emu

import (
	"context"
	"errors"
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
)

type recordSink struct {
	frames   []uint64
	audio    int
	onFrame  func(f *Frame)
	frameErr error
}

func (s *recordSink) Frame(f *Frame) error {
	s.frames = append(s.frames, f.Number)
	if s.onFrame != nil {
		s.onFrame(f)
	}
	return s.frameErr
}

func (s *recordSink) Audio(b AudioBlock) error {
	s.audio += len(b)
	return nil
}

func TestRunner_MaxFrames(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	r := NewRunner(m, RunnerOptions{MaxFrames: 3})
	sink := &recordSink{}
	if err := r.Run(context.Background(), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.Frame() != 3 {
		t.Fatalf("stopped at frame %d want 3", m.Frame())
	}
	if f := r.Latest(); f == nil || f.Number != 3 || len(f.Pixels) != 160*144 {
		t.Fatalf("latest frame wrong: %+v", f)
	}
	if len(sink.frames) == 0 {
		t.Fatalf("sink saw no frames")
	}
	for i := 1; i < len(sink.frames); i++ {
		if sink.frames[i] <= sink.frames[i-1] {
			t.Fatalf("frames out of order: %v", sink.frames)
		}
	}
}

func TestRunner_AudioIsNotDropped(t *testing.T) {
	m := newMachine(t, Config{AudioFrames: 256}, spin...)
	r := NewRunner(m, RunnerOptions{MaxFrames: 5, AudioDepth: 1})
	sink := &recordSink{}
	if err := r.Run(context.Background(), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.Bus().APU().Dropped() != 0 {
		t.Fatalf("APU dropped %d frames", m.Bus().APU().Dropped())
	}
	want := int(m.Ticks() * 44100 / apu.NativeRate)
	got := sink.audio / 2
	if got < want-2 || got > want+2 {
		t.Fatalf("audio frames got %d want about %d", got, want)
	}
}

func TestRunner_InvalidOpcodeStops(t *testing.T) {
	m := newMachine(t, Config{}, 0xFD)
	r := NewRunner(m, RunnerOptions{})
	err := r.Run(context.Background(), &recordSink{})
	var de *cpu.DecodeError
	if !errors.As(err, &de) || de.Opcode != 0xFD {
		t.Fatalf("got %v want DecodeError", err)
	}
}

func TestRunner_Cancel(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	r := NewRunner(m, RunnerOptions{DiscardAudio: true})
	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordSink{onFrame: func(*Frame) { cancel() }}
	if err := r.Run(ctx, sink); err != nil {
		t.Fatalf("cancelled run returned %v", err)
	}
	if len(sink.frames) == 0 {
		t.Fatalf("no frame before cancel")
	}
}

func TestRunner_SinkErrorStopsEmulation(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	r := NewRunner(m, RunnerOptions{})
	boom := errors.New("boom")
	if err := r.Run(context.Background(), &recordSink{frameErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("got %v want boom", err)
	}
}

func TestRunner_PublishKeepsNewest(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	r := NewRunner(m, RunnerOptions{})
	fb := make([]uint32, 4)
	for n := uint64(1); n <= 3; n++ {
		fb[0] = uint32(n)
		r.publish(fb, n)
	}
	f := <-r.Frames()
	if f.Number != 3 || f.Pixels[0] != 3 {
		t.Fatalf("got frame %d want newest (3)", f.Number)
	}
	fb[0] = 99
	if r.Latest().Pixels[0] != 3 {
		t.Fatalf("published frame aliases the PPU buffer")
	}
}
