package ui

import (
	"encoding/binary"
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

func TestAPUStream_ConvertsAndFolds(t *testing.T) {
	ch := make(chan emu.AudioBlock, 1)
	ch <- emu.AudioBlock{0x10, 0x30}
	s := &apuStream{blocks: ch, mono: true}
	p := make([]byte, 4)
	n, err := s.Read(p)
	if err != nil || n != 4 {
		t.Fatalf("read got %d, %v", n, err)
	}
	want := uint16(0x20 << 7)
	if l, r := binary.LittleEndian.Uint16(p), binary.LittleEndian.Uint16(p[2:]); l != want || r != want {
		t.Fatalf("got %04X/%04X want %04X", l, r, want)
	}
}

func TestAPUStream_SilenceOnUnderrun(t *testing.T) {
	s := &apuStream{blocks: make(chan emu.AudioBlock)}
	p := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	n, err := s.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("read got %d, %v", n, err)
	}
	for i, b := range p {
		if b != 0 {
			t.Fatalf("p[%d] got %02X want 00", i, b)
		}
	}
	if s.underruns.Load() != 1 {
		t.Fatalf("underruns got %d want 1", s.underruns.Load())
	}
}

func TestAPUStream_ClosedQueue(t *testing.T) {
	ch := make(chan emu.AudioBlock)
	close(ch)
	s := &apuStream{blocks: ch}
	if n, _ := s.Read(make([]byte, 16)); n != 16 {
		t.Fatalf("closed stream read %d want 16 bytes of silence", n)
	}
	if !s.closed {
		t.Fatalf("stream did not notice the closed queue")
	}
}
