// Package sink provides presenters for emulator output: speakers, WAV and
// PNG recorders and a terminal progress line.
package sink

import (
	"errors"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

// Tee forwards every frame and audio block to each sink in order.
type Tee []emu.Sink

func (t Tee) Frame(f *emu.Frame) error {
	for _, s := range t {
		if err := s.Frame(f); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Audio(b emu.AudioBlock) error {
	for _, s := range t {
		if err := s.Audio(b); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that has a Close method and joins the errors.
func (t Tee) Close() error {
	var errs []error
	for _, s := range t {
		if c, ok := s.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Levels from the APU are unipolar: 0 is silence.
func level16(v byte) int      { return int(v) << 7 }
func levelF32(v byte) float32 { return float32(v) / 256 }
