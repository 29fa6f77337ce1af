package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

const wavBitDepth = 16

// WAVRecorder writes the audio stream as 16-bit stereo PCM.
type WAVRecorder struct {
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	closer io.Closer
	frames int
}

// NewWAVEncoder records into ws. The header is finalized by Close.
func NewWAVEncoder(ws io.WriteSeeker, sampleRate int) *WAVRecorder {
	return &WAVRecorder{
		enc: wav.NewEncoder(ws, sampleRate, wavBitDepth, 2, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// NewWAVRecorder creates path and records into it.
func NewWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: wav: %w", err)
	}
	w := NewWAVEncoder(f, sampleRate)
	w.closer = f
	return w, nil
}

func (w *WAVRecorder) Frame(*emu.Frame) error { return nil }

func (w *WAVRecorder) Audio(b emu.AudioBlock) error {
	data := w.buf.Data[:0]
	for _, v := range b {
		data = append(data, level16(v))
	}
	w.buf.Data = data
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("sink: wav: %w", err)
	}
	w.frames += len(b) / 2
	return nil
}

// Frames is the number of stereo frames written so far.
func (w *WAVRecorder) Frames() int { return w.frames }

func (w *WAVRecorder) Close() error {
	err := w.enc.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("sink: wav: %w", err)
	}
	return nil
}
