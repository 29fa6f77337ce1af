package sink

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
)

// FrameImage converts 0xAARRGGBB pixels to an RGBA image.
func FrameImage(pixels []uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for i, c := range pixels {
		o := i * 4
		if o+3 >= len(img.Pix) {
			break
		}
		img.Pix[o+0] = byte(c >> 16)
		img.Pix[o+1] = byte(c >> 8)
		img.Pix[o+2] = byte(c)
		img.Pix[o+3] = byte(c >> 24)
	}
	return img
}

// WritePNG encodes a frame upscaled by an integer factor with nearest
// neighbour sampling.
func WritePNG(w io.Writer, pixels []uint32, scale int) error {
	src := FrameImage(pixels)
	if scale <= 1 {
		return png.Encode(w, src)
	}
	dst := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return png.Encode(w, dst)
}

// Snapshot keeps the latest frame and writes it to Path on Close.
type Snapshot struct {
	Path  string
	Scale int

	last *emu.Frame
}

func (s *Snapshot) Frame(f *emu.Frame) error {
	s.last = f
	return nil
}

func (s *Snapshot) Audio(emu.AudioBlock) error { return nil }

// Last returns the most recent frame seen, or nil.
func (s *Snapshot) Last() *emu.Frame { return s.last }

func (s *Snapshot) Close() error {
	if s.last == nil {
		return nil
	}
	return s.Save(s.last)
}

// Save writes f to Path regardless of what was last seen.
func (s *Snapshot) Save(f *emu.Frame) error {
	out, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("sink: png: %w", err)
	}
	if err := WritePNG(out, f.Pixels, s.Scale); err != nil {
		out.Close()
		return fmt.Errorf("sink: png: %w", err)
	}
	return out.Close()
}
