// Package ui presents a running emulator in an ebiten window.
package ui

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/sink"
)

// App implements ebiten.Game. Emulation runs on the runner's goroutine;
// the window only forwards input and shows the latest published frame.
type App struct {
	cfg  Config
	m    *emu.Machine
	r    *emu.Runner
	done <-chan struct{}

	tex   *ebiten.Image
	shown uint64

	audioPlayer *audio.Player
	audioSrc    *apuStream
}

// NewApp prepares the window. done is closed when emulation has stopped,
// which ends the game loop.
func NewApp(cfg Config, m *emu.Machine, r *emu.Runner, done <-chan struct{}) (*App, error) {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.ScreenWidth*cfg.Scale, ppu.ScreenHeight*cfg.Scale)
	a := &App{cfg: cfg, m: m, r: r, done: done}
	if !cfg.Muted {
		if err := a.startAudio(m.Config().SampleRate); err != nil {
			return nil, fmt.Errorf("ui: audio: %w", err)
		}
	}
	return a, nil
}

// Run blocks until the window is closed or emulation stops.
func (a *App) Run() error {
	err := ebiten.RunGame(a)
	if a.audioPlayer != nil {
		a.audioPlayer.Close()
		if n := a.audioSrc.underruns.Load(); n > 0 {
			log.Printf("ui: audio underruns: %d", n)
		}
	}
	return err
}

func (a *App) Update() error {
	select {
	case <-a.done:
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// Keyboard → Game Boy buttons
	a.m.SetButtons(emu.Buttons{
		Right:  ebiten.IsKeyPressed(ebiten.KeyRight),
		Left:   ebiten.IsKeyPressed(ebiten.KeyLeft),
		Up:     ebiten.IsKeyPressed(ebiten.KeyUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyDown),
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select: ebiten.IsKeyPressed(ebiten.KeyShiftRight),
	})

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.m.SetPaused(!a.m.Paused())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.cfg.ShowStatus = !a.cfg.ShowStatus
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if err := a.saveScreenshot(); err != nil {
			log.Printf("ui: screenshot: %v", err)
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight)
	}
	if f := a.r.Latest(); f != nil && f.Number != a.shown {
		a.tex.WritePixels(sink.FrameImage(f.Pixels).Pix)
		a.shown = f.Number
	}
	screen.DrawImage(a.tex, nil)

	if a.cfg.ShowStatus || a.m.Paused() {
		status := fmt.Sprintf("%d  %.0ffps", a.shown, ebiten.ActualFPS())
		if a.m.Paused() {
			status = "PAUSED " + status
		}
		text.Draw(screen, status, basicfont.Face7x13, 2, 12, color.White)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return ppu.ScreenWidth, ppu.ScreenHeight }

func (a *App) saveScreenshot() error {
	f := a.r.Latest()
	if f == nil {
		return nil
	}
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("screenshot_%s.png", ts))
	s := &sink.Snapshot{Path: name, Scale: a.cfg.Scale}
	if err := s.Save(f); err != nil {
		return err
	}
	log.Printf("ui: saved %s", name)
	return nil
}
