package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/sink"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ui"
)

type CLIFlags struct {
	ROMPath   string
	Scale     int
	Title     string
	Trace     bool
	TimerWrap bool
	Serial    bool
	Mute      bool

	// headless
	Headless bool
	Realtime bool
	Frames   uint64
	PNGOut   string
	WAVOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb); may also be given as the first argument")
	flag.IntVar(&f.Scale, "scale", 3, "window and PNG scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "CPU trace log")
	flag.BoolVar(&f.TimerWrap, "hwtimer", false, "reload TIMA on wrap past 0xFF instead of on reaching it")
	flag.BoolVar(&f.Serial, "serial", false, "copy serial port output to stdout")
	flag.BoolVar(&f.Mute, "mute", false, "disable audio playback")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.BoolVar(&f.Realtime, "realtime", false, "headless: pace to hardware speed and play audio")
	flag.Uint64Var(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.WAVOut, "wav", "", "record audio to a WAV file")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

// romArg picks the ROM from -rom or the single positional argument.
func romArg(flagROM string, args []string) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("expected one ROM argument, got %d", len(args))
	case len(args) == 1 && flagROM != "":
		return "", errors.New("ROM given both with -rom and as an argument")
	case len(args) == 1:
		return args[0], nil
	case flagROM != "":
		return flagROM, nil
	}
	return "", errors.New("no ROM given")
}

func runHeadless(m *emu.Machine, f CLIFlags) error {
	frames := max(f.Frames, 1)
	sampleRate := m.Config().SampleRate

	sinks := sink.Tee{sink.NewProgress(60, frames)}
	snap := &sink.Snapshot{Path: f.PNGOut, Scale: f.Scale}
	if f.PNGOut != "" {
		sinks = append(sinks, snap)
	}
	audioOut := false
	if f.WAVOut != "" {
		w, err := sink.NewWAVRecorder(f.WAVOut, sampleRate)
		if err != nil {
			return err
		}
		sinks = append(sinks, w)
		audioOut = true
	}
	if f.Realtime && !f.Mute {
		sp, err := sink.NewSpeaker(sampleRate, 4)
		if err != nil {
			return err
		}
		sinks = append(sinks, sp)
		audioOut = true
	}

	r := emu.NewRunner(m, emu.RunnerOptions{
		MaxFrames:    frames,
		Realtime:     f.Realtime,
		DiscardAudio: !audioOut,
	})
	start := time.Now()
	runErr := r.Run(context.Background(), sinks)
	dur := time.Since(start)
	if err := sinks.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	last := r.Latest()
	if last == nil {
		return errors.New("no frame completed")
	}
	crc := frameCRC(last.Pixels)
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		last.Number, dur.Truncate(time.Millisecond), float64(last.Number)/dur.Seconds(), crc)
	if f.PNGOut != "" {
		log.Printf("wrote %s", f.PNGOut)
	}

	if f.Expect != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(f.Expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func frameCRC(pixels []uint32) uint32 {
	b := make([]byte, 4*len(pixels))
	for i, p := range pixels {
		binary.LittleEndian.PutUint32(b[4*i:], p)
	}
	return crc32.ChecksumIEEE(b)
}

func runWindow(m *emu.Machine, f CLIFlags) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := emu.NewRunner(m, emu.RunnerOptions{Realtime: true, DiscardAudio: f.Mute})
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return r.Emulate(gctx)
	})

	app, err := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, AudioStereo: true, Muted: f.Mute}, m, r, done)
	if err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}
	uiErr := app.Run()
	cancel()
	return errors.Join(uiErr, g.Wait())
}

func main() {
	f := parseFlags()
	rom, err := romArg(f.ROMPath, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	f.ROMPath = rom

	m, err := emu.Load(f.ROMPath, emu.Config{Trace: f.Trace, WrapTimerOverflow: f.TimerWrap})
	if err != nil {
		log.Fatalf("load cart: %v", err)
	}
	if f.Serial {
		m.SetSerialWriter(os.Stdout)
	}

	if f.Headless {
		err = runHeadless(m, f)
	} else {
		err = runWindow(m, f)
	}
	if err != nil {
		log.Fatal(err)
	}
}
