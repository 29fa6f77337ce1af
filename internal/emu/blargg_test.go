package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// blarggFrames bounds each ROM; the slowest cpu_instrs parts finish well
// inside 30 emulated seconds.
const blarggFrames = 1800

// TestBlargg runs every .gb under BLARGG_DIR and waits for the serial verdict.
func TestBlargg(t *testing.T) {
	dir := os.Getenv("BLARGG_DIR")
	if dir == "" {
		t.Skip("set BLARGG_DIR to a directory of test ROMs")
	}
	roms, err := filepath.Glob(filepath.Join(dir, "*.gb"))
	if err != nil || len(roms) == 0 {
		t.Skipf("no ROMs in %s", dir)
	}
	for _, rom := range roms {
		t.Run(strings.TrimSuffix(filepath.Base(rom), ".gb"), func(t *testing.T) {
			if out, ok := serialVerdict(t, rom); !ok {
				t.Fatalf("serial output:\n%s", out)
			}
		})
	}
}

// serialVerdict runs rom until its serial output says passed or failed.
func serialVerdict(t *testing.T, rom string) (string, bool) {
	t.Helper()
	m, err := Load(rom, Config{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var out bytes.Buffer
	m.SetSerialWriter(&out)
	for range blarggFrames {
		if m.RunFrame()&EventInvalidOpcode != 0 {
			t.Fatalf("%v", m.Err())
		}
		s := strings.ToLower(out.String())
		switch {
		case strings.Contains(s, "passed"):
			return out.String(), true
		case strings.Contains(s, "failed"):
			return out.String(), false
		}
	}
	return out.String(), false
}
