package emu

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

// testROM builds a 32 KiB image whose entry point jumps to prog at 0x0150.
func testROM(cartType, ramCode byte, prog ...byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], []byte{0x00, 0xC3, 0x50, 0x01})
	copy(rom[0x0134:], "EMUTEST")
	rom[0x0147] = cartType
	rom[0x0149] = ramCode
	rom[0x014D] = cart.HeaderChecksum(rom)
	copy(rom[0x0150:], prog)
	return rom
}

func newMachine(t *testing.T, cfg Config, prog ...byte) *Machine {
	t.Helper()
	img, err := cart.New(testROM(0x00, 0x00, prog...), "")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	return New(img, cfg)
}

var spin = []byte{0x18, 0xFE} // JR -2

func TestMachine_RunUntilFrame(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	ev := m.RunUntil(TicksPerFrame)
	if ev != EventNewFrame|EventUntilTicks {
		t.Fatalf("events got %v want NewFrame|UntilTicks", ev)
	}
	if m.Frame() != 1 {
		t.Fatalf("frame got %d want 1", m.Frame())
	}
	if over := m.Ticks() - TicksPerFrame; over >= 16 {
		t.Fatalf("overshoot %d ticks, more than one instruction", over)
	}
	if len(m.Framebuffer()) != 160*144 {
		t.Fatalf("framebuffer len %d", len(m.Framebuffer()))
	}
}

func TestMachine_CyclesAdvanceTicks(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	m.Cycles(3)
	if m.Ticks() != 12 {
		t.Fatalf("ticks got %d want 12", m.Ticks())
	}
	if m.Bus().APU().Ticks() != 12 {
		t.Fatalf("APU not resynced: %d", m.Bus().APU().Ticks())
	}
	if m.Bus().PPU().LineTicks() != 12 {
		t.Fatalf("PPU line ticks got %d want 12", m.Bus().PPU().LineTicks())
	}
}

func TestMachine_DMAThroughClock(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	for i := 0; i < 0xA0; i++ {
		m.Bus().Write(0xC000+uint16(i), byte(i))
	}
	m.Bus().Write(0xFF46, 0xC0)
	m.Cycles(162)
	if m.Bus().DMA().Transferring() {
		t.Fatalf("DMA still active after 162 cycles")
	}
	for i := 0; i < 0xA0; i++ {
		if got := m.Bus().Read(0xFE00 + uint16(i)); got != byte(i) {
			t.Fatalf("OAM[%02X] got %02X want %02X", i, got, byte(i))
		}
	}
}

func TestMachine_Breakpoint(t *testing.T) {
	// NOP ; NOP ; NOP ; JR back to 0150
	m := newMachine(t, Config{}, 0x00, 0x00, 0x00, 0x18, 0xFB)
	m.SetBreakpoint(0x0152)
	ev := m.RunUntil(1 << 40)
	if ev&EventBreakpoint == 0 || m.CPU().PC() != 0x0152 {
		t.Fatalf("got %v at %04X want breakpoint at 0152", ev, m.CPU().PC())
	}
	start := m.Ticks()
	ev = m.RunUntil(1 << 40)
	if ev&EventBreakpoint == 0 || m.CPU().PC() != 0x0152 {
		t.Fatalf("second run got %v at %04X", ev, m.CPU().PC())
	}
	// NOP + JR + NOP + NOP around the loop.
	if d := m.Ticks() - start; d != 24 {
		t.Fatalf("loop took %d ticks want 24", d)
	}
	m.ClearBreakpoint(0x0152)
	if ev = m.RunUntil(m.Ticks() + 100); ev&EventBreakpoint != 0 {
		t.Fatalf("breakpoint fired after clear")
	}
}

func TestMachine_InvalidOpcode(t *testing.T) {
	m := newMachine(t, Config{}, 0xD3)
	ev := m.RunUntil(TicksPerFrame)
	if ev&EventInvalidOpcode == 0 {
		t.Fatalf("got %v want InvalidOpcode", ev)
	}
	var de *cpu.DecodeError
	if !errors.As(m.Err(), &de) || de.Opcode != 0xD3 || de.PC != 0x0150 {
		t.Fatalf("Err got %v", m.Err())
	}
	ticks := m.Ticks()
	if ev := m.RunUntil(TicksPerFrame); ev != EventInvalidOpcode || m.Ticks() != ticks {
		t.Fatalf("machine kept running after invalid opcode: %v", ev)
	}
}

func TestMachine_AudioBufferFull(t *testing.T) {
	m := newMachine(t, Config{AudioFrames: 64}, spin...)
	ev := m.RunUntil(TicksPerFrame)
	if ev&EventAudioBufferFull == 0 || ev&EventUntilTicks != 0 {
		t.Fatalf("got %v want AudioBufferFull before the target", ev)
	}
	n := m.BufferedAudio()
	if n < 128 {
		t.Fatalf("buffered %d samples want at least 128", n)
	}
	dst := make([]byte, n)
	if got := m.DrainAudio(dst); got != n || m.BufferedAudio() != 0 {
		t.Fatalf("drain got %d, left %d", got, m.BufferedAudio())
	}
	if m.Bus().APU().Dropped() != 0 {
		t.Fatalf("samples dropped")
	}
}

func TestMachine_FullAudioSuspendsStepping(t *testing.T) {
	m := newMachine(t, Config{AudioFrames: 64}, spin...)
	if ev := m.RunUntil(TicksPerFrame); ev&EventAudioBufferFull == 0 {
		t.Fatalf("got %v want AudioBufferFull", ev)
	}
	ticks, buffered := m.Ticks(), m.BufferedAudio()
	for i := 0; i < 1000; i++ {
		if ev := m.RunUntil(TicksPerFrame); ev != EventAudioBufferFull {
			t.Fatalf("call %d got %v want AudioBufferFull only", i, ev)
		}
	}
	if m.Ticks() != ticks || m.BufferedAudio() != buffered {
		t.Fatalf("machine ran while audio was full: ticks %d->%d buffered %d->%d",
			ticks, m.Ticks(), buffered, m.BufferedAudio())
	}
	if d := m.Bus().APU().Dropped(); d != 0 {
		t.Fatalf("dropped %d samples", d)
	}
	m.DrainAudio(nil)
	if ev := m.RunUntil(m.Ticks() + 100); ev&EventUntilTicks == 0 {
		t.Fatalf("after drain got %v want UntilTicks", ev)
	}
}

func TestMachine_Paused(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	m.SetPaused(true)
	if ev := m.RunUntil(TicksPerFrame); ev != 0 || m.Ticks() != 0 {
		t.Fatalf("paused machine ran: %v ticks=%d", ev, m.Ticks())
	}
	m.SetPaused(false)
	if ev := m.RunUntil(100); ev&EventUntilTicks == 0 {
		t.Fatalf("resume got %v", ev)
	}
}

func TestMachine_Serial(t *testing.T) {
	// LD A,'A' ; LDH (01),A ; LD A,81 ; LDH (02),A ; JR -2
	m := newMachine(t, Config{}, 0x3E, 0x41, 0xE0, 0x01, 0x3E, 0x81, 0xE0, 0x02, 0x18, 0xFE)
	var out bytes.Buffer
	m.SetSerialWriter(&out)
	m.RunUntil(1000)
	if out.String() != "A" {
		t.Fatalf("serial got %q want A", out.String())
	}
	if m.Bus().IRQ().IF&byte(interrupt.Serial) == 0 {
		t.Fatalf("serial interrupt not requested")
	}
}

func TestMachine_ButtonsAppliedBeforeNextStep(t *testing.T) {
	m := newMachine(t, Config{}, spin...)
	m.Bus().Write(0xFF00, 0x10) // select buttons
	m.SetButtons(Buttons{Start: true})
	if m.Bus().IRQ().IF&byte(interrupt.Joypad) != 0 {
		t.Fatalf("joypad applied outside the run loop")
	}
	m.RunUntil(m.Ticks() + 1)
	if m.Bus().IRQ().IF&byte(interrupt.Joypad) == 0 {
		t.Fatalf("joypad interrupt not raised")
	}
	if got := m.Bus().Read(0xFF00) & 0x0F; got != 0x07 {
		t.Fatalf("P1 low nibble got %X want 7 (Start pressed)", got)
	}
}

func TestMachine_BatterySavedEveryInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gb")
	// LD A,0A ; LD (0000),A ; LD A,42 ; LD (A000),A ; JR -2
	rom := testROM(0x03, 0x02, 0x3E, 0x0A, 0xEA, 0x00, 0x00, 0x3E, 0x42, 0xEA, 0x00, 0xA0, 0x18, 0xFE)
	img, err := cart.New(rom, path)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	m := New(img, Config{SaveInterval: 1})
	m.RunUntil(TicksPerFrame)

	data, err := os.ReadFile(path + cart.SaveSuffix)
	if err != nil {
		t.Fatalf("battery file: %v", err)
	}
	if len(data) != cart.RAMBankSize || data[0] != 0x42 {
		t.Fatalf("battery got len=%d first=%02X", len(data), data[0])
	}
}

func TestEvent_String(t *testing.T) {
	if s := (EventNewFrame | EventBreakpoint).String(); s != "NewFrame|Breakpoint" {
		t.Fatalf("got %q", s)
	}
	if s := Event(0).String(); s != "none" {
		t.Fatalf("got %q", s)
	}
}
