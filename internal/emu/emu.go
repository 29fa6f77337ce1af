// Package emu wires the cartridge, bus, CPU and peripherals into a Machine
// and drives them from a single global tick counter.
package emu

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/timer"
)

// TicksPerFrame is the number of global ticks in one LCD frame.
const TicksPerFrame = ppu.TicksPerLine * ppu.LinesPerFrame

// Event is the set of conditions that ended a RunUntil call.
type Event uint8

const (
	EventNewFrame Event = 1 << iota
	EventAudioBufferFull
	EventUntilTicks
	EventBreakpoint
	EventInvalidOpcode
)

var eventNames = []string{"NewFrame", "AudioBufferFull", "UntilTicks", "Breakpoint", "InvalidOpcode"}

func (e Event) String() string {
	var parts []string
	for i, name := range eventNames {
		if e&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

type Machine struct {
	cfg Config
	img *cart.Image
	bus *bus.Bus
	cpu *cpu.CPU

	ticks  uint64
	events Event
	err    error

	breakpoints map[uint16]struct{}
	resumeAt    int32 // PC to step over after a breakpoint, or -1
	paused      atomic.Bool
	input       atomic.Int32 // pending joypad mask, or -1

	onFrame func(fb []uint32, frame uint64)
}

// New builds a machine around a loaded cartridge image.
func New(img *cart.Image, cfg Config) *Machine {
	cfg.Defaults()
	irq := &interrupt.Controller{}
	m := &Machine{
		cfg:         cfg,
		img:         img,
		breakpoints: make(map[uint16]struct{}),
		resumeAt:    -1,
	}
	m.input.Store(-1)
	m.bus = bus.New(img, bus.Devices{
		IRQ:   irq,
		Timer: timer.New(irq, timer.Options{WrapOverflow: cfg.WrapTimerOverflow}),
		APU:   apu.New(cfg.SampleRate, cfg.AudioFrames),
	})
	m.bus.PPU().SetFrameHandler(m.frameDone)
	m.cpu = cpu.New(m.bus, irq, m)
	return m
}

// Load reads a ROM file and builds a machine for it.
func Load(path string, cfg Config) (*Machine, error) {
	img, err := cart.Load(path)
	if err != nil {
		return nil, err
	}
	return New(img, cfg), nil
}

func (m *Machine) Config() Config        { return m.cfg }
func (m *Machine) Bus() *bus.Bus         { return m.bus }
func (m *Machine) CPU() *cpu.CPU         { return m.cpu }
func (m *Machine) Image() *cart.Image    { return m.img }
func (m *Machine) Ticks() uint64         { return m.ticks }
func (m *Machine) Frame() uint64         { return m.bus.PPU().Frame() }
func (m *Machine) Framebuffer() []uint32 { return m.bus.PPU().Framebuffer() }

// Err returns the decode error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// SetFrameHandler registers fn to receive each completed frame at VBlank
// entry. fb is reused by the PPU and must be copied to be retained.
func (m *Machine) SetFrameHandler(fn func(fb []uint32, frame uint64)) { m.onFrame = fn }

// SetSerialWriter connects an io.Writer to receive bytes written to the serial port (FF01/FF02).
// Useful for running test ROMs that report via serial.
func (m *Machine) SetSerialWriter(w interface{ Write([]byte) (int, error) }) {
	m.bus.SetSerialWriter(w)
}

func (m *Machine) SetPaused(p bool) { m.paused.Store(p) }
func (m *Machine) Paused() bool     { return m.paused.Load() }

// Breakpoints must be set while the machine is not running.
func (m *Machine) SetBreakpoint(pc uint16)   { m.breakpoints[pc] = struct{}{} }
func (m *Machine) ClearBreakpoint(pc uint16) { delete(m.breakpoints, pc) }

// Cycles advances every peripheral by n machine cycles. Each cycle is four
// ticks of the timer and PPU followed by one DMA step; the APU catches up
// to the global tick count at the end.
func (m *Machine) Cycles(n int) {
	t := m.bus.Timer()
	p := m.bus.PPU()
	d := m.bus.DMA()
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			m.ticks++
			t.Tick()
			p.Tick()
		}
		d.Tick(m.bus, p)
	}
	a := m.bus.APU()
	a.Update(m.ticks)
	if a.Full() {
		m.events |= EventAudioBufferFull
	}
}

// Step executes a single CPU instruction.
func (m *Machine) Step() error {
	if m.cfg.Trace {
		pc := m.cpu.PC()
		text, _ := m.cpu.Disassemble(pc)
		log.Printf("%04X  %-18s %v", pc, text, m.cpu.Registers())
	}
	return m.cpu.Step()
}

// RunUntil steps until the tick counter reaches target, the audio buffer
// fills, a breakpoint is hit or an invalid opcode is decoded. Nothing runs
// while the audio buffer is still full from an earlier call. The pause
// flag is checked before every step. The returned mask also carries
// EventNewFrame when a frame completed along the way.
func (m *Machine) RunUntil(target uint64) Event {
	m.events = 0
	if m.err != nil {
		return EventInvalidOpcode
	}
	if m.bus.APU().Full() {
		return EventAudioBufferFull
	}
	for {
		if m.ticks >= target {
			m.events |= EventUntilTicks
		}
		if m.events&^EventNewFrame != 0 || m.paused.Load() {
			return m.events
		}
		if v := m.input.Swap(-1); v >= 0 {
			m.bus.SetJoypadState(byte(v))
		}
		pc := m.cpu.PC()
		if _, ok := m.breakpoints[pc]; ok && int32(pc) != m.resumeAt {
			m.resumeAt = int32(pc)
			return m.events | EventBreakpoint
		}
		m.resumeAt = -1
		if err := m.Step(); err != nil {
			m.err = err
			return m.events | EventInvalidOpcode
		}
	}
}

// RunFrame runs one frame's worth of ticks, discarding audio, and stops
// early on a breakpoint, an invalid opcode or pause.
func (m *Machine) RunFrame() Event {
	target := m.ticks + TicksPerFrame
	var ev Event
	for {
		e := m.RunUntil(target)
		ev |= e
		if e&EventAudioBufferFull != 0 {
			m.DrainAudio(nil)
		}
		if e&^(EventAudioBufferFull|EventNewFrame) != 0 || m.Paused() {
			return ev
		}
	}
}

// DrainAudio moves buffered samples into dst and returns the count.
// A nil dst discards them.
func (m *Machine) DrainAudio(dst []byte) int {
	a := m.bus.APU()
	if dst == nil {
		return a.Drain(make([]byte, len(a.Samples())))
	}
	return a.Drain(dst)
}

// BufferedAudio is the number of interleaved samples waiting to be drained.
func (m *Machine) BufferedAudio() int { return len(m.bus.APU().Samples()) }

func (m *Machine) frameDone(fb []uint32) {
	m.events |= EventNewFrame
	frame := m.bus.PPU().Frame()
	if m.onFrame != nil {
		m.onFrame(fb, frame)
	}
	if frame%uint64(m.cfg.SaveInterval) == 0 {
		if err := m.Close(); err != nil {
			log.Printf("emu: %v", err)
		}
	}
}

// Close flushes battery RAM. It is safe to call more than once.
func (m *Machine) Close() error {
	if m.img == nil || !m.img.HasBattery() {
		return nil
	}
	return m.img.SaveIfDirty()
}

// SetButtons queues a joypad state. It may be called from any goroutine;
// the state is applied before the next instruction.
func (m *Machine) SetButtons(b Buttons) {
	// Map buttons to joypad mask
	var mask byte
	if b.Right {
		mask |= bus.JoypRight
	}
	if b.Left {
		mask |= bus.JoypLeft
	}
	if b.Up {
		mask |= bus.JoypUp
	}
	if b.Down {
		mask |= bus.JoypDown
	}
	if b.A {
		mask |= bus.JoypA
	}
	if b.B {
		mask |= bus.JoypB
	}
	if b.Select {
		mask |= bus.JoypSelect
	}
	if b.Start {
		mask |= bus.JoypStart
	}
	m.input.Store(int32(mask))
}
