// Package bus decodes CPU addresses and routes them to the cartridge,
// memories and I/O devices.
package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/dma"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/timer"
)

// Devices are the components wired behind the bus. Nil fields are
// replaced with freshly constructed defaults.
type Devices struct {
	IRQ   *interrupt.Controller
	Timer *timer.Timer
	PPU   *ppu.PPU
	APU   *apu.APU
	DMA   *dma.DMA
}

type Bus struct {
	cart  cart.Cartridge
	irq   *interrupt.Controller
	timer *timer.Timer
	ppu   *ppu.PPU
	apu   *apu.APU
	dma   *dma.DMA

	wram [0x2000]byte // C000–DFFF
	hram [0x7F]byte   // FF80–FFFE

	// serial
	sb        byte
	sc        byte
	serialOut io.Writer

	joyp
}

func New(c cart.Cartridge, d Devices) *Bus {
	if d.IRQ == nil {
		d.IRQ = &interrupt.Controller{}
	}
	if d.Timer == nil {
		d.Timer = timer.New(d.IRQ, timer.Options{})
	}
	if d.PPU == nil {
		d.PPU = ppu.New(d.IRQ)
	}
	if d.APU == nil {
		d.APU = apu.New(44100, 2048)
	}
	if d.DMA == nil {
		d.DMA = &dma.DMA{}
	}
	return &Bus{
		cart:  c,
		irq:   d.IRQ,
		timer: d.Timer,
		ppu:   d.PPU,
		apu:   d.APU,
		dma:   d.DMA,
		joyp:  joyp{sel: 0x30},
	}
}

func (b *Bus) IRQ() *interrupt.Controller { return b.irq }
func (b *Bus) Timer() *timer.Timer        { return b.timer }
func (b *Bus) PPU() *ppu.PPU              { return b.ppu }
func (b *Bus) APU() *apu.APU              { return b.apu }
func (b *Bus) DMA() *dma.DMA              { return b.dma }

// SetSerialWriter sets a sink for bytes sent over the link port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serialOut = w }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.ppu.ReadVRAM(addr)
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00: // echo RAM, unusable
		return 0
	case addr < 0xFEA0:
		if b.dma.Transferring() {
			return 0xFF
		}
		return b.ppu.ReadOAM(addr)
	case addr < 0xFF00: // unusable
		return 0
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr == 0xFFFF:
		return b.irq.IE
	default:
		return b.hram[addr-0xFF80]
	}
}

func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, v)
	case addr < 0xA000:
		b.ppu.WriteVRAM(addr, v)
	case addr < 0xC000:
		b.cart.Write(addr, v)
	case addr < 0xE000:
		b.wram[addr-0xC000] = v
	case addr < 0xFE00:
	case addr < 0xFEA0:
		if !b.dma.Transferring() {
			b.ppu.WriteOAM(addr, v)
		}
	case addr < 0xFF00:
	case addr < 0xFF80:
		b.writeIO(addr, v)
	case addr == 0xFFFF:
		b.irq.IE = v
	default:
		b.hram[addr-0xFF80] = v
	}
}

// Read16 reads a little-endian word.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Write16 writes a little-endian word, high byte first.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr+1, byte(v>>8))
	b.Write(addr, byte(v))
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.joyp.read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return b.sc | 0x7E
	case addr >= timer.DIV && addr <= timer.TAC:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return b.irq.ReadIF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu.CPURead(addr)
	case addr == dma.Register:
		return b.dma.Page()
	case addr >= ppu.LCDC && addr <= ppu.WX:
		return b.ppu.CPURead(addr)
	}
	return 0
}

func (b *Bus) writeIO(addr uint16, v byte) {
	switch {
	case addr == 0xFF00:
		b.joyp.sel = v & 0x30
	case addr == 0xFF01:
		b.sb = v
	case addr == 0xFF02:
		b.sc = v
		if v&0x81 == 0x81 {
			b.serialTransfer()
		}
	case addr >= timer.DIV && addr <= timer.TAC:
		b.timer.Write(addr, v)
	case addr == 0xFF0F:
		b.irq.WriteIF(v)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apu.CPUWrite(addr, v)
	case addr == dma.Register:
		b.dma.Start(v)
	case addr >= ppu.LCDC && addr <= ppu.WX:
		b.ppu.CPUWrite(addr, v)
	}
}

// serialTransfer completes an internally clocked transfer at once with
// no link partner attached.
func (b *Bus) serialTransfer() {
	if b.serialOut != nil {
		_, _ = b.serialOut.Write([]byte{b.sb})
	}
	b.sb = 0xFF
	b.sc &^= 0x80
	b.irq.Request(interrupt.Serial)
}
