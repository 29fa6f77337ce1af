// Package dma copies 160 bytes into OAM, one byte per machine cycle.
package dma

const (
	// Register is the OAM DMA start address.
	Register = 0xFF46

	length     = 0xA0
	startDelay = 2
)

// Reader is the source side of a transfer, normally the memory bus.
type Reader interface {
	Read(addr uint16) byte
}

// OAMWriter receives transferred bytes at OAM offsets 0x00-0x9F.
type OAMWriter interface {
	WriteOAM(addr uint16, v byte)
}

type DMA struct {
	active bool
	page   byte
	index  byte
	delay  byte
}

// Start begins a transfer from page<<8.
func (d *DMA) Start(page byte) {
	d.active = true
	d.page = page
	d.index = 0
	d.delay = startDelay
}

// Tick moves one byte. It is called once per machine cycle.
func (d *DMA) Tick(src Reader, dst OAMWriter) {
	if !d.active {
		return
	}
	if d.delay > 0 {
		d.delay--
		return
	}
	dst.WriteOAM(uint16(d.index), src.Read(uint16(d.page)<<8|uint16(d.index)))
	d.index++
	d.active = d.index < length
}

// Transferring reports whether OAM is owned by the DMA unit.
func (d *DMA) Transferring() bool { return d.active }

// Page returns the last value written to 0xFF46.
func (d *DMA) Page() byte { return d.page }
