package dma

import "testing"

type memory map[uint16]byte

func (m memory) Read(addr uint16) byte { return m[addr] }

type oam [0xA0]byte

func (o *oam) WriteOAM(addr uint16, v byte) { o[addr] = v }

func TestTransferCopies160Bytes(t *testing.T) {
	src := memory{}
	for i := 0; i < 0xA0; i++ {
		src[0xC000+uint16(i)] = byte(i ^ 0x5A)
	}
	var dst oam
	var d DMA
	d.Start(0xC0)
	if !d.Transferring() {
		t.Fatalf("Transferring = false after Start")
	}
	for i := 0; i < startDelay+length-1; i++ {
		d.Tick(src, &dst)
	}
	if !d.Transferring() {
		t.Fatalf("finished early")
	}
	d.Tick(src, &dst)
	if d.Transferring() {
		t.Fatalf("still transferring after %d ticks", startDelay+length)
	}
	for i := 0; i < 0xA0; i++ {
		if dst[i] != byte(i^0x5A) {
			t.Fatalf("OAM[%02X] got %02X want %02X", i, dst[i], byte(i^0x5A))
		}
	}
	if d.Page() != 0xC0 {
		t.Fatalf("Page got %02X want C0", d.Page())
	}
}
