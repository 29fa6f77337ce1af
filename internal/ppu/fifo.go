package ppu

import "errors"

// ErrFIFOUnderrun is returned when a pixel is popped from an empty FIFO.
var ErrFIFOUnderrun = errors.New("ppu: pixel FIFO underrun")

const fifoCap = 16

// pixelFIFO is a fixed-capacity ring of 32-bit colors.
type pixelFIFO struct {
	buf  [fifoCap]uint32
	head int
	size int
}

func (q *pixelFIFO) Clear()   { q.head, q.size = 0, 0 }
func (q *pixelFIFO) Len() int { return q.size }

func (q *pixelFIFO) Push(c uint32) bool {
	if q.size == fifoCap {
		return false
	}
	q.buf[(q.head+q.size)%fifoCap] = c
	q.size++
	return true
}

func (q *pixelFIFO) Pop() (uint32, error) {
	if q.size == 0 {
		return 0, ErrFIFOUnderrun
	}
	c := q.buf[q.head]
	q.head = (q.head + 1) % fifoCap
	q.size--
	return c, nil
}
