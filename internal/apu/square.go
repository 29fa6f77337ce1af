package apu

var dutyTable = [4][8]byte{
	{0, 0, 0, 0, 0, 0, 0, 1}, // 12.5%
	{1, 0, 0, 0, 0, 0, 0, 1}, // 25%
	{1, 0, 0, 0, 0, 1, 1, 1}, // 50%
	{0, 1, 1, 1, 1, 1, 1, 0}, // 75%
}

type square struct {
	on    bool
	duty  byte
	step  int
	freq  uint16
	timer int

	length lengthCounter
	env    envelope
}

func newSquare() square { return square{length: lengthCounter{max: 64}} }

func (s *square) period() int { return (2048 - int(s.freq&0x7FF)) * 4 }

func (s *square) level() int {
	if !s.on {
		return 0
	}
	return int(dutyTable[s.duty][s.step]) * int(s.env.volume)
}

func (s *square) trigger() {
	s.on = s.env.dac()
	s.length.trigger()
	s.timer = s.period()
	s.env.trigger()
}

func (s *square) run(ticks int) int {
	if !s.on {
		return 0
	}
	return countdown(&s.timer, s.period(), ticks, s.level, func() { s.step = (s.step + 1) & 7 })
}
