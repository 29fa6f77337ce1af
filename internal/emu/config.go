package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	SampleRate   int  // audio output rate in Hz
	AudioFrames  int  // stereo frames buffered before RunUntil yields
	SaveInterval int  // frames between battery flushes
	Trace        bool // log CPU instructions
	// WrapTimerOverflow reloads TIMA when it wraps past 0xFF. The default
	// reloads as soon as it reaches 0xFF.
	WrapTimerOverflow bool
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.AudioFrames <= 0 {
		c.AudioFrames = 1024
	}
	if c.SaveInterval <= 0 {
		c.SaveInterval = 60
	}
}
