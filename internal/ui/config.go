package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title         string // window title
	Scale         int    // integer upscaling factor
	AudioStereo   bool   // if true, output true stereo; if false, fold to mono
	AudioBufferMs int    // player buffer in ms
	Muted         bool   // no audio player is created
	ShowStatus    bool   // draw the status line over the game view
	ScreenshotDir string // where F12 screenshots go
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.AudioBufferMs <= 0 {
		c.AudioBufferMs = 40
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}
