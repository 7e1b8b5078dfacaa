package config

import "fmt"

// Display defines one fixed display rectangle windows are placed into.
type Display struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Grid derives the four display rectangles by splitting a bounding region
// into equal columns. Used when explicit displays are not configured.
type Grid struct {
	X       int `yaml:"x"`
	Y       int `yaml:"y"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Columns int `yaml:"columns"`
}

// Detection configures the window detection loop.
type Detection struct {
	// TimeoutSeconds bounds how long one detection run waits for all four
	// windows to appear.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// PollIntervalMS is the delay between window enumeration passes.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// SettleDelayMS is waited after all windows are found, before the
	// first placement pass; the engine registers titles before the window
	// surfaces finish initializing.
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

// Placement configures geometry application.
type Placement struct {
	// Retries bounds placement attempts per window.
	Retries int `yaml:"retries"`
	// Tolerance is the allowed origin deviation in pixels per axis.
	Tolerance int `yaml:"tolerance"`
	// BackoffMS is the delay between placement retries.
	BackoffMS int `yaml:"backoff_ms"`
}

// Config is the static runtime configuration. Nothing in here is derived at
// runtime; display geometry in particular is configuration, not discovery.
type Config struct {
	// Displays lists the four slot rectangles left to right. When empty,
	// slots are derived from Grid instead.
	Displays []Display `yaml:"displays,omitempty"`
	Grid     *Grid     `yaml:"grid,omitempty"`

	// DefaultOrder is the initial role -> slot permutation
	// (1=Server, 2=Client 1, 3=Client 2, 4=Client 3).
	DefaultOrder []int `yaml:"default_order,flow"`

	// Borderless strips window chrome (default true).
	Borderless *bool `yaml:"borderless,omitempty"`
	// HideTitlebar clips residual title-bar pixels (default true).
	HideTitlebar   *bool `yaml:"hide_titlebar,omitempty"`
	TitlebarHeight int   `yaml:"titlebar_height"`

	// ControlPort is the HTTP control server port.
	ControlPort int `yaml:"control_port"`

	Detection Detection `yaml:"detection"`
	Placement Placement `yaml:"placement"`

	// Display and XAuthority override the X server connection environment.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
}

const slotCount = 4

// DefaultConfig returns the configuration for four 7" 800x480 displays in
// portrait mode, arranged left to right.
func DefaultConfig() *Config {
	return &Config{
		Displays: []Display{
			{X: 0, Y: 0, Width: 480, Height: 800},
			{X: 480, Y: 0, Width: 480, Height: 800},
			{X: 960, Y: 0, Width: 480, Height: 800},
			{X: 1440, Y: 0, Width: 480, Height: 800},
		},
		DefaultOrder:   []int{4, 2, 3, 1},
		TitlebarHeight: 32,
		ControlPort:    5000,
		Detection: Detection{
			TimeoutSeconds: 60,
			PollIntervalMS: 500,
			SettleDelayMS:  2000,
		},
		Placement: Placement{
			Retries:   3,
			Tolerance: 10,
			BackoffMS: 200,
		},
	}
}

// GetBorderless returns the effective value, defaulting to true.
func (c *Config) GetBorderless() bool {
	if c == nil || c.Borderless == nil {
		return true
	}
	return *c.Borderless
}

// GetHideTitlebar returns the effective value, defaulting to true.
func (c *Config) GetHideTitlebar() bool {
	if c == nil || c.HideTitlebar == nil {
		return true
	}
	return *c.HideTitlebar
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if len(c.Displays) == 0 {
		if c.Grid == nil {
			return fmt.Errorf("either displays or grid must be configured")
		}
		if c.Grid.Columns != slotCount {
			return fmt.Errorf("grid.columns must be %d, got %d", slotCount, c.Grid.Columns)
		}
		if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
			return fmt.Errorf("grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
		}
	} else if len(c.Displays) != slotCount {
		return fmt.Errorf("expected %d displays, got %d", slotCount, len(c.Displays))
	}
	for i, d := range c.Displays {
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("display %d size must be positive, got %dx%d", i, d.Width, d.Height)
		}
	}

	if len(c.DefaultOrder) != slotCount {
		return fmt.Errorf("default_order must contain exactly %d values", slotCount)
	}
	seen := make(map[int]bool, slotCount)
	for _, v := range c.DefaultOrder {
		if v < 1 || v > slotCount {
			return fmt.Errorf("default_order values must be between 1 and %d, got %d", slotCount, v)
		}
		if seen[v] {
			return fmt.Errorf("default_order values must be unique, %d repeats", v)
		}
		seen[v] = true
	}

	if c.TitlebarHeight < 0 {
		return fmt.Errorf("titlebar_height must not be negative, got %d", c.TitlebarHeight)
	}
	if c.ControlPort < 1 || c.ControlPort > 65535 {
		return fmt.Errorf("control_port must be between 1 and 65535, got %d", c.ControlPort)
	}
	if c.Detection.TimeoutSeconds <= 0 {
		return fmt.Errorf("detection.timeout_seconds must be positive, got %d", c.Detection.TimeoutSeconds)
	}
	if c.Detection.PollIntervalMS <= 0 {
		return fmt.Errorf("detection.poll_interval_ms must be positive, got %d", c.Detection.PollIntervalMS)
	}
	if c.Detection.SettleDelayMS < 0 {
		return fmt.Errorf("detection.settle_delay_ms must not be negative, got %d", c.Detection.SettleDelayMS)
	}
	if c.Placement.Retries <= 0 {
		return fmt.Errorf("placement.retries must be positive, got %d", c.Placement.Retries)
	}
	if c.Placement.Tolerance < 0 {
		return fmt.Errorf("placement.tolerance must not be negative, got %d", c.Placement.Tolerance)
	}
	return nil
}
