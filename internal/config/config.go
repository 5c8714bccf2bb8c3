// Package config handles afptool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Output formats accepted by OutputConfig.Format.
const (
	FormatPNG = "png"
	FormatGIF = "gif"
)

// Config holds all afptool settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds renderer limits.
type RenderConfig struct {
	MaxFrames  int  `yaml:"max_frames"`  // 0 means unlimited
	MaxNesting int  `yaml:"max_nesting"` // Deepest sprite-in-sprite chain
	Verbose    bool `yaml:"verbose"`     // Trace every tag at debug level
}

// OutputConfig holds frame export settings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or gif
	Scale  int    `yaml:"scale"`  // Integer upscale factor
}

// ViewerConfig holds playback window settings.
type ViewerConfig struct {
	Loop  bool `yaml:"loop"`
	VSync bool `yaml:"vsync"`
	Scale int  `yaml:"scale"`
}

// AssetsConfig holds asset manifest settings.
type AssetsConfig struct {
	Manifest string `yaml:"manifest"` // Path to manifest.yaml or its directory
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			MaxFrames:  0,
			MaxNesting: 64,
			Verbose:    false,
		},
		Output: OutputConfig{
			Dir:    "out",
			Format: FormatPNG,
			Scale:  1,
		},
		Viewer: ViewerConfig{
			Loop:  true,
			VSync: true,
			Scale: 4,
		},
		Assets: AssetsConfig{
			Manifest: "manifest.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Render.MaxFrames < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: render.max_frames %d is negative", ErrInvalidConfig, c.Render.MaxFrames))
	}
	if c.Render.MaxNesting < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: render.max_nesting must be at least 1, got %d", ErrInvalidConfig, c.Render.MaxNesting))
	}
	switch c.Output.Format {
	case FormatPNG, FormatGIF:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: output.format %q is not png or gif", ErrInvalidConfig, c.Output.Format))
	}
	if c.Output.Scale < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: output.scale must be at least 1, got %d", ErrInvalidConfig, c.Output.Scale))
	}
	if c.Viewer.Scale < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: viewer.scale must be at least 1, got %d", ErrInvalidConfig, c.Viewer.Scale))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level))
	}
	return err
}
