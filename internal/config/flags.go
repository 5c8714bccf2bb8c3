package config

import "flag"

// Flags holds the command-line overrides registered on a subcommand's FlagSet.
// Zero values mean "not set".
type Flags struct {
	config    *string
	debug     *bool
	verbose   *bool
	manifest  *string
	maxFrames *int
	out       *string
	format    *string
	scale     *int
	once      *bool
}

// RegisterFlags adds the shared override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		verbose:   fs.Bool("verbose", false, "Trace every processed tag (implies -debug)"),
		manifest:  fs.String("manifest", "", "Path to asset manifest"),
		maxFrames: fs.Int("max-frames", 0, "Abort renders longer than this many frames"),
		out:       fs.String("out", "", "Output directory"),
		format:    fs.String("format", "", "Output format (png, gif)"),
		scale:     fs.Int("scale", 0, "Integer upscale factor"),
		once:      fs.Bool("once", false, "Play the animation once instead of looping"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.verbose {
		cfg.Logging.Level = "debug"
		cfg.Render.Verbose = true
	}
	if *f.manifest != "" {
		cfg.Assets.Manifest = *f.manifest
	}
	if *f.maxFrames > 0 {
		cfg.Render.MaxFrames = *f.maxFrames
	}
	if *f.out != "" {
		cfg.Output.Dir = *f.out
	}
	if *f.format != "" {
		cfg.Output.Format = *f.format
	}
	if *f.scale > 0 {
		cfg.Output.Scale = *f.scale
		cfg.Viewer.Scale = *f.scale
	}
	if *f.once {
		cfg.Viewer.Loop = false
	}
}
