// afptool lists, inspects, exports and plays animations from AFP containers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/afpkit/internal/assets"
	"github.com/Faultbox/afpkit/internal/config"
	"github.com/Faultbox/afpkit/internal/logger"
	"github.com/Faultbox/afpkit/internal/render"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "list", "ls":
		err = cmdList(args)
	case "info":
		err = cmdInfo(args)
	case "render", "r":
		err = cmdRender(args)
	case "view", "play":
		err = cmdView(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`afptool - AFP animation utility

Usage:
  afptool <command> [options] [path]

Commands:
  list                      List every renderable path
  info [container]          Show container size, rate, frames and exports
  render <path> | -all      Render to PNG frames or an animated GIF
  view <path>               Play an animation in a window
  config [-write file]      Print or save the effective configuration

Common options:
  -config <file>     Config file (default ./afptool.yaml, then the user config dir)
  -manifest <path>   Asset manifest or directory containing manifest.yaml
  -out <dir>         Output directory for render
  -format png|gif    Output format for render
  -scale <n>         Integer upscale factor
  -max-frames <n>    Abort renders longer than n frames
  -once              Play once instead of looping (view)
  -debug, -verbose   Debug logging; -verbose also traces every tag

Examples:
  afptool list -manifest ./assets
  afptool render -format gif -scale 4 movie.idle
  afptool view -scale 6 movie`)
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg      *config.Config
	flags    *flag.FlagSet
	assets   *assets.Manager
	renderer *render.Renderer
}

// setup parses flags, loads config, starts logging and loads assets.
// extra registers subcommand-specific flags before parsing.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*app, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	overrides := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)

	mgr := assets.NewManager(logger.Named("assets"))
	if err := mgr.Load(cfg.Assets.Manifest); err != nil {
		return nil, err
	}

	r := render.New(
		render.WithLogger(logger.Named("render")),
		render.WithMaxFrames(cfg.Render.MaxFrames),
		render.WithMaxNesting(cfg.Render.MaxNesting),
	)
	if err := mgr.Register(r); err != nil {
		return nil, fmt.Errorf("registering assets: %w", err)
	}

	return &app{cfg: cfg, flags: fs, assets: mgr, renderer: r}, nil
}

// renderPath renders one path with the configured options and logs the result.
func (a *app) renderPath(path string) (int, []*image.RGBA, error) {
	duration, frames, err := a.renderer.RenderPath(path, render.Verbose(a.cfg.Render.Verbose))
	if err != nil {
		return 0, nil, fmt.Errorf("rendering %s: %w", path, err)
	}
	logger.Info("rendered",
		zap.String("path", path),
		zap.Int("frames", len(frames)),
		zap.Int("frame_ms", duration))
	return duration, frames, nil
}
