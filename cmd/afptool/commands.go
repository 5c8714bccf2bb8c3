package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/afpkit/internal/config"
	"github.com/Faultbox/afpkit/internal/export"
	"github.com/Faultbox/afpkit/internal/logger"
	"github.com/Faultbox/afpkit/internal/viewer"
	"github.com/Faultbox/afpkit/pkg/afp"
)

func cmdList(args []string) error {
	a, err := setup("list", args, nil)
	if err != nil {
		return err
	}

	for _, path := range a.renderer.ListPaths() {
		fmt.Println(path)
	}
	return nil
}

func cmdInfo(args []string) error {
	a, err := setup("info", args, nil)
	if err != nil {
		return err
	}

	containers := a.assets.Containers()
	if a.flags.NArg() > 0 {
		c, ok := a.renderer.Container(a.flags.Arg(0))
		if !ok {
			return fmt.Errorf("container %q not found", a.flags.Arg(0))
		}
		containers = []*afp.Container{c}
	}

	fmt.Printf("Assets:    %s\n\n", a.assets.Root())
	for i, c := range containers {
		if i > 0 {
			fmt.Println()
		}
		printInfo(c)
	}
	return nil
}

func printInfo(c *afp.Container) {
	fmt.Printf("Container: %s\n", c.ExportedName)
	fmt.Printf("Size:      %dx%d\n", c.Location.Width, c.Location.Height)
	fmt.Printf("Rate:      %g fps (%d ms/frame)\n", c.FPS, c.FrameDuration())
	fmt.Printf("Frames:    %d\n", len(c.Frames))
	fmt.Printf("Background: %s\n", c.Background())

	counts := c.CountTags()
	kinds := make([]afp.TagKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	fmt.Println("Tags:")
	for _, k := range kinds {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}

	exports := c.ExportNames()
	if len(exports) == 0 {
		return
	}
	fmt.Println("Exports:")
	for _, name := range exports {
		fmt.Printf("  %-20s sprite %d\n", name, c.ExportedTags[name])
	}
}

func cmdRender(args []string) error {
	var all bool
	a, err := setup("render", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&all, "all", false, "Render every path")
	})
	if err != nil {
		return err
	}

	paths := a.flags.Args()
	if all {
		paths = a.renderer.ListPaths()
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: afptool render [options] <path>... | -all")
		return flag.ErrHelp
	}

	var errs error
	for _, path := range paths {
		written, err := a.export(path)
		if err != nil {
			// Keep going so one broken path doesn't hide the rest.
			logger.Error("render failed", zap.String("path", path), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		for _, f := range written {
			fmt.Println(f)
		}
	}
	return errs
}

// export renders one path and writes it in the configured format.
func (a *app) export(path string) ([]string, error) {
	duration, frames, err := a.renderPath(path)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		logger.Warn("nothing to export", zap.String("path", path))
		return nil, nil
	}

	frames, err = export.Scale(frames, a.cfg.Output.Scale)
	if err != nil {
		return nil, err
	}

	out := a.cfg.Output
	switch out.Format {
	case config.FormatGIF:
		file := filepath.Join(out.Dir, path+".gif")
		if err := export.WriteGIFFile(file, duration, frames); err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return export.WritePNGs(out.Dir, path, frames)
	}
}

func cmdView(args []string) error {
	a, err := setup("view", args, nil)
	if err != nil {
		return err
	}
	if a.flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: afptool view [options] <path>")
		return flag.ErrHelp
	}

	path := a.flags.Arg(0)
	duration, frames, err := a.renderPath(path)
	if err != nil {
		return err
	}

	return viewer.Show(viewer.Config{
		Title: "afptool - " + path,
		Scale: a.cfg.Viewer.Scale,
		Loop:  a.cfg.Viewer.Loop,
		VSync: a.cfg.Viewer.VSync,
	}, frames, duration, logger.Named("viewer"))
}

// cmdConfig doesn't load assets, so it works before a manifest exists.
func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	overrides := config.RegisterFlags(fs)
	write := fs.String("write", "", "Save the effective config to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}

	if *write != "" {
		target := *write
		if strings.EqualFold(target, "default") {
			target = config.DefaultPath()
		}
		if err := cfg.SaveTo(target); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(target)
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
