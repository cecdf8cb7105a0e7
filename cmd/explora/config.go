package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// config holds the command-line settings.
type config struct {
	width  int
	height int

	// grid seeds a grid x grid square of flat chunks when streaming is off.
	grid int
	// streamRadius turns on streaming around the camera target when positive.
	streamRadius int
	workers      int
	chunkDir     string

	alignment uint
	vsync     bool
	msaa      bool
	software  bool
	atlasPath string
	profile   bool
}

// parseConfig parses args (without the program name).
//
// Parameters:
//   - args: the command-line arguments
//   - output: where usage and parse errors are written
//
// Returns:
//   - config: the parsed settings
//   - error: flag.ErrHelp for -h, or a parse or validation error
func parseConfig(args []string, output io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("explora", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.width, "width", 1280, "window width in pixels")
	fs.IntVar(&cfg.height, "height", 720, "window height in pixels")
	fs.IntVar(&cfg.grid, "grid", 3, "side of the flat test grid in chunks (0 disables it)")
	fs.IntVar(&cfg.streamRadius, "stream", 0, "stream chunks within this radius of the camera target instead of the test grid")
	fs.IntVar(&cfg.workers, "workers", 4, "chunk streaming workers")
	fs.StringVar(&cfg.chunkDir, "chunks", "", "directory of saved chunks to stream from (default: generated flat chunks)")
	fs.UintVar(&cfg.alignment, "alignment", 0, "override the uniform buffer offset alignment in bytes (0 uses the device limit)")
	fs.BoolVar(&cfg.vsync, "vsync", true, "wait for vertical blank when presenting")
	fs.BoolVar(&cfg.msaa, "msaa", true, "enable 4x multisampling")
	fs.BoolVar(&cfg.software, "software", false, "force a software adapter")
	fs.StringVar(&cfg.atlasPath, "atlas", "", "PNG block atlas laid out as a 4x4 tile grid (default: built-in colours)")
	fs.BoolVar(&cfg.profile, "profile", false, "log frame and draw statistics every second")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	var errs []error
	if c.width <= 0 || c.height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.width, c.height))
	}
	if c.grid < 0 {
		errs = append(errs, fmt.Errorf("grid %d must not be negative", c.grid))
	}
	if c.streamRadius < 0 {
		errs = append(errs, fmt.Errorf("stream radius %d must not be negative", c.streamRadius))
	}
	if c.workers <= 0 {
		errs = append(errs, fmt.Errorf("workers %d must be positive", c.workers))
	}
	if c.alignment != 0 && c.alignment&(c.alignment-1) != 0 {
		errs = append(errs, fmt.Errorf("alignment %d must be a power of two", c.alignment))
	}
	return errors.Join(errs...)
}

// streaming reports whether chunks are streamed instead of seeded as a test grid.
func (c config) streaming() bool {
	return c.streamRadius > 0
}
