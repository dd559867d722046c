package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/logger"
)

// Validate checks every setting and returns all problems combined.
func (c *Config) Validate() error {
	var err error

	r := c.Render
	if r.Scene == "" {
		err = multierr.Append(err, fmt.Errorf("render.scene must not be empty"))
	}
	if r.Width < 0 {
		err = multierr.Append(err, fmt.Errorf("render.width must not be negative, got %d", r.Width))
	}
	if r.SamplesPerPixel < 0 {
		err = multierr.Append(err, fmt.Errorf("render.samples_per_pixel must not be negative, got %d", r.SamplesPerPixel))
	}
	if r.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("render.max_depth must not be negative, got %d", r.MaxDepth))
	}
	if r.Passes < 1 {
		err = multierr.Append(err, fmt.Errorf("render.passes must be at least 1, got %d", r.Passes))
	}
	if r.InitialSamples < 1 {
		err = multierr.Append(err, fmt.Errorf("render.initial_samples must be at least 1, got %d", r.InitialSamples))
	}
	if r.TileSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("render.tile_size must be positive, got %d", r.TileSize))
	}
	if r.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("render.workers must not be negative, got %d", r.Workers))
	}

	if c.Output.Path != "" {
		if !loaders.IsSupportedImageFormat(c.Output.Path) {
			err = multierr.Append(err, fmt.Errorf("output.path %q: unsupported image format", c.Output.Path))
		}
	} else if !loaders.IsSupportedImageFormat("image." + c.Output.Format) {
		err = multierr.Append(err, fmt.Errorf("output.format %q: unsupported image format", c.Output.Format))
	}

	if _, levelErr := logger.ParseLevel(c.Logging.Level); levelErr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", levelErr))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	return err
}
