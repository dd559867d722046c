package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/logger"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Directory searched for YAML scene files by -list
const scenesDir = "scenes"

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	list := flag.Bool("list", false, "List available scenes and exit")
	saveConfig := flag.String("save-config", "", "Write the effective configuration to this file and exit")
	exportScene := flag.String("export-scene", "", "Write the configured scene as a .yaml scene file and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp(os.Stdout)
		return
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("configuration loaded",
		zap.String("scene", cfg.Render.Scene),
		zap.Int("passes", cfg.Render.Passes),
		zap.Int("workers", cfg.Render.Workers),
		zap.Int64("seed", cfg.Render.Seed))

	switch {
	case *list:
		err = listScenes(os.Stdout, scenesDir)
	case *saveConfig != "":
		if err = cfg.SaveTo(*saveConfig); err == nil {
			logger.Info("configuration saved", zap.String("path", *saveConfig))
		}
	case *exportScene != "":
		if err = exportSceneFile(cfg, *exportScene); err == nil {
			logger.Info("scene exported", zap.String("scene", cfg.Render.Scene), zap.String("path", *exportScene))
		}
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		var outputPath string
		outputPath, err = run(ctx, cfg, time.Now())
		stop()
		if err == nil {
			logger.Info("render saved", zap.String("path", outputPath))
		}
	}

	if err != nil {
		logger.Error("command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// run renders the configured scene and writes the final image, returning its path. If ctx is
// cancelled after at least one pass has finished, the last completed pass is saved.
func run(ctx context.Context, cfg *config.Config, now time.Time) (string, error) {
	s, err := createScene(cfg)
	if err != nil {
		return "", err
	}

	logger.Info("scene loaded",
		zap.String("scene", s.Name),
		zap.Int("spheres", s.GetPrimitiveCount()),
		zap.Int("width", s.SamplingConfig.Width),
		zap.Int("height", s.SamplingConfig.Height),
		zap.Int("samplesPerPixel", s.SamplingConfig.SamplesPerPixel),
		zap.Int("maxDepth", s.SamplingConfig.MaxDepth))

	startTime := time.Now()
	img, stats, err := render(ctx, s, progressiveConfig(cfg, s), logger.Log)
	if err != nil {
		if img == nil || !errors.Is(err, context.Canceled) {
			return "", err
		}
		logger.Warn("render interrupted, saving last completed pass")
	}

	logger.Info("render completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Float64("avgSamples", stats.AverageSamples),
		zap.Int("minSamples", stats.MinSamples),
		zap.Int("maxSamplesUsed", stats.MaxSamplesUsed))

	outputPath := cfg.OutputPath(cfg.Render.Scene, now)
	if err := loaders.SaveImage(outputPath, img); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return outputPath, nil
}

// createScene builds the configured scene and applies the size and sampling overrides
func createScene(cfg *config.Config) (*scene.Scene, error) {
	s, err := scene.New(cfg.Render.Scene, cfg.Render.Seed)
	if err != nil {
		return nil, err
	}
	s.ApplyOverrides(scene.Overrides{
		Width:           cfg.Render.Width,
		SamplesPerPixel: cfg.Render.SamplesPerPixel,
		MaxDepth:        cfg.Render.MaxDepth,
	})
	return s, nil
}

// progressiveConfig combines the render settings with the scene's sample budget
func progressiveConfig(cfg *config.Config, s *scene.Scene) renderer.ProgressiveConfig {
	samples := s.SamplingConfig.SamplesPerPixel
	return renderer.ProgressiveConfig{
		TileSize:           cfg.Render.TileSize,
		InitialSamples:     min(cfg.Render.InitialSamples, samples),
		MaxSamplesPerPixel: samples,
		MaxPasses:          cfg.Render.Passes,
		NumWorkers:         cfg.Render.Workers,
		Seed:               cfg.Render.Seed,
	}
}

// render runs every progressive pass and returns the image of the last one that completed
func render(ctx context.Context, s *scene.Scene, progressive renderer.ProgressiveConfig, log *zap.Logger) (*image.RGBA, renderer.RenderStats, error) {
	raytracer, err := renderer.NewProgressiveRaytracer(
		s.NewCamera(), s.World, s.NewIntegrator(),
		s.SamplingConfig.Width, s.SamplingConfig.Height, s.SamplingConfig.MaxDepth,
		progressive, log)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	passChan, _, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{})

	var img *image.RGBA
	var stats renderer.RenderStats
	for pass := range passChan {
		img, stats = pass.Image, pass.Stats
	}

	if err := <-errChan; err != nil {
		return img, stats, err
	}
	if img == nil {
		return nil, stats, errors.New("no passes were rendered")
	}
	return img, stats, nil
}

// exportSceneFile writes the configured scene, with size and sampling overrides applied, as a
// scene file that -scene can load back
func exportSceneFile(cfg *config.Config, path string) error {
	if !scene.IsSceneFile(path) {
		return fmt.Errorf("scene files must end in .yaml or .yml, got %q", path)
	}
	s, err := createScene(cfg)
	if err != nil {
		return err
	}
	sf, err := s.ToSceneFile()
	if err != nil {
		return err
	}
	return loaders.SaveSceneFile(path, sf)
}

func listScenes(w io.Writer, dir string) error {
	scenes, err := scene.ListAllScenes(dir, logger.Log)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scenes {
		fmt.Fprintf(w, "  %-28s %s (%s)\n", info.ID, info.DisplayName, info.Description)
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Sphere Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Settings are read from ./%s when present; flags override the file.\n", config.DefaultConfigFile)
	fmt.Fprintln(w, "Scenes are the built-ins listed by -list or a path to a .yaml scene file.")
	fmt.Fprintln(w, "Output is saved to output/<scene>/render_<timestamp>.png unless -output is set.")
	fmt.Fprintln(w, "Use -export-scene to turn any scene, including generated ones, into an editable .yaml file.")
}
