package config

import "flag"

// Flags holds command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string
	Scene      string
	Output     string
	Samples    int
	Depth      int
	Width      int
	Passes     int
	Workers    int
	Seed       int64
	LogLevel   string
	LogFile    string
	Port       int
}

// RegisterFlags defines the render flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (default ./"+DefaultConfigFile+" if present)")
	fs.StringVar(&f.Scene, "scene", "", "Scene name or path to a .yaml scene file")
	fs.StringVar(&f.Output, "output", "", "Output image path (.png, .jpg, .bmp, .tiff)")
	fs.IntVar(&f.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&f.Depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	fs.IntVar(&f.Width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&f.Passes, "passes", 0, "Number of progressive passes")
	fs.IntVar(&f.Workers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this rotating file")
	fs.IntVar(&f.Port, "port", 0, "Web server port")
	return f
}

// ApplyFlags applies the flags that were explicitly set on the command line to cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scene":
			cfg.Render.Scene = f.Scene
		case "output":
			cfg.Output.Path = f.Output
		case "samples":
			cfg.Render.SamplesPerPixel = f.Samples
		case "depth":
			cfg.Render.MaxDepth = f.Depth
		case "width":
			cfg.Render.Width = f.Width
		case "passes":
			cfg.Render.Passes = f.Passes
		case "workers":
			cfg.Render.Workers = f.Workers
		case "seed":
			cfg.Render.Seed = f.Seed
		case "log-level":
			cfg.Logging.Level = f.LogLevel
		case "log-file":
			cfg.Logging.LogFile = f.LogFile
		case "port":
			cfg.Server.Port = f.Port
		}
	})
}
