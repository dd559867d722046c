// Package config handles render configuration loading and management.
package config

// Config holds all render settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// RenderConfig holds scene and sampling settings. Width, SamplesPerPixel and MaxDepth of 0 keep
// the scene's own values.
type RenderConfig struct {
	Scene           string `yaml:"scene"`
	Width           int    `yaml:"width"`
	SamplesPerPixel int    `yaml:"samples_per_pixel"`
	MaxDepth        int    `yaml:"max_depth"`
	Passes          int    `yaml:"passes"`
	InitialSamples  int    `yaml:"initial_samples"`
	TileSize        int    `yaml:"tile_size"`
	Workers         int    `yaml:"workers"` // 0 = one per CPU
	Seed            int64  `yaml:"seed"`
}

// OutputConfig holds image output settings.
type OutputConfig struct {
	Path   string `yaml:"path"`   // Explicit output file; overrides Dir and Format
	Dir    string `yaml:"dir"`    // Root directory for generated file names
	Format string `yaml:"format"` // File extension without the dot
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ServerConfig holds web server settings and request limits.
type ServerConfig struct {
	Port       int `yaml:"port"`
	MaxWidth   int `yaml:"max_width"`
	MaxSamples int `yaml:"max_samples"`
	MaxPasses  int `yaml:"max_passes"`
	MaxDepth   int `yaml:"max_depth"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Scene:          "default",
			Passes:         7,
			InitialSamples: 1,
			TileSize:       64,
			Workers:        0,
			Seed:           42,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Server: ServerConfig{
			Port:       8080,
			MaxWidth:   2000,
			MaxSamples: 10000,
			MaxPasses:  100,
			MaxDepth:   200,
		},
	}
}
