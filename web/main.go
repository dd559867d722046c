package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/logger"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	scenesDir := flag.String("scenes", "scenes", "Directory containing .yaml scene files")
	flag.Parse()

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

	webServer := server.NewServer(cfg, *scenesDir, logger.Log)

	logger.Info("sphere path tracer web server",
		zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
		zap.String("scenes", *scenesDir))

	if err := webServer.Start(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
