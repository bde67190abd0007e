package main

import (
	"flag"

	"annotator/internal/config"
	applog "annotator/internal/log"
	ui "annotator/internal/ui"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to config.json or config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfigFile(*configPath)
	cfg.ApplyEnv()

	logger := applog.NewLogger(applog.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		logger.WithError(err).Warn("using default config")
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	logger.WithField("backend", cfg.Backend).Info("starting annotator")

	app := ui.CreateApp(cfg, logger)

	app.Run()
}
