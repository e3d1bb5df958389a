package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tatianab/clean-kitchen/internal/config"
	"github.com/tatianab/clean-kitchen/internal/engine"
	"github.com/tatianab/clean-kitchen/internal/logger"
	"github.com/tatianab/clean-kitchen/internal/models"
	"github.com/tatianab/clean-kitchen/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := pflag.NewFlagSet("clean-kitchen", pflag.ContinueOnError)
	flags.StringVar(&cfg.ScriptPath, "script", cfg.ScriptPath, "YAML or JSONC script to present (default: built-in)")
	flags.DurationVar(&cfg.DecayInterval, "interval", cfg.DecayInterval, "time between entropy ticks")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file to write JSON logs to")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	listDir := flags.String("list", "", "list the scripts in this directory and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *listDir != "" {
		names, err := models.ListScripts(*listDir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	// The TUI owns the terminal, so logs always go to a file.
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "json", OutputPath: cfg.LogFile})
	if err != nil {
		return err
	}
	defer log.Sync()

	var script *models.Script
	if cfg.ScriptPath != "" {
		script, err = models.LoadScript(cfg.ScriptPath)
	} else {
		script, err = models.DefaultScript()
	}
	if err != nil {
		return err
	}
	log.Info("Script loaded", zap.String("title", script.Title), zap.Int("scenes", script.Len()))

	events := tui.NewEvents(64)
	eng, err := engine.New(script,
		engine.WithInterval(cfg.DecayInterval),
		engine.WithLogger(log),
		engine.WithListener(events.Listener()),
	)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer eng.Close()

	if err := tui.Run(eng, events, tui.Options{ToastDuration: cfg.ToastDuration}); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
