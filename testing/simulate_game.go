package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/tatianab/clean-kitchen/internal/autoplay"
	"github.com/tatianab/clean-kitchen/internal/config"
	"github.com/tatianab/clean-kitchen/internal/engine"
	"github.com/tatianab/clean-kitchen/internal/logger"
	"github.com/tatianab/clean-kitchen/internal/models"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	playerName := pflag.String("player", "oracle", "who answers the battles: oracle or gemini")
	pflag.StringVar(&cfg.ScriptPath, "script", cfg.ScriptPath, "YAML or JSONC script (default: built-in)")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	pflag.Parse()

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	var script *models.Script
	if cfg.ScriptPath != "" {
		script, err = models.LoadScript(cfg.ScriptPath)
	} else {
		script, err = models.DefaultScript()
	}
	if err != nil {
		log.Fatalf("Failed to load script: %v", err)
	}

	var player autoplay.Player
	switch *playerName {
	case "oracle":
		player = autoplay.OraclePlayer{}
	case "gemini":
		if err := cfg.RequireGemini(); err != nil {
			log.Fatal(err)
		}
		gp, err := autoplay.NewGeminiPlayer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini player: %v", err)
		}
		defer gp.Close()
		player = gp
	default:
		log.Fatalf("Unknown player %q", *playerName)
	}

	// Decay is wall-clock driven; the simulation only scores answers.
	eng, err := engine.New(script, engine.WithLogger(zl), engine.WithInterval(cfg.DecayInterval))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	fmt.Printf("--- %s (%d scenes, player: %s) ---\n\n", script.Title, script.Len(), *playerName)
	report, err := autoplay.Play(ctx, eng, player, zl, printTurn)
	switch {
	case errors.Is(err, autoplay.ErrRunFailed):
		fmt.Println("\nGame Ended: SYSTEM FAILURE. Tech debt reached 100%.")
		os.Exit(1)
	case err != nil:
		log.Fatalf("Simulation aborted: %v", err)
	}

	fmt.Println("\n--- Results ---")
	if !report.Complete() {
		fmt.Printf("Incomplete: %d battle(s) unanswered\n", len(report.Missing))
		for _, m := range report.Missing {
			fmt.Printf("- %s (scene %d)\n", m.Title, m.Index+1)
		}
		return
	}
	fmt.Printf("Tier %s: %s\n%s\nFinal tech debt: %d%%\n", report.Rating.Tier, report.Rating.Title, report.Rating.Message, report.Level)
}

func printTurn(t autoplay.Turn) {
	fmt.Printf("[%2d] %-10s %s\n", t.State.Position+1, t.Scene.Kind, t.Scene.Title)
	if t.Feedback == nil {
		return
	}
	verdict := "MISS"
	if t.Feedback.Success {
		verdict = "HIT"
	}
	fmt.Printf("     answer: %s -> %s (%+d%%, debt now %d%%)\n", t.Describe(), verdict, t.Feedback.Delta, t.State.ResourceLevel)
	if t.Feedback.Message != "" {
		fmt.Printf("     %s\n", t.Feedback.Message)
	}
}
