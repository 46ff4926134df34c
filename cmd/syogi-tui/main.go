package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"syogi/internal/tui"
	"syogi/pkg/syogi"
)

func main() {
	configPath := flag.String("config", "", "path to config.json")
	handicap := flag.String("handicap", "", "handicap (hirate, kyo, kaku, hisya, hikyo, nimai, yonmai, rokumai, hachimai, jumai)")
	side := flag.String("side", "", "side giving the handicap (white or black)")
	tryRule := flag.Bool("try", false, "enable the try rule")
	archive := flag.String("archive", "", "parquet file written by the save command")
	logFile := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg := syogi.DefaultConfig()
	path := *configPath
	if path == "" {
		if found, _, err := syogi.FindConfigPath(); err == nil {
			path = found
		}
	}
	if path != "" {
		loaded, err := syogi.LoadConfig(path)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if *handicap != "" {
		cfg.Handicap = *handicap
	}
	if *side != "" {
		cfg.HandicapSide = *side
	}
	if *tryRule {
		cfg.TryRule = true
	}
	if *archive != "" {
		cfg.Archive = *archive
	}

	h, s, err := cfg.GameSetup()
	if err != nil {
		fatal(err)
	}
	// The TUI owns the terminal.
	logger := zap.NewNop()
	if *logFile != "" {
		if logger, err = syogi.NewLogger(cfg.LogLevel, *logFile); err != nil {
			fatal(err)
		}
	}
	defer logger.Sync()

	opts := tui.Options{Handicap: h, Side: s, TryRule: cfg.TryRule, Archive: cfg.Archive}
	if err := tui.Run(opts, logger); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
