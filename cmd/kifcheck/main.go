// kifcheck replays every KIF file under a directory, rejects games with an
// illegal move and archives the rest to a parquet file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"syogi/pkg/syogi"
)

func main() {
	configPath := flag.String("config", "", "path to config.json")
	inputDir := flag.String("kif-dir", "test_kif", "input directory for KIF files")
	outputPath := flag.String("output", "", "output parquet file (default from config)")
	processNum := flag.Int("workers", 0, "number of parallel workers (default from config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	logger, err := syogi.NewLogger(cfg.LogLevel)
	if err != nil {
		fatal(err)
	}
	defer logger.Sync()

	output := cfg.Archive
	if *outputPath != "" {
		output = *outputPath
	}
	workers := cfg.Workers
	if *processNum > 0 {
		workers = *processNum
	}
	if workers <= 0 {
		workers = 1
	}

	files, err := syogi.CollectKIF(*inputDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no .kif files found in %s", *inputDir))
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(err)
		}
	}

	rejected, err := archiveGames(files, output, workers, cfg.TryRule, logger)
	if err != nil {
		fatal(err)
	}
	logger.Info("done",
		zap.Int("files", len(files)),
		zap.Int64("rejected", rejected),
		zap.String("output", output))
}

// archiveGames checks files on a pool of workers and writes the accepted
// games to output. It returns the number of rejected files.
func archiveGames(files []string, output string, workers int, tryRule bool, logger *zap.Logger) (int64, error) {
	results := make(chan syogi.GameRecord, workers)
	writeErr := make(chan error, 1)
	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go func() {
		defer writeWg.Done()
		writeErr <- syogi.WriteArchive(output, results, int64(workers))
	}()

	var rejected atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			record, err := checkGame(path, tryRule)
			if err != nil {
				rejected.Add(1)
				logger.Warn("rejected", zap.String("file", path), zap.Error(err))
				return nil
			}
			select {
			case results <- record:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	waitErr := g.Wait()
	close(results)
	writeWg.Wait()
	if err := <-writeErr; err != nil {
		return rejected.Load(), err
	}
	return rejected.Load(), waitErr
}

// checkGame replays one KIF file and builds its archive record.
func checkGame(path string, tryRule bool) (syogi.GameRecord, error) {
	rec, err := syogi.ReadKIF(path)
	if err != nil {
		return syogi.GameRecord{}, err
	}
	e := syogi.NewEngine()
	if err := e.ReplayKIF(rec); err != nil {
		return syogi.GameRecord{}, err
	}
	record := e.Record(filepath.Base(path), tryRule)
	record.SenteName, record.SenteRating = rec.SenteName, rec.SenteRating
	record.GoteName, record.GoteRating = rec.GoteName, rec.GoteRating
	if outcome, reason := rec.Result(); outcome != syogi.InProgress {
		record.Result, record.Reason = outcome.String(), reason
	}
	return record, nil
}

func loadConfig(arg string) (syogi.Config, error) {
	if arg != "" {
		return syogi.LoadConfig(arg)
	}
	path, _, err := syogi.FindConfigPath()
	if err != nil {
		return syogi.DefaultConfig(), nil
	}
	return syogi.LoadConfig(path)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
