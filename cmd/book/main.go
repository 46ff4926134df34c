package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"syogi/pkg/syogi"
)

// posInfo holds the SFEN string and move counts for a qualified position.
type posInfo struct {
	sfen  string
	moves map[string]uint32
}

func main() {
	inputDir := flag.String("input", "test_kif", "input directory for KIF files")
	outputPath := flag.String("output", "book.db", "output book file")
	threshold := flag.Int("threshold", 3, "minimum occurrence count to include in book")
	maxPly := flag.Int("max-ply", 60, "maximum ply to process per game")
	maxFiles := flag.Int("max-files", 0, "maximum number of files to process (0=all)")
	workers := flag.Int("workers", 0, "number of parallel workers (0=NumCPU)")
	flag.Parse()

	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	start := time.Now()
	files, err := syogi.CollectKIF(*inputDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no .kif files found in %s", *inputDir))
	}
	if *maxFiles > 0 && len(files) > *maxFiles {
		files = files[:*maxFiles]
	}
	fmt.Fprintf(os.Stderr, "files: %d, workers: %d, max-ply: %d, threshold: %d\n",
		len(files), *workers, *maxPly, *threshold)

	// Pass 1 only keeps fingerprints; SFEN strings are built in pass 2 for
	// qualified positions.
	fmt.Fprintf(os.Stderr, "pass 1: counting positions...\n")
	counts, errFiles := runPass1(files, *maxPly, *workers)

	total := 0
	for _, c := range counts {
		total += int(c)
	}
	fmt.Fprintf(os.Stderr, "  unique positions: %d, total occurrences: %d, file errors: %d\n",
		len(counts), total, errFiles)

	qual := make(map[string]bool)
	for k, c := range counts {
		if c >= uint32(*threshold) {
			qual[k] = true
		}
	}
	counts = nil
	runtime.GC()

	fmt.Fprintf(os.Stderr, "  qualified positions (>=%d): %d\n", *threshold, len(qual))
	if len(qual) == 0 {
		fmt.Fprintln(os.Stderr, "no positions meet the threshold; nothing to write")
		return
	}

	fmt.Fprintf(os.Stderr, "pass 2: collecting moves...\n")
	data := runPass2(files, *maxPly, qual, *workers)
	fmt.Fprintf(os.Stderr, "  book entries: %d\n", len(data))

	f, err := os.Create(*outputPath)
	if err != nil {
		fatal(err)
	}
	defer f.Close()
	if err := writeBook(f, data); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d positions) in %v\n",
		*outputPath, len(data), time.Since(start).Round(time.Millisecond))
}

// iteratePositions replays a KIF file and calls fn for every position, up to
// maxPly, from which a move was played. The engine passed to fn is borrowed.
func iteratePositions(path string, maxPly int, fn func(key string, e *syogi.Engine, move string)) error {
	rec, err := syogi.ReadKIF(path)
	if err != nil {
		return err
	}
	e := syogi.NewEngine()
	if err := e.ReplayKIF(rec); err != nil {
		return err
	}
	e.ToStart()

	limit := min(maxPly, len(rec.Moves))
	for i := 0; i < limit; i++ {
		fn(syogi.Fingerprint(e.Board(), e.CurrentTurn()), e, rec.Moves[i])
		if !e.Redo() {
			break
		}
	}
	return nil
}

func feedFiles(files []string, ch chan<- string) {
	for _, path := range files {
		ch <- path
	}
	close(ch)
}

// runPass1 counts how often each position occurs.
func runPass1(files []string, maxPly, workers int) (map[string]uint32, int) {
	counts := make(map[string]uint32)
	var mu sync.Mutex
	var processed, errCount atomic.Int64

	ch := make(chan string, workers*4)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]string, 0, 64)
			for path := range ch {
				batch = batch[:0]
				err := iteratePositions(path, maxPly, func(key string, _ *syogi.Engine, _ string) {
					batch = append(batch, key)
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "\n  %s: %v\n", path, err)
					errCount.Add(1)
					continue
				}
				mu.Lock()
				for _, k := range batch {
					counts[k]++
				}
				mu.Unlock()
				if n := processed.Add(1); n%10000 == 0 {
					fmt.Fprintf(os.Stderr, "\r  %d/%d", n, len(files))
				}
			}
		}()
	}

	feedFiles(files, ch)
	wg.Wait()
	fmt.Fprintf(os.Stderr, "\r  %d/%d\n", processed.Load(), len(files))

	return counts, int(errCount.Load())
}

// runPass2 collects the moves played from qualified positions.
func runPass2(files []string, maxPly int, qual map[string]bool, workers int) map[string]*posInfo {
	data := make(map[string]*posInfo)
	var mu sync.Mutex

	type localEntry struct {
		key  string
		sfen string
		move string
	}

	ch := make(chan string, workers*4)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]localEntry, 0, 16)
			for path := range ch {
				batch = batch[:0]
				_ = iteratePositions(path, maxPly, func(key string, e *syogi.Engine, move string) {
					if !qual[key] {
						return
					}
					batch = append(batch, localEntry{key, e.SFEN(), move})
				})
				mu.Lock()
				for _, entry := range batch {
					info := data[entry.key]
					if info == nil {
						info = &posInfo{sfen: entry.sfen, moves: make(map[string]uint32)}
						data[entry.key] = info
					}
					info.moves[entry.move]++
				}
				mu.Unlock()
			}
		}()
	}

	feedFiles(files, ch)
	wg.Wait()
	return data
}

// writeBook writes the YaneuraOu DB2016 book format, positions sorted by SFEN
// and moves by count.
func writeBook(out io.Writer, data map[string]*posInfo) error {
	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "#YANEURAOU-DB2016 1.00")

	entries := make([]*posInfo, 0, len(data))
	for _, info := range data {
		entries = append(entries, info)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].sfen < entries[j].sfen
	})

	for _, e := range entries {
		fmt.Fprintf(w, "sfen %s\n", e.sfen)

		type mc struct {
			move  string
			count uint32
		}
		ms := make([]mc, 0, len(e.moves))
		for m, c := range e.moves {
			ms = append(ms, mc{m, c})
		}
		sort.Slice(ms, func(i, j int) bool {
			if ms[i].count != ms[j].count {
				return ms[i].count > ms[j].count
			}
			return ms[i].move < ms[j].move
		})

		// <move> <response> <eval> <depth> <count>
		for _, m := range ms {
			fmt.Fprintf(w, "%s none 0 0 %d\n", m.move, m.count)
		}
	}
	return w.Flush()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
