package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"syogi/pkg/syogi"
)

type ratingStats struct {
	binSize     int
	known       int
	unknown     int
	min         int
	max         int
	initialized bool
	bins        map[int]int
}

type userRatingAgg struct {
	sum   int64
	count int
}

// gameStats counts outcomes, end reasons and game lengths.
type gameStats struct {
	games    int
	results  map[string]int
	reasons  map[string]int
	lengths  map[int]int
	binSize  int
	longest  int
	totalPly int
}

func newRatingStats(binSize int) *ratingStats {
	return &ratingStats{
		binSize: binSize,
		bins:    make(map[int]int),
	}
}

func (rs *ratingStats) Add(rating int32) {
	if rating <= 0 {
		rs.unknown++
		return
	}
	value := int(rating)
	rs.known++
	if !rs.initialized {
		rs.min = value
		rs.max = value
		rs.initialized = true
	} else {
		if value < rs.min {
			rs.min = value
		}
		if value > rs.max {
			rs.max = value
		}
	}
	binStart := (value / rs.binSize) * rs.binSize
	rs.bins[binStart]++
}

func newGameStats(binSize int) *gameStats {
	return &gameStats{
		results: make(map[string]int),
		reasons: make(map[string]int),
		lengths: make(map[int]int),
		binSize: binSize,
	}
}

func (gs *gameStats) Add(record syogi.GameRecord) {
	gs.games++
	gs.results[record.Result]++
	reason := record.Reason
	if reason == "" {
		reason = "(none)"
	}
	gs.reasons[reason]++
	n := int(record.MoveCount)
	gs.lengths[(n/gs.binSize)*gs.binSize]++
	gs.totalPly += n
	if n > gs.longest {
		gs.longest = n
	}
}

func main() {
	kifDir := flag.String("kif-dir", "", "input directory for KIF files")
	parquetPath := flag.String("parquet", "", "input parquet archive")
	binSize := flag.Int("bin-size", 100, "rating bin size")
	plyBin := flag.Int("ply-bin", 20, "game length bin size")
	minGames := flag.Int("min-games", 2, "minimum games per user to count")
	tryRule := flag.Bool("try", false, "judge KIF games with the try rule")
	flag.Parse()

	if *binSize <= 0 || *plyBin <= 0 {
		fatal(fmt.Errorf("bin-size and ply-bin must be > 0"))
	}
	if *minGames <= 0 {
		fatal(fmt.Errorf("min-games must be > 0"))
	}
	if (*kifDir == "") == (*parquetPath == "") {
		fatal(fmt.Errorf("specify exactly one of -kif-dir or -parquet"))
	}

	var records []syogi.GameRecord
	failed := 0
	inputIsParquet := *parquetPath != ""
	if inputIsParquet {
		var err error
		records, err = syogi.ReadArchive(*parquetPath, 4)
		if err != nil {
			fatal(err)
		}
	} else {
		files, err := syogi.CollectKIF(*kifDir)
		if err != nil {
			fatal(err)
		}
		if len(files) == 0 {
			fatal(fmt.Errorf("no .kif files found in %s", *kifDir))
		}
		for _, path := range files {
			record, err := recordFromKIF(path, *tryRule)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", path, err)
				failed++
				continue
			}
			records = append(records, record)
		}
	}

	uniqueUsers := make(map[string]struct{})
	userAgg := make(map[string]*userRatingAgg)
	ratings := newRatingStats(*binSize)
	games := newGameStats(*plyBin)
	for _, record := range records {
		games.Add(record)
		if record.SenteName != "" {
			uniqueUsers[record.SenteName] = struct{}{}
			addUserRating(userAgg, record.SenteName, record.SenteRating)
		}
		if record.GoteName != "" {
			uniqueUsers[record.GoteName] = struct{}{}
			addUserRating(userAgg, record.GoteName, record.GoteRating)
		}
	}

	unknownUsers := 0
	usersAtLeast := 0
	for name := range uniqueUsers {
		agg, ok := userAgg[name]
		if !ok || agg.count == 0 {
			unknownUsers++
			continue
		}
		if agg.count >= *minGames {
			usersAtLeast++
		}
		avg := int32(agg.sum / int64(agg.count))
		ratings.Add(avg)
	}

	if inputIsParquet {
		fmt.Printf("input parquet: %s\n", *parquetPath)
	} else {
		fmt.Printf("kif dir: %s\n", *kifDir)
	}
	fmt.Printf("failed files: %d\n", failed)
	fmt.Printf("games: %d\n", games.games)
	printCounts("results", games.results)
	printCounts("end reasons", games.reasons)
	if games.games > 0 {
		fmt.Printf("moves: avg=%.1f max=%d\n", float64(games.totalPly)/float64(games.games), games.longest)
	}
	fmt.Printf("game length distribution (bin size=%d):\n", games.binSize)
	for _, start := range sortedKeys(games.lengths) {
		fmt.Printf("%d-%d,%d\n", start, start+games.binSize-1, games.lengths[start])
	}

	fmt.Printf("unique users: %d\n", len(uniqueUsers))
	fmt.Printf("ratings: known=%d unknown=%d (users without rating=%d)\n", ratings.known, ratings.unknown, unknownUsers)
	fmt.Printf("users with >= %d games: %d\n", *minGames, usersAtLeast)
	if ratings.known > 0 {
		fmt.Printf("rating range: %d-%d\n", ratings.min, ratings.max)
	}
	fmt.Printf("rating distribution (bin size=%d):\n", ratings.binSize)
	for _, start := range sortedKeys(ratings.bins) {
		end := start + ratings.binSize - 1
		fmt.Printf("%d-%d,%d\n", start, end, ratings.bins[start])
	}
}

// recordFromKIF replays a KIF file and summarises it like an archived game.
// A declared result in the file wins over the engine's own verdict.
func recordFromKIF(path string, tryRule bool) (syogi.GameRecord, error) {
	rec, err := syogi.ReadKIF(path)
	if err != nil {
		return syogi.GameRecord{}, err
	}
	e := syogi.NewEngine()
	if err := e.ReplayKIF(rec); err != nil {
		return syogi.GameRecord{}, err
	}
	record := e.Record(path, tryRule)
	record.SenteName, record.SenteRating = rec.SenteName, rec.SenteRating
	record.GoteName, record.GoteRating = rec.GoteName, rec.GoteRating
	if outcome, reason := rec.Result(); outcome != syogi.InProgress {
		record.Result, record.Reason = outcome.String(), reason
	}
	return record, nil
}

func printCounts(title string, counts map[string]int) {
	fmt.Printf("%s:\n", title)
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %s,%d\n", key, counts[key])
	}
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func addUserRating(agg map[string]*userRatingAgg, name string, rating int32) {
	if rating <= 0 {
		return
	}
	entry, ok := agg[name]
	if !ok {
		entry = &userRatingAgg{}
		agg[name] = entry
	}
	entry.sum += int64(rating)
	entry.count++
}
