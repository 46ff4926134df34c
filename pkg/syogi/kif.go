package syogi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// KIFRecord is a parsed kifu: where the game started and the moves played,
// in USI notation.
type KIFRecord struct {
	Handicap    Handicap
	StartSFEN   string
	Moves       []string
	Terminal    string
	TerminalPly int
	SenteName   string
	SenteRating int32
	GoteName    string
	GoteRating  int32
}

type kifSquare struct {
	file int
	rank int
}

var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)
var terminalLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s*$`)
var fromSquareRe = regexp.MustCompile(`\((\d)(\d)\)`)
var nameRatingRe = regexp.MustCompile(`^(.+?)\((\d+)\)$`)

// ReadKIF reads and parses a KIF file in UTF-8 or Shift-JIS.
func ReadKIF(path string) (*KIFRecord, error) {
	lines, err := readKIFLines(path)
	if err != nil {
		return nil, err
	}
	rec, err := ParseKIF(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func readKIFLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := DecodeKIF(data)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines, nil
}

// DecodeKIF strips a UTF-8 BOM and falls back to Shift-JIS when data is not
// valid UTF-8.
func DecodeKIF(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: failed to decode Shift-JIS", ErrInvalidKIF)
	}
	return string(decoded), nil
}

// ParseKIF parses the lines of a kifu.
func ParseKIF(lines []string) (*KIFRecord, error) {
	handicap, start, err := initialPositionFromKIF(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKIF, err)
	}
	moves, err := parseKIFMoves(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKIF, err)
	}
	terminal, terminalPly := findTerminalMove(lines)
	// The last move before a foul marker is the illegal one.
	if isFoulTerminal(terminal) && len(moves) > 0 {
		moves = moves[:len(moves)-1]
	}
	rec := &KIFRecord{
		Handicap:    handicap,
		StartSFEN:   start,
		Moves:       moves,
		Terminal:    terminal,
		TerminalPly: terminalPly,
	}
	rec.SenteName, rec.SenteRating, rec.GoteName, rec.GoteRating = parsePlayers(lines)
	return rec, nil
}

// ReplayKIF loads rec's start position and plays every move through the
// selection API, so an illegal move stops the replay with ErrIllegalMove.
func (e *Engine) ReplayKIF(rec *KIFRecord) error {
	if err := e.LoadSFEN(rec.StartSFEN); err != nil {
		return err
	}
	e.handicap = rec.Handicap
	for i, move := range rec.Moves {
		ended, err := e.PlayUSI(move)
		if err != nil {
			return fmt.Errorf("ply %d %s: %w", i+1, move, err)
		}
		if ended && i != len(rec.Moves)-1 {
			return fmt.Errorf("ply %d %s: %w: moves after checkmate", i+1, move, ErrIllegalMove)
		}
	}
	return nil
}

// Result is the outcome the kifu declares through its terminal marker.
func (r *KIFRecord) Result() (Outcome, string) {
	if r.Terminal == "" {
		return InProgress, ""
	}
	return resultFromTerminal(r.Terminal, r.TerminalPly)
}

func parseKIFMoves(lines []string) ([]string, error) {
	var moves []string
	var prevDest *kifSquare
	for i, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		moveText := strings.TrimSpace(match[2])
		if moveText == "" {
			continue
		}
		move, dest, end, err := parseKIFMoveToken(moveText, prevDest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if end {
			break
		}
		moves = append(moves, move)
		prevDest = dest
	}
	return moves, nil
}

func parseKIFMoveToken(token string, prevDest *kifSquare) (string, *kifSquare, bool, error) {
	if isTerminalMove(token) {
		return "", nil, true, nil
	}
	work := strings.TrimSpace(token)
	var dest kifSquare
	if strings.HasPrefix(work, "同") {
		if prevDest == nil {
			return "", nil, false, errors.New("same-square move without previous destination")
		}
		dest = *prevDest
		work = strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(work, "同"), " 　"))
	} else {
		runes := []rune(work)
		if len(runes) < 2 {
			return "", nil, false, fmt.Errorf("invalid move token: %s", token)
		}
		file, ok := parseFileRune(runes[0])
		if !ok {
			return "", nil, false, fmt.Errorf("invalid destination file in %s", token)
		}
		rank, ok := parseRankRune(runes[1])
		if !ok {
			return "", nil, false, fmt.Errorf("invalid destination rank in %s", token)
		}
		dest = kifSquare{file: file, rank: rank}
		work = strings.TrimSpace(string(runes[2:]))
	}

	fromFile, fromRank, hasFrom := parseFromSquare(work)
	if hasFrom {
		work = fromSquareRe.ReplaceAllString(work, "")
	}
	drop := strings.Contains(work, "打")
	if drop {
		work = strings.Replace(work, "打", "", 1)
	}

	kind, rest, err := parseKIFPiece(work)
	if err != nil {
		return "", nil, false, err
	}
	promote := false
	switch strings.TrimSpace(rest) {
	case "", "不成", "生":
	case "成":
		promote = true
	default:
		return "", nil, false, fmt.Errorf("unexpected suffix in %s", token)
	}

	to := formatKIFSquare(dest)
	if drop {
		if kind.IsPromoted() || !kind.isHandKind() {
			return "", nil, false, fmt.Errorf("cannot drop %s", kind)
		}
		return pieceDefs[kind].usi + "*" + to, &dest, false, nil
	}
	if !hasFrom {
		return "", nil, false, errors.New("missing source square")
	}
	usi := formatKIFSquare(kifSquare{file: fromFile, rank: fromRank}) + to
	if promote {
		usi += "+"
	}
	return usi, &dest, false, nil
}

func formatKIFSquare(s kifSquare) string {
	return formatUSISquare(Square{X: s.file - 1, Y: s.rank - 1})
}

func isTerminalMove(token string) bool {
	switch token {
	case "投了", "中断", "持将棋", "千日手", "詰み", "切れ負け", "反則勝ち", "反則負け", "入玉勝ち", "勝ち宣言":
		return true
	default:
		return false
	}
}

func isFoulTerminal(token string) bool {
	return token == "反則勝ち" || token == "反則負け"
}

func parseFromSquare(text string) (int, int, bool) {
	match := fromSquareRe.FindStringSubmatch(text)
	if len(match) != 3 {
		return 0, 0, false
	}
	file := int(match[1][0] - '0')
	rank := int(match[2][0] - '0')
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return 0, 0, false
	}
	return file, rank, true
}

func parseFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

var kanjiDigits = []rune("一二三四五六七八九")

func parseRankRune(r rune) (int, bool) {
	for i, d := range kanjiDigits {
		if d == r {
			return i + 1, true
		}
	}
	return 0, false
}

type kifPiece struct {
	name string
	kind PieceKind
}

// Longer names first so "成銀" is not read as a promotion suffix.
var kifPieces = []kifPiece{
	{"成銀", NariGin}, {"成桂", NariKei}, {"成香", NariKyo},
	{"全", NariGin}, {"圭", NariKei}, {"杏", NariKyo},
	{"と", To}, {"馬", Uma}, {"龍", Ryu}, {"竜", Ryu},
	{"王", Ou}, {"玉", Gyoku},
	{"飛", Hisya}, {"角", Kaku}, {"金", Kin}, {"銀", Gin},
	{"桂", Kei}, {"香", Kyo}, {"歩", Fu},
}

func parseKIFPiece(text string) (PieceKind, string, error) {
	clean := strings.TrimSpace(text)
	kind, n, ok := matchKIFPiece([]rune(clean))
	if !ok {
		return None, "", fmt.Errorf("unknown piece in %s", text)
	}
	return kind, string([]rune(clean)[n:]), nil
}

// matchKIFPiece matches a piece name at the start of runes and returns its
// length in runes.
func matchKIFPiece(runes []rune) (PieceKind, int, bool) {
	for _, p := range kifPieces {
		name := []rune(p.name)
		if len(runes) >= len(name) && string(runes[:len(name)]) == p.name {
			return p.kind, len(name), true
		}
	}
	return None, 0, false
}

func parsePlayers(lines []string) (string, int32, string, int32) {
	sente := headerValue(lines, "先手", "下手")
	gote := headerValue(lines, "後手", "上手")
	senteName, senteRating := parseNameRating(sente)
	goteName, goteRating := parseNameRating(gote)
	return senteName, senteRating, goteName, goteRating
}

func headerValue(lines []string, keys ...string) string {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		for _, key := range keys {
			for _, prefix := range []string{key + "：", key + ":"} {
				if strings.HasPrefix(trim, prefix) {
					return strings.TrimSpace(strings.TrimPrefix(trim, prefix))
				}
			}
		}
	}
	return ""
}

func parseNameRating(raw string) (string, int32) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0
	}
	match := nameRatingRe.FindStringSubmatch(raw)
	if len(match) == 3 {
		var value int
		_, _ = fmt.Sscanf(match[2], "%d", &value)
		return strings.TrimSpace(match[1]), int32(value)
	}
	return raw, 0
}

func findTerminalMove(lines []string) (string, int) {
	ply := 0
	for _, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			// Terminal markers may come without a clock.
			match = terminalLineRe.FindStringSubmatch(line)
		}
		if len(match) == 0 {
			continue
		}
		moveText := strings.TrimSpace(match[2])
		if moveText == "" {
			continue
		}
		ply++
		if isTerminalMove(moveText) {
			return moveText, ply
		}
	}
	return "", 0
}

// resultFromTerminal maps a terminal marker found at ply to an outcome.
// Plies are counted from 1 and Black plays the odd ones.
func resultFromTerminal(token string, ply int) (Outcome, string) {
	switch token {
	case "中断":
		return InProgress, token
	case "持将棋", "千日手":
		return Draw, token
	case "反則勝ち", "入玉勝ち", "勝ち宣言":
		return winnerFromPly(ply), token
	case "投了", "詰み", "切れ負け", "反則負け":
		return winnerFromPly(ply + 1), token
	default:
		return InProgress, token
	}
}

func winnerFromPly(ply int) Outcome {
	if ply%2 == 1 {
		return BlackWin
	}
	return WhiteWin
}

// CollectKIF lists the .kif files under root in lexical order.
func CollectKIF(root string) ([]string, error) {
	var files []string
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".kif") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func initialPositionFromKIF(lines []string) (Handicap, string, error) {
	handicap := Hirate
	named := false
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if value := strings.TrimPrefix(trim, "手合割："); value != trim {
			h, err := ParseHandicap(value)
			if err == nil {
				handicap, named = h, true
			}
			break
		}
	}

	boardLines := collectBoardLines(lines)
	if len(boardLines) == 0 {
		if !named {
			return Hirate, "", errors.New("no board definition found")
		}
		return handicap, handicapSFEN(handicap), nil
	}
	board, err := parseBoardLines(boardLines)
	if err != nil {
		return Hirate, "", err
	}
	black, white, err := parseHandsCounts(lines)
	if err != nil {
		return Hirate, "", err
	}
	hand := buildHands(black, white)
	if hand == "" {
		hand = "-"
	}
	return handicap, fmt.Sprintf("%s %s %s 1", board, parseTurn(lines), hand), nil
}

// handicapSFEN is the start position of h; the handicap giver moves first.
func handicapSFEN(h Handicap) string {
	if h == Hirate {
		return StandardSFEN
	}
	b := NewBoard()
	b.applyHandicap(White, h)
	return b.SFEN(White, 1)
}

func collectBoardLines(lines []string) []string {
	var board []string
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "|") {
			if i := strings.LastIndex(trim, "|"); i > 0 {
				board = append(board, trim[:i+1])
			}
		}
	}
	return board
}

func parseBoardLines(lines []string) (string, error) {
	if len(lines) < boardSize {
		return "", fmt.Errorf("board lines must be 9 rows, got %d", len(lines))
	}
	rows := make([]string, 0, boardSize)
	for i := 0; i < boardSize; i++ {
		row, err := parseBoardRow(lines[i])
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "/"), nil
}

func parseBoardRow(line string) (string, error) {
	trim := strings.TrimSpace(line)
	trim = strings.TrimPrefix(trim, "|")
	trim = strings.TrimSuffix(trim, "|")
	runes := []rune(trim)
	var cells []string
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		if r == '・' {
			cells = append(cells, "")
			i++
			continue
		}
		isGote := false
		if r == 'v' {
			isGote = true
			i++
			if i >= len(runes) {
				return "", errors.New("dangling gote marker")
			}
		}
		kind, n, ok := matchKIFPiece(runes[i:])
		if !ok {
			return "", fmt.Errorf("unknown piece %c", runes[i])
		}
		side := Black
		if isGote {
			side = White
		}
		cells = append(cells, kind.usiLetter(side))
		i += n
	}
	if len(cells) != boardSize {
		return "", fmt.Errorf("expected 9 cells, got %d", len(cells))
	}
	return compressEmpty(cells), nil
}

func compressEmpty(cells []string) string {
	var b strings.Builder
	empty := 0
	flushEmpty := func() {
		if empty > 0 {
			b.WriteString(fmt.Sprintf("%d", empty))
			empty = 0
		}
	}
	for _, cell := range cells {
		if cell == "" {
			empty++
			continue
		}
		flushEmpty()
		b.WriteString(cell)
	}
	flushEmpty()
	return b.String()
}

func parseTurn(lines []string) string {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "後手番" || trim == "上手番":
			return "w"
		case trim == "先手番" || trim == "下手番":
			return "b"
		case strings.HasPrefix(trim, "手番"):
			if strings.Contains(trim, "後手") {
				return "w"
			}
			return "b"
		}
	}
	return "b"
}

func parseHandsCounts(lines []string) (map[string]int, map[string]int, error) {
	black := make(map[string]int)
	white := make(map[string]int)
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		var dst map[string]int
		switch {
		case strings.HasPrefix(trim, "先手の持駒"), strings.HasPrefix(trim, "下手の持駒"):
			dst = black
		case strings.HasPrefix(trim, "後手の持駒"), strings.HasPrefix(trim, "上手の持駒"):
			dst = white
		default:
			continue
		}
		counts, err := parseHandLine(trim)
		if err != nil {
			return nil, nil, err
		}
		for key, val := range counts {
			dst[key] += val
		}
	}
	return black, white, nil
}

func parseHandLine(line string) (map[string]int, error) {
	parts := strings.SplitN(line, "：", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(line, ":", 2)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid hand line: %s", line)
	}
	text := strings.TrimSpace(parts[1])
	counts := make(map[string]int)
	if text == "なし" {
		return counts, nil
	}
	for len(text) > 0 {
		runes := []rune(text)
		kind, _, err := parseKIFPiece(string(runes[0]))
		if err != nil || !kind.isHandKind() {
			return nil, fmt.Errorf("unknown hand piece %c", runes[0])
		}
		count, consumed := parseCount(runes[1:])
		if consumed == 0 {
			count = 1
		}
		counts[pieceDefs[kind].usi] += count
		text = strings.TrimSpace(string(runes[1+consumed:]))
	}
	return counts, nil
}

// parseCount reads an arabic or kanji count such as "2", "二" or "十八".
func parseCount(runes []rune) (int, int) {
	if len(runes) == 0 {
		return 0, 0
	}
	if runes[0] >= '0' && runes[0] <= '9' {
		val, i := 0, 0
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			val = val*10 + int(runes[i]-'0')
			i++
		}
		return val, i
	}
	tens, ones, consumed := 0, 0, 0
	for consumed < len(runes) {
		r := runes[consumed]
		if r == '十' {
			tens = 10 * max(ones, 1)
			ones = 0
		} else if n, ok := parseRankRune(r); ok {
			ones = n
		} else {
			break
		}
		consumed++
	}
	if tens+ones == 0 {
		return 0, 0
	}
	return tens + ones, consumed
}

func buildHands(black, white map[string]int) string {
	order := []string{"R", "B", "G", "S", "N", "L", "P"}
	var b strings.Builder
	for _, piece := range order {
		if count := black[piece]; count > 0 {
			if count > 1 {
				b.WriteString(fmt.Sprintf("%d", count))
			}
			b.WriteString(piece)
		}
	}
	for _, piece := range order {
		if count := white[piece]; count > 0 {
			if count > 1 {
				b.WriteString(fmt.Sprintf("%d", count))
			}
			b.WriteString(strings.ToLower(piece))
		}
	}
	return b.String()
}
