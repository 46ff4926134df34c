package syogi

import (
	"errors"
	"fmt"
	"strings"
)

const StandardSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// SFEN serialises b with turn to move and the given move number.
func (b *Board) SFEN(turn Side, moveNumber int) string {
	return fmt.Sprintf("%s %s %s %d", b.sfenBoard(), sfenTurn(turn), b.sfenHands(), moveNumber)
}

func sfenTurn(turn Side) string {
	if turn == White {
		return "w"
	}
	return "b"
}

func (b *Board) sfenBoard() string {
	rows := make([]string, 0, boardSize)
	for y := 0; y < boardSize; y++ {
		rows = append(rows, b.rankToSFEN(y))
	}
	return strings.Join(rows, "/")
}

func (b *Board) rankToSFEN(y int) string {
	var sb strings.Builder
	empty := 0
	flushEmpty := func() {
		if empty > 0 {
			sb.WriteString(fmt.Sprintf("%d", empty))
			empty = 0
		}
	}
	for x := boardSize - 1; x >= 0; x-- {
		c := b.cells[x][y]
		if c.Empty() {
			empty++
			continue
		}
		flushEmpty()
		sb.WriteString(c.Piece.usiLetter(c.Owner))
	}
	flushEmpty()
	return sb.String()
}

var sfenHandOrder = []PieceKind{Hisya, Kaku, Kin, Gin, Kei, Kyo, Fu}

func (b *Board) sfenHands() string {
	var sb strings.Builder
	for _, side := range []Side{Black, White} {
		for _, kind := range sfenHandOrder {
			count := b.hands[side][kind]
			if count <= 0 {
				continue
			}
			if count > 1 {
				sb.WriteString(fmt.Sprintf("%d", count))
			}
			sb.WriteString(kind.usiLetter(side))
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// ParseSFEN reads the board, side to move and hands of an SFEN string. The
// move number is optional.
func ParseSFEN(sfen string) (*Board, Side, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(sfen), "sfen "))
	if len(fields) < 3 {
		return nil, NoSide, fmt.Errorf("%w: %q", ErrInvalidSFEN, sfen)
	}
	board := &Board{}
	turn := Black
	switch fields[1] {
	case "b":
	case "w":
		turn = White
	default:
		return nil, NoSide, fmt.Errorf("%w: side %q", ErrInvalidSFEN, fields[1])
	}
	if err := parseBoardSFEN(fields[0], board); err != nil {
		return nil, NoSide, fmt.Errorf("%w: %v", ErrInvalidSFEN, err)
	}
	if err := parseHandsSFEN(fields[2], board); err != nil {
		return nil, NoSide, fmt.Errorf("%w: %v", ErrInvalidSFEN, err)
	}
	return board, turn, nil
}

func parseBoardSFEN(text string, board *Board) error {
	ranks := strings.Split(text, "/")
	if len(ranks) != boardSize {
		return fmt.Errorf("invalid board ranks: %d", len(ranks))
	}
	for y, rankText := range ranks {
		x := boardSize - 1
		runes := []rune(rankText)
		for i := 0; i < len(runes); i++ {
			r := runes[i]
			if r >= '1' && r <= '9' {
				x -= int(r - '0')
				continue
			}
			promoted := false
			if r == '+' {
				promoted = true
				i++
				if i >= len(runes) {
					return errors.New("dangling promotion marker")
				}
				r = runes[i]
			}
			side := Black
			if r >= 'a' && r <= 'z' {
				side = White
				r -= 'a' - 'A'
			}
			kind, ok := kindFromLetter(r, side)
			if !ok {
				return fmt.Errorf("unknown sfen piece %c", r)
			}
			if promoted {
				if !kind.CanPromote() {
					return fmt.Errorf("piece %c cannot be promoted", r)
				}
				kind = kind.Promoted()
			}
			if x < 0 {
				return errors.New("too many files in rank")
			}
			board.put(Square{x, y}, kind, side)
			x--
		}
		if x != -1 {
			return fmt.Errorf("rank %d does not have 9 files", y+1)
		}
	}
	return nil
}

func parseHandsSFEN(hand string, board *Board) error {
	if hand == "-" {
		return nil
	}
	count := 0
	for _, r := range hand {
		if r >= '0' && r <= '9' {
			count = count*10 + int(r-'0')
			continue
		}
		if count == 0 {
			count = 1
		}
		side := Black
		if r >= 'a' && r <= 'z' {
			side = White
			r -= 'a' - 'A'
		}
		kind, ok := kindFromLetter(r, side)
		if !ok || !kind.isHandKind() {
			return fmt.Errorf("unknown hand piece %c", r)
		}
		board.hands[side][kind] += count
		count = 0
	}
	if count != 0 {
		return errors.New("trailing hand count")
	}
	return nil
}

type usiMove struct {
	from    Square
	to      Square
	drop    bool
	piece   PieceKind
	promote bool
}

func parseUSIMove(move string) (usiMove, error) {
	if strings.Contains(move, "*") {
		parts := strings.SplitN(move, "*", 2)
		if len(parts) != 2 || len(parts[0]) != 1 {
			return usiMove{}, fmt.Errorf("invalid drop move: %s", move)
		}
		kind, ok := kindFromLetter(rune(strings.ToUpper(parts[0])[0]), Black)
		if !ok || !kind.isHandKind() {
			return usiMove{}, fmt.Errorf("invalid drop piece: %s", move)
		}
		to, err := parseUSISquare(parts[1])
		if err != nil {
			return usiMove{}, err
		}
		return usiMove{drop: true, piece: kind, to: to}, nil
	}
	if len(move) < 4 {
		return usiMove{}, fmt.Errorf("invalid move: %s", move)
	}
	from, err := parseUSISquare(move[0:2])
	if err != nil {
		return usiMove{}, err
	}
	to, err := parseUSISquare(move[2:4])
	if err != nil {
		return usiMove{}, err
	}
	promote := false
	if len(move) > 4 {
		if move[4] != '+' || len(move) > 5 {
			return usiMove{}, fmt.Errorf("invalid promotion marker: %s", move)
		}
		promote = true
	}
	return usiMove{from: from, to: to, promote: promote}, nil
}

func parseUSISquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, fmt.Errorf("invalid square: %s", text)
	}
	file := int(text[0] - '0')
	if file < 1 || file > 9 {
		return Square{}, fmt.Errorf("invalid file: %s", text)
	}
	rank := int(text[1]-'a') + 1
	if rank < 1 || rank > 9 {
		return Square{}, fmt.Errorf("invalid rank: %s", text)
	}
	return Square{X: file - 1, Y: rank - 1}, nil
}

func formatUSISquare(s Square) string {
	return fmt.Sprintf("%d%c", s.X+1, byte('a'+s.Y))
}

// USI renders l in USI notation, e.g. "7g7f", "2d2b+" or "P*5e".
func (l GameLog) USI() string {
	if l.From.IsHand() {
		return pieceDefs[l.Piece].usi + "*" + formatUSISquare(l.To)
	}
	s := formatUSISquare(l.From.Square) + formatUSISquare(l.To)
	if l.Promote {
		s += "+"
	}
	return s
}

// PlayUSI plays one move given in USI notation through the selection API and
// hands over the turn. It reports whether the move ended the game.
func (e *Engine) PlayUSI(move string) (bool, error) {
	parsed, err := parseUSIMove(move)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	if parsed.drop {
		if e.SelectHand(parsed.piece, e.turn) == 0 {
			return false, fmt.Errorf("%w: cannot drop %s", ErrIllegalMove, move)
		}
	} else if e.SelectAndHint(parsed.from.X, parsed.from.Y) == 0 {
		return false, fmt.Errorf("%w: no legal move from %s", ErrIllegalMove, move[0:2])
	}
	if err := e.Move(parsed.to.X, parsed.to.Y, parsed.promote); err != nil {
		e.Cancel()
		return false, err
	}
	return e.IsGameEnd(), nil
}
