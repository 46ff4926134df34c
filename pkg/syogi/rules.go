package syogi

import (
	"fmt"

	"go.uber.org/zap"
)

// repetitionLimit is the number of occurrences of one position that ends the
// game as a draw.
const repetitionLimit = 4

// Try squares: the opponent king's starting square.
var trySquares = map[Side]Square{
	Black: {4, 0},
	White: {4, 8},
}

// positionKey identifies the current position together with the side to move
// after the move at the cursor.
func (e *Engine) positionKey() string {
	return Fingerprint(e.board, e.mover().Opponent())
}

func (e *Engine) countPosition(delta int) {
	key := e.positionKey()
	n := e.positions[key] + delta
	if n <= 0 {
		delete(e.positions, key)
		return
	}
	e.positions[key] = n
}

// RepetitionCount returns how often the current position has occurred in
// the applied part of the game.
func (e *Engine) RepetitionCount() int {
	if e.logIndex < 0 {
		return 0
	}
	return e.positions[e.positionKey()]
}

// repeated returns the highest occurrence count in the applied part of the
// game once any position has reached repetitionLimit.
func (e *Engine) repeated() (int, bool) {
	best := 0
	for _, n := range e.positions {
		best = max(best, n)
	}
	return best, best >= repetitionLimit
}

// IsRepetitionMove reports whether some position of the applied part of the
// game has occurred four times (sennichite). It stays true after further
// moves until the repeating moves are undone.
func (e *Engine) IsRepetitionMove() bool {
	n, ok := e.repeated()
	if ok {
		e.logger.Info("repetition", zap.Int("count", n), zap.Int("ply", e.logIndex+1))
	}
	return ok
}

func (e *Engine) isRepeated() bool {
	_, ok := e.repeated()
	return ok
}

// IsTryKing reports whether the side that just moved has its king on the
// opponent king's starting square.
func (e *Engine) IsTryKing() bool {
	side := e.mover()
	sq := trySquares[side]
	c := e.board.cell(sq)
	return c.Owner == side && c.Piece.IsKing()
}

type Outcome int

const (
	InProgress Outcome = iota
	BlackWin
	WhiteWin
	Draw
)

func (o Outcome) String() string {
	switch o {
	case BlackWin:
		return "sente_win"
	case WhiteWin:
		return "gote_win"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

func winFor(side Side) Outcome {
	if side == White {
		return WhiteWin
	}
	return BlackWin
}

// Reason strings match the KIF terminal markers.
const (
	ReasonCheckmate  = "詰み"
	ReasonRepetition = "千日手"
	ReasonTry        = "入玉勝ち"
)

// Result evaluates the current position: checkmate (as established by
// IsGameEnd), fourfold repetition and, when tryRule is set, a king on the
// try square.
func (e *Engine) Result(tryRule bool) (Outcome, string) {
	switch {
	case e.mated:
		return winFor(e.mover()), ReasonCheckmate
	case e.isRepeated():
		return Draw, ReasonRepetition
	case tryRule && e.logIndex >= 0 && e.IsTryKing():
		return winFor(e.mover()), ReasonTry
	}
	return InProgress, ""
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(turn=%s ply=%d)", e.turn, e.logIndex+1)
}
