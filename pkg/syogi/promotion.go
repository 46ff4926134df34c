package syogi

import "fmt"

// inZone reports whether y lies in the three far ranks of side.
func inZone(side Side, y int) bool {
	if side == White {
		return y >= boardSize-3
	}
	return y <= 2
}

// farRanks reports whether y is within the n farthest ranks of side.
func farRanks(side Side, y, n int) bool {
	if side == White {
		return y >= boardSize-n
	}
	return y < n
}

// promotable reports whether the move in l may promote: a promotable piece
// moving on the board with either end in the mover's zone.
func (l GameLog) promotable() bool {
	if l.From.IsHand() || !l.Piece.CanPromote() {
		return false
	}
	return inZone(l.Mover, l.From.Square.Y) || inZone(l.Mover, l.To.Y)
}

// compulsory reports whether the move in l must promote. Rook, bishop and
// pawn always promote when eligible; a lance promotes on the last rank and a
// knight on the last two, where they would have no move left.
func (l GameLog) compulsory() bool {
	if !l.promotable() {
		return false
	}
	switch l.Piece {
	case Hisya, Kaku, Fu:
		return true
	case Kyo:
		return farRanks(l.Mover, l.To.Y, 1)
	case Kei:
		return farRanks(l.Mover, l.To.Y, 2)
	default:
		return false
	}
}

func (e *Engine) lastMove() (GameLog, bool) {
	if e.logIndex < 0 {
		return GameLog{}, false
	}
	return e.log[e.logIndex], true
}

// IsEvolution reports whether the piece that just moved to (x, y) may still
// promote. Use Promote to accept.
func (e *Engine) IsEvolution(x, y int) bool {
	last, ok := e.lastMove()
	if !ok || last.To != (Square{x, y}) {
		return false
	}
	return !last.Promote && last.promotable()
}

// IsCompulsionEvolution reports whether the last move had to promote, and
// promotes it if it has not been already.
func (e *Engine) IsCompulsionEvolution() bool {
	last, ok := e.lastMove()
	if !ok || !last.compulsory() {
		return false
	}
	if !last.Promote {
		e.promoteLast()
	}
	return true
}

// Promote promotes the piece moved by the last move after the fact.
func (e *Engine) Promote() error {
	last, ok := e.lastMove()
	if !ok {
		return fmt.Errorf("promote: %w", ErrNoMove)
	}
	if last.Promote || !last.promotable() {
		return fmt.Errorf("promote %s: %w", last, ErrNotPromotable)
	}
	e.promoteLast()
	return nil
}

func (e *Engine) promoteLast() {
	e.countPosition(-1)
	entry := &e.log[e.logIndex]
	entry.Promote = true
	e.board.put(entry.To, entry.landed(), entry.Mover)
	e.countPosition(1)
}
