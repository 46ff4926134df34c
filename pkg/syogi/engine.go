package syogi

import (
	"fmt"

	"go.uber.org/zap"
)

type selection struct {
	from  Origin
	piece PieceKind
}

// Engine owns one game: the board, whose turn it is, the move log with its
// cursor and the repetition table. It is not safe for concurrent use; give
// each game its own Engine.
//
// A turn is played as: SelectAndHint (or SelectHand), Move, then IsGameEnd,
// which hands the turn to the opponent unless the game is over.
type Engine struct {
	board     *Board
	turn      Side
	log       []GameLog
	logIndex  int
	positions map[string]int
	selected  *selection
	mated     bool
	handicap  Handicap
	start     *Board
	startTurn Side
	logger    *zap.Logger
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset returns to the even-game start position with Black to move.
func (e *Engine) Reset() {
	e.handicap = Hirate
	e.restart(NewBoard(), Black)
}

func (e *Engine) restart(board *Board, turn Side) {
	board.ResetHint()
	e.board = board
	e.turn = turn
	e.start = board.Clone()
	e.startTurn = turn
	e.log = nil
	e.logIndex = -1
	e.positions = make(map[string]int)
	e.selected = nil
	e.mated = false
}

// SetHandicap starts a new game from the even layout with h's pieces removed
// from side. The handicapped side moves first.
func (e *Engine) SetHandicap(side Side, h Handicap) error {
	if !h.valid() {
		return fmt.Errorf("set handicap: %w", ErrInvalidHandicap)
	}
	if side != Black && side != White {
		return fmt.Errorf("set handicap: invalid side %v", side)
	}
	board := NewBoard()
	board.applyHandicap(side, h)
	turn := Black
	if h != Hirate {
		turn = side
	}
	e.handicap = h
	e.restart(board, turn)
	e.logger.Debug("handicap set", zap.Stringer("handicap", h), zap.Stringer("side", side))
	return nil
}

// LoadBoard replaces the grid with layout, clears hands and history and
// gives Black the move.
func (e *Engine) LoadBoard(layout [boardSize][boardSize]Cell) {
	board := &Board{}
	for x := range layout {
		for y := range layout[x] {
			c := layout[x][y]
			board.put(Square{x, y}, c.Piece, c.Owner)
		}
	}
	e.handicap = Hirate
	e.restart(board, Black)
}

// LoadPosition starts from a copy of board with turn to move.
func (e *Engine) LoadPosition(board *Board, turn Side) {
	e.handicap = Hirate
	e.restart(board.Clone(), turn)
}

// LoadSFEN starts from the position described by sfen.
func (e *Engine) LoadSFEN(sfen string) error {
	board, turn, err := ParseSFEN(sfen)
	if err != nil {
		return err
	}
	e.handicap = Hirate
	e.restart(board, turn)
	return nil
}

// SetTurn overrides the side to move, for setting up positions.
func (e *Engine) SetTurn(side Side) {
	if side == Black || side == White {
		e.turn = side
	}
}

func (e *Engine) CellAt(x, y int) Cell {
	return e.board.CellAt(x, y)
}

func (e *Engine) HandOf(side Side) []HandEntry {
	return e.board.HandOf(side)
}

func (e *Engine) CurrentTurn() Side {
	return e.turn
}

// Board returns a copy of the current position.
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

func (e *Engine) Handicap() Handicap {
	return e.handicap
}

// SFEN serialises the current position with the next ply number.
func (e *Engine) SFEN() string {
	return e.board.SFEN(e.turn, e.logIndex+2)
}

// SelectAndHint selects the piece on (x, y) and marks its legal destinations.
// It returns the number of hinted squares; an invalid selection clears all
// hints and returns 0.
func (e *Engine) SelectAndHint(x, y int) int {
	e.board.ResetHint()
	e.selected = nil
	from := Square{x, y}
	if !from.Valid() {
		e.logger.Debug("selection off board", zap.Int("x", x), zap.Int("y", y))
		return 0
	}
	c := e.board.cell(from)
	if c.Empty() || c.Owner != e.turn {
		e.logger.Debug("selection rejected",
			zap.Int("x", x), zap.Int("y", y),
			zap.Stringer("turn", e.turn), zap.Stringer("owner", c.Owner))
		return 0
	}
	e.selected = &selection{from: OnBoard(x, y), piece: c.Piece}
	return e.markHints(func(yield func(Square) bool) {
		e.eachLegalMove(from, e.turn, yield)
	})
}

// SelectHand selects a held piece of side and marks the squares it may be
// dropped on. It returns the number of hinted squares.
func (e *Engine) SelectHand(kind PieceKind, side Side) int {
	e.board.ResetHint()
	e.selected = nil
	if side != e.turn || !kind.isHandKind() || e.board.Hand(side, kind) == 0 {
		e.logger.Debug("hand selection rejected",
			zap.Stringer("kind", kind), zap.Stringer("side", side), zap.Stringer("turn", e.turn))
		return 0
	}
	e.selected = &selection{from: FromHand(side), piece: kind}
	return e.markHints(func(yield func(Square) bool) {
		e.eachLegalDrop(kind, side, yield)
	})
}

// Cancel drops the current selection and its hints.
func (e *Engine) Cancel() {
	e.selected = nil
	e.board.ResetHint()
}

// Move commits the selected piece to (x, y), which must be hinted. With
// promote set the piece promotes when eligible; compulsory promotions happen
// regardless. The turn is handed over by IsGameEnd.
func (e *Engine) Move(x, y int, promote bool) error {
	sel := e.selected
	if sel == nil {
		return ErrNoSelection
	}
	to := Square{x, y}
	if !to.Valid() || !e.board.cell(to).Hint {
		e.logger.Debug("move rejected", zap.Int("x", x), zap.Int("y", y), zap.Stringer("turn", e.turn))
		return fmt.Errorf("%w: %s to %s", ErrIllegalMove, sel.from, to)
	}
	entry := e.board.newLog(sel.from, sel.piece, e.turn, to)
	if promote && !entry.promotable() {
		return fmt.Errorf("%w: %s", ErrNotPromotable, entry)
	}
	entry.Promote = promote || entry.compulsory()

	e.Cancel()
	e.log = append(e.log[:e.logIndex+1], entry)
	e.logIndex = len(e.log) - 1
	e.board.Apply(entry)
	e.mated = false
	e.countPosition(1)
	e.logger.Debug("move",
		zap.Int("ply", e.logIndex+1),
		zap.Stringer("turn", e.turn),
		zap.String("move", entry.String()))
	return nil
}

// IsGameEnd reports whether the side that just moved has checkmated its
// opponent. Otherwise the turn passes to the opponent.
func (e *Engine) IsGameEnd() bool {
	if e.isCheckmate(e.turn) {
		e.mated = true
		e.logger.Info("checkmate", zap.Stringer("winner", e.turn), zap.Int("ply", e.logIndex+1))
		return true
	}
	e.turn = e.turn.Opponent()
	return false
}

// InCheck reports whether side's king is attacked in the current position.
func (e *Engine) InCheck(side Side) bool {
	return e.board.sideInCheck(side)
}

// mover is the side that made the move at the cursor, or the side to move
// when no move has been made yet.
func (e *Engine) mover() Side {
	if e.logIndex >= 0 {
		return e.log[e.logIndex].Mover
	}
	return e.turn
}

// Ply is the number of applied moves.
func (e *Engine) Ply() int {
	return e.logIndex + 1
}

// Moves returns the applied part of the move log.
func (e *Engine) Moves() []GameLog {
	out := make([]GameLog, e.logIndex+1)
	copy(out, e.log[:e.logIndex+1])
	return out
}
