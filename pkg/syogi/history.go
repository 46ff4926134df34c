package syogi

import "go.uber.org/zap"

// Undo takes back the move at the cursor. It returns false at the start of
// the game. The undone move stays available to Redo until a new move is made.
func (e *Engine) Undo() bool {
	if e.logIndex < 0 {
		return false
	}
	e.Cancel()
	entry := e.log[e.logIndex]
	e.countPosition(-1)
	e.board.Reverse(entry)
	e.logIndex--
	e.turn = entry.Mover
	e.mated = false
	e.logger.Debug("undo", zap.Int("ply", e.logIndex+1))
	return true
}

// Redo replays the move after the cursor. It returns false at the end of the
// log.
func (e *Engine) Redo() bool {
	if e.logIndex+1 >= len(e.log) {
		return false
	}
	e.Cancel()
	e.logIndex++
	entry := e.log[e.logIndex]
	e.board.Apply(entry)
	e.countPosition(1)
	e.turn = entry.Mover.Opponent()
	e.logger.Debug("redo", zap.Int("ply", e.logIndex+1))
	return true
}

// ToStart undoes every applied move and returns how many were undone.
func (e *Engine) ToStart() int {
	n := 0
	for e.Undo() {
		n++
	}
	return n
}

// ToEnd redoes every undone move and returns how many were redone.
func (e *Engine) ToEnd() int {
	n := 0
	for e.Redo() {
		n++
	}
	return n
}

// CanUndo reports whether there is a move to take back.
func (e *Engine) CanUndo() bool {
	return e.logIndex >= 0
}

// CanRedo reports whether there is an undone move to replay.
func (e *Engine) CanRedo() bool {
	return e.logIndex+1 < len(e.log)
}
