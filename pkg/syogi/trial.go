package syogi

// tryMove applies entry, evaluates fn on the resulting position and always
// restores the board and log before returning fn's result.
func (e *Engine) tryMove(entry GameLog, fn func() bool) bool {
	e.log = append(e.log, entry)
	e.board.Apply(entry)
	defer func() {
		e.board.Reverse(entry)
		e.log = e.log[:len(e.log)-1]
	}()
	return fn()
}

// eachLegalMove calls yield for every square the piece on from may move to
// without leaving side's king in check. It stops when yield returns false.
func (e *Engine) eachLegalMove(from Square, side Side, yield func(Square) bool) {
	kind := e.board.cell(from).Piece
	for _, to := range e.board.attacksFrom(from, side) {
		entry := e.board.newLog(OnBoard(from.X, from.Y), kind, side, to)
		legal := e.tryMove(entry, func() bool {
			return !e.board.sideInCheck(side)
		})
		if legal && !yield(to) {
			return
		}
	}
}

// dropRanks returns the inclusive y range where side may drop kind.
func dropRanks(kind PieceKind, side Side) (int, int) {
	skip := 0
	switch kind {
	case Fu, Kyo:
		skip = 1
	case Kei:
		skip = 2
	}
	if side == White {
		return 0, boardSize - 1 - skip
	}
	return skip, boardSize - 1
}

// eachLegalDrop calls yield for every square where side may drop kind from
// hand. Pawns skip files holding side's unpromoted pawn and squares where
// the drop would checkmate.
func (e *Engine) eachLegalDrop(kind PieceKind, side Side, yield func(Square) bool) {
	if e.board.Hand(side, kind) == 0 {
		return
	}
	minY, maxY := dropRanks(kind, side)
	for x := 0; x < boardSize; x++ {
		if kind == Fu && e.board.hasUnpromotedPawn(side, x) {
			continue
		}
		for y := minY; y <= maxY; y++ {
			to := Square{x, y}
			if !e.board.cell(to).Empty() {
				continue
			}
			entry := e.board.newLog(FromHand(side), kind, side, to)
			legal := e.tryMove(entry, func() bool {
				if e.board.sideInCheck(side) {
					return false
				}
				return kind != Fu || !e.givesMate(side)
			})
			if legal && !yield(to) {
				return
			}
		}
	}
}

// givesMate reports whether the position after attacker's last move is mate:
// the opponent's king exists, is in check and has no legal reply.
func (e *Engine) givesMate(attacker Side) bool {
	if !e.board.sideInCheck(attacker.Opponent()) {
		return false
	}
	return e.isCheckmate(attacker)
}

// isCheckmate reports whether attacker's opponent has no legal move or drop.
// This also treats stalemate as a loss for the side without moves.
func (e *Engine) isCheckmate(attacker Side) bool {
	return !e.hasLegalResponse(attacker.Opponent())
}

func (e *Engine) hasLegalResponse(side Side) bool {
	found := false
	stop := func(Square) bool {
		found = true
		return false
	}
	for x := 0; x < boardSize && !found; x++ {
		for y := 0; y < boardSize && !found; y++ {
			if e.board.cells[x][y].Owner != side {
				continue
			}
			e.eachLegalMove(Square{x, y}, side, stop)
		}
	}
	for _, kind := range HandKinds {
		if found {
			break
		}
		e.eachLegalDrop(kind, side, stop)
	}
	return found
}

func (e *Engine) markHints(yield func(func(Square) bool)) int {
	n := 0
	yield(func(to Square) bool {
		e.board.cells[to.X][to.Y].Hint = true
		n++
		return true
	})
	return n
}
