package syogi

// attacksFrom lists the squares the piece on from reaches when owned by side:
// each ray is walked until it leaves the board, meets an own piece (stop
// before) or meets an opposing piece (stop on it).
func (b *Board) attacksFrom(from Square, side Side) []Square {
	kind := b.cell(from).Piece
	sign := side.sign()
	var out []Square
	for _, ray := range kind.Rays() {
		for _, step := range ray {
			to := from.add(Step{step.X * sign, step.Y * sign})
			if !to.Valid() {
				break
			}
			c := b.cell(to)
			if c.Owner == side {
				break
			}
			out = append(out, to)
			if !c.Empty() {
				break
			}
		}
	}
	return out
}

var kingRayDirs = []Step{
	stepForward, stepBackward, stepLeft, stepRight,
	stepForwardLeft, stepForwardRight, stepBackwardLeft, stepBackwardRight,
}

// IsInCheck reports whether the king of kingSide on king is attacked. It walks
// the eight rays outward from the king and tests the first piece met on each,
// then the two knight squares.
func (b *Board) IsInCheck(king Square, kingSide Side) bool {
	for _, dir := range kingRayDirs {
		for dist := 1; dist < boardSize; dist++ {
			sq := Square{king.X + dir.X*dist, king.Y + dir.Y*dist}
			if !sq.Valid() {
				break
			}
			c := b.cell(sq)
			if c.Empty() {
				continue
			}
			if c.Owner == kingSide {
				break
			}
			// The attacker moves by -dir; express it in the attacker's table.
			sign := c.Owner.sign()
			toward := Step{-dir.X * sign, -dir.Y * sign}
			if dist == 1 && c.Piece.stepsTo(toward) {
				return true
			}
			if c.Piece.slidesTo(toward) {
				return true
			}
			break
		}
	}
	forward := -kingSide.sign()
	for _, dx := range []int{-1, 1} {
		sq := Square{king.X + dx, king.Y + 2*forward}
		if !sq.Valid() {
			continue
		}
		c := b.cell(sq)
		if c.Piece == Kei && c.Owner == kingSide.Opponent() {
			return true
		}
	}
	return false
}

// sideInCheck reports whether side's king is attacked. A side without a king
// is never in check.
func (b *Board) sideInCheck(side Side) bool {
	king, ok := b.FindKing(side)
	if !ok {
		return false
	}
	return b.IsInCheck(king, side)
}
