package syogi

import "fmt"

const boardSize = 9

// Square addresses a cell with 0-based coordinates. The KIF square is
// (file X+1, rank Y+1).
type Square struct {
	X int
	Y int
}

func (s Square) Valid() bool {
	return s.X >= 0 && s.X < boardSize && s.Y >= 0 && s.Y < boardSize
}

func (s Square) add(d Step) Square {
	return Square{X: s.X + d.X, Y: s.Y + d.Y}
}

func (s Square) String() string {
	return fmt.Sprintf("%d%d", s.X+1, s.Y+1)
}

type Cell struct {
	Piece PieceKind
	Owner Side
	Hint  bool
}

func (c Cell) Empty() bool {
	return c.Piece == None
}

type HandEntry struct {
	Kind  PieceKind
	Count int
}

// Board is a 9x9 grid indexed [x][y] plus the pieces each side holds.
// The zero value is an empty board.
type Board struct {
	cells [boardSize][boardSize]Cell
	hands [3][kindCount]int
}

var backRank = [boardSize]PieceKind{Kyo, Kei, Gin, Kin, Gyoku, Kin, Gin, Kei, Kyo}

// NewBoard returns the even-game start position.
func NewBoard() *Board {
	b := &Board{}
	for x := 0; x < boardSize; x++ {
		b.put(Square{x, 8}, backRank[x], Black)
		b.put(Square{x, 6}, Fu, Black)
		b.put(Square{8 - x, 0}, backRank[x], White)
		b.put(Square{8 - x, 2}, Fu, White)
	}
	b.cells[4][0].Piece = Ou
	b.put(Square{1, 7}, Hisya, Black)
	b.put(Square{7, 7}, Kaku, Black)
	b.put(Square{7, 1}, Hisya, White)
	b.put(Square{1, 1}, Kaku, White)
	return b
}

func (b *Board) CellAt(x, y int) Cell {
	sq := Square{x, y}
	if !sq.Valid() {
		return Cell{}
	}
	return b.cells[x][y]
}

func (b *Board) cell(sq Square) Cell {
	return b.cells[sq.X][sq.Y]
}

// Put places a piece for side on (x, y); None clears the square.
func (b *Board) Put(x, y int, kind PieceKind, side Side) {
	sq := Square{x, y}
	if !sq.Valid() {
		return
	}
	b.put(sq, kind, side)
}

func (b *Board) put(sq Square, kind PieceKind, side Side) {
	if kind == None {
		side = NoSide
	}
	b.cells[sq.X][sq.Y].Piece = kind
	b.cells[sq.X][sq.Y].Owner = side
}

func (b *Board) Hand(side Side, kind PieceKind) int {
	if side != Black && side != White || !kind.valid() {
		return 0
	}
	return b.hands[side][kind]
}

// SetHand sets how many pieces of kind side holds.
func (b *Board) SetHand(side Side, kind PieceKind, count int) {
	if side != Black && side != White || !kind.isHandKind() || count < 0 {
		return
	}
	b.hands[side][kind] = count
}

// HandOf lists side's hand in display order, zero counts included.
func (b *Board) HandOf(side Side) []HandEntry {
	out := make([]HandEntry, 0, len(HandKinds))
	for _, kind := range HandKinds {
		out = append(out, HandEntry{Kind: kind, Count: b.Hand(side, kind)})
	}
	return out
}

// Hands lists both sides' hands.
func (b *Board) Hands() map[Side][]HandEntry {
	return map[Side][]HandEntry{Black: b.HandOf(Black), White: b.HandOf(White)}
}

func (b *Board) ResetHint() {
	for x := range b.cells {
		for y := range b.cells[x] {
			b.cells[x][y].Hint = false
		}
	}
}

func (b *Board) HintCount() int {
	n := 0
	for x := range b.cells {
		for y := range b.cells[x] {
			if b.cells[x][y].Hint {
				n++
			}
		}
	}
	return n
}

// FindKing returns the square of side's king.
func (b *Board) FindKing(side Side) (Square, bool) {
	for x := range b.cells {
		for y := range b.cells[x] {
			c := b.cells[x][y]
			if c.Owner == side && c.Piece.IsKing() {
				return Square{x, y}, true
			}
		}
	}
	return Square{}, false
}

func (b *Board) hasUnpromotedPawn(side Side, x int) bool {
	for y := 0; y < boardSize; y++ {
		c := b.cells[x][y]
		if c.Owner == side && c.Piece == Fu {
			return true
		}
	}
	return false
}

func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

func (b *Board) Equal(other *Board) bool {
	return *b == *other
}

// PieceCount totals pieces on the board and in both hands by base kind.
// Kings are counted as Gyoku.
func (b *Board) PieceCount() map[PieceKind]int {
	counts := make(map[PieceKind]int)
	for x := range b.cells {
		for y := range b.cells[x] {
			c := b.cells[x][y]
			if c.Empty() {
				continue
			}
			kind := c.Piece.Base()
			if kind.IsKing() {
				kind = Gyoku
			}
			counts[kind]++
		}
	}
	for _, side := range []Side{Black, White} {
		for _, kind := range HandKinds {
			if n := b.hands[side][kind]; n > 0 {
				counts[kind] += n
			}
		}
	}
	return counts
}
