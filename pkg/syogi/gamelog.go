package syogi

import "fmt"

// Origin is where a moving piece comes from: a board square or a hand.
type Origin struct {
	hand   bool
	Square Square
	Side   Side
}

func OnBoard(x, y int) Origin {
	return Origin{Square: Square{x, y}}
}

// FromHand is the origin of a drop by side.
func FromHand(side Side) Origin {
	return Origin{hand: true, Side: side}
}

func (o Origin) IsHand() bool {
	return o.hand
}

func (o Origin) String() string {
	if o.hand {
		return "hand(" + o.Side.String() + ")"
	}
	return o.Square.String()
}

// GameLog records one move with enough detail to undo it exactly.
type GameLog struct {
	From          Origin
	Piece         PieceKind
	Mover         Side
	To            Square
	Captured      PieceKind
	CapturedOwner Side
	Promote       bool
}

func (l GameLog) String() string {
	s := fmt.Sprintf("%s %s->%s", l.Piece, l.From, l.To)
	if l.Promote {
		s += "+"
	}
	return s
}

// landed is the kind standing on To after the move.
func (l GameLog) landed() PieceKind {
	if l.Promote {
		return l.Piece.Promoted()
	}
	return l.Piece
}

func (l GameLog) captures() bool {
	return l.Captured != None && l.CapturedOwner != l.Mover
}

func (b *Board) newLog(from Origin, piece PieceKind, mover Side, to Square) GameLog {
	dest := b.cell(to)
	return GameLog{
		From:          from,
		Piece:         piece,
		Mover:         mover,
		To:            to,
		Captured:      dest.Piece,
		CapturedOwner: dest.Owner,
	}
}

// Apply performs l on b.
func (b *Board) Apply(l GameLog) {
	if l.From.IsHand() {
		b.hands[l.Mover][l.Piece]--
	} else {
		b.put(l.From.Square, None, NoSide)
	}
	if l.captures() {
		b.hands[l.Mover][l.Captured.Base()]++
	}
	b.put(l.To, l.landed(), l.Mover)
}

// Reverse undoes Apply(l); the two are exact inverses.
func (b *Board) Reverse(l GameLog) {
	b.put(l.To, l.Captured, l.CapturedOwner)
	if l.captures() {
		b.hands[l.Mover][l.Captured.Base()]--
	}
	if l.From.IsHand() {
		b.hands[l.Mover][l.Piece]++
	} else {
		b.put(l.From.Square, l.Piece, l.Mover)
	}
}
