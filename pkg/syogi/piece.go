package syogi

import (
	"fmt"
	"strings"
)

// Side identifies a player. Black moves first and walks toward y=0.
type Side int8

const (
	NoSide Side = iota
	Black
	White
)

func (s Side) Opponent() Side {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return NoSide
	}
}

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "none"
	}
}

// sign flips Black-oriented movement tables for White.
func (s Side) sign() int {
	if s == White {
		return -1
	}
	return 1
}

type PieceKind int8

const (
	None PieceKind = iota
	Ou
	Gyoku
	Hisya
	Kaku
	Kin
	Gin
	Kei
	Kyo
	Fu
	Ryu
	Uma
	NariGin
	NariKei
	NariKyo
	To
	kindCount
)

// Step is a board offset in Black's orientation.
type Step struct {
	X int
	Y int
}

type pieceDef struct {
	name     string
	usi      string
	rays     [][]Step
	promoted PieceKind
	base     PieceKind
}

var (
	stepForward       = Step{0, -1}
	stepBackward      = Step{0, 1}
	stepLeft          = Step{-1, 0}
	stepRight         = Step{1, 0}
	stepForwardLeft   = Step{-1, -1}
	stepForwardRight  = Step{1, -1}
	stepBackwardLeft  = Step{-1, 1}
	stepBackwardRight = Step{1, 1}

	orthogonal = []Step{stepForward, stepBackward, stepLeft, stepRight}
	diagonal   = []Step{stepForwardLeft, stepForwardRight, stepBackwardLeft, stepBackwardRight}
)

func single(steps ...Step) [][]Step {
	rays := make([][]Step, 0, len(steps))
	for _, s := range steps {
		rays = append(rays, []Step{s})
	}
	return rays
}

func slide(dirs ...Step) [][]Step {
	rays := make([][]Step, 0, len(dirs))
	for _, d := range dirs {
		ray := make([]Step, 0, 8)
		for k := 1; k <= 8; k++ {
			ray = append(ray, Step{d.X * k, d.Y * k})
		}
		rays = append(rays, ray)
	}
	return rays
}

func join(groups ...[][]Step) [][]Step {
	var rays [][]Step
	for _, g := range groups {
		rays = append(rays, g...)
	}
	return rays
}

var (
	kingRays = single(stepForward, stepBackward, stepLeft, stepRight,
		stepForwardLeft, stepForwardRight, stepBackwardLeft, stepBackwardRight)
	goldRays = single(stepForward, stepForwardLeft, stepForwardRight,
		stepLeft, stepRight, stepBackward)
	silverRays = single(stepForward, stepForwardLeft, stepForwardRight,
		stepBackwardLeft, stepBackwardRight)
)

var pieceDefs = [kindCount]pieceDef{
	None:    {name: "・"},
	Ou:      {name: "王", usi: "K", rays: kingRays, base: Ou},
	Gyoku:   {name: "玉", usi: "K", rays: kingRays, base: Gyoku},
	Hisya:   {name: "飛", usi: "R", rays: slide(orthogonal...), promoted: Ryu, base: Hisya},
	Kaku:    {name: "角", usi: "B", rays: slide(diagonal...), promoted: Uma, base: Kaku},
	Kin:     {name: "金", usi: "G", rays: goldRays, base: Kin},
	Gin:     {name: "銀", usi: "S", rays: silverRays, promoted: NariGin, base: Gin},
	Kei:     {name: "桂", usi: "N", rays: single(Step{-1, -2}, Step{1, -2}), promoted: NariKei, base: Kei},
	Kyo:     {name: "香", usi: "L", rays: slide(stepForward), promoted: NariKyo, base: Kyo},
	Fu:      {name: "歩", usi: "P", rays: single(stepForward), promoted: To, base: Fu},
	Ryu:     {name: "龍", usi: "+R", rays: join(slide(orthogonal...), single(diagonal...)), base: Hisya},
	Uma:     {name: "馬", usi: "+B", rays: join(slide(diagonal...), single(orthogonal...)), base: Kaku},
	NariGin: {name: "全", usi: "+S", rays: goldRays, base: Gin},
	NariKei: {name: "圭", usi: "+N", rays: goldRays, base: Kei},
	NariKyo: {name: "杏", usi: "+L", rays: goldRays, base: Kyo},
	To:      {name: "と", usi: "+P", rays: goldRays, base: Fu},
}

// HandKinds lists the kinds that can be held, in display order.
var HandKinds = []PieceKind{Hisya, Kaku, Kin, Gin, Kei, Kyo, Fu}

func (k PieceKind) valid() bool {
	return k > None && k < kindCount
}

func (k PieceKind) String() string {
	if k < None || k >= kindCount {
		return "?"
	}
	return pieceDefs[k].name
}

// Rays returns the movement table of k in Black's orientation.
func (k PieceKind) Rays() [][]Step {
	if !k.valid() {
		return nil
	}
	return pieceDefs[k].rays
}

func (k PieceKind) CanPromote() bool {
	return k.valid() && pieceDefs[k].promoted != None
}

// Promoted returns the promoted form of k, or k itself when it cannot promote.
func (k PieceKind) Promoted() PieceKind {
	if !k.CanPromote() {
		return k
	}
	return pieceDefs[k].promoted
}

// Base returns the kind a captured piece reverts to in hand.
func (k PieceKind) Base() PieceKind {
	if !k.valid() {
		return None
	}
	return pieceDefs[k].base
}

func (k PieceKind) IsPromoted() bool {
	return k.valid() && pieceDefs[k].base != k
}

func (k PieceKind) IsKing() bool {
	return k == Ou || k == Gyoku
}

func (k PieceKind) isHandKind() bool {
	for _, h := range HandKinds {
		if h == k {
			return true
		}
	}
	return false
}

// stepsTo reports whether k reaches the offset s in one move, as the first
// square of any ray.
func (k PieceKind) stepsTo(s Step) bool {
	for _, ray := range k.Rays() {
		if ray[0] == s {
			return true
		}
	}
	return false
}

// slidesTo reports whether k has a sliding ray whose unit step is s.
func (k PieceKind) slidesTo(s Step) bool {
	for _, ray := range k.Rays() {
		if len(ray) > 1 && ray[0] == s {
			return true
		}
	}
	return false
}

func (k PieceKind) MovesForward() bool  { return k.stepsTo(stepForward) }
func (k PieceKind) MovesBackward() bool { return k.stepsTo(stepBackward) }
func (k PieceKind) MovesSideways() bool { return k.stepsTo(stepLeft) && k.stepsTo(stepRight) }

func (k PieceKind) MovesDiagonalForward() bool {
	return k.stepsTo(stepForwardLeft) && k.stepsTo(stepForwardRight)
}

func (k PieceKind) MovesDiagonalBackward() bool {
	return k.stepsTo(stepBackwardLeft) && k.stepsTo(stepBackwardRight)
}

func (k PieceKind) SlidesOrthogonal() bool { return k.slidesTo(stepLeft) && k.slidesTo(stepForward) }
func (k PieceKind) SlidesDiagonal() bool   { return k.slidesTo(stepForwardLeft) }

// usiLetter returns the SFEN letter of k for side, e.g. "+p" for a White To.
func (k PieceKind) usiLetter(side Side) string {
	text := pieceDefs[k].usi
	if side == White {
		return strings.ToLower(text)
	}
	return text
}

// kindFromLetter maps an upper-case SFEN letter to its unpromoted kind.
// Kings map to Gyoku for Black and Ou for White, matching the even layout.
func kindFromLetter(r rune, side Side) (PieceKind, bool) {
	switch r {
	case 'P':
		return Fu, true
	case 'L':
		return Kyo, true
	case 'N':
		return Kei, true
	case 'S':
		return Gin, true
	case 'G':
		return Kin, true
	case 'B':
		return Kaku, true
	case 'R':
		return Hisya, true
	case 'K':
		if side == White {
			return Ou, true
		}
		return Gyoku, true
	default:
		return None, false
	}
}

// ParseHandKind reads a droppable kind from its USI letter ("P", "r") or its
// kanji ("歩").
func ParseHandKind(text string) (PieceKind, error) {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) == 1 && runes[0] < 0x80 {
		if kind, ok := kindFromLetter([]rune(strings.ToUpper(text))[0], Black); ok && kind.isHandKind() {
			return kind, nil
		}
	}
	if kind, n, ok := matchKIFPiece(runes); ok && n == len(runes) && kind.isHandKind() {
		return kind, nil
	}
	return None, fmt.Errorf("%w: cannot drop %q", ErrIllegalMove, text)
}
