package syogi_test

import (
	"errors"
	"testing"

	"syogi/pkg/syogi"
)

func engineWith(turn syogi.Side, pieces ...placed) *syogi.Engine {
	e := syogi.NewEngine()
	e.LoadPosition(boardWith(pieces...), turn)
	return e
}

func TestNewEngineStartsEven(t *testing.T) {
	e := syogi.NewEngine()
	if e.CurrentTurn() != syogi.Black {
		t.Fatalf("turn = %s, want black", e.CurrentTurn())
	}
	if got := e.SFEN(); got != syogi.StandardSFEN {
		t.Fatalf("sfen = %s, want %s", got, syogi.StandardSFEN)
	}
	counts := e.Board().PieceCount()
	want := map[syogi.PieceKind]int{
		syogi.Gyoku: 2, syogi.Hisya: 2, syogi.Kaku: 2, syogi.Kin: 4,
		syogi.Gin: 4, syogi.Kei: 4, syogi.Kyo: 4, syogi.Fu: 18,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Fatalf("%s count = %d, want %d", kind, counts[kind], n)
		}
	}
}

func newEven() *syogi.Engine { return syogi.NewEngine() }

func TestSelectAndHintCounts(t *testing.T) {
	tests := []struct {
		name   string
		engine func() *syogi.Engine
		file   int
		rank   int
		want   int
	}{
		{"opening pawn", newEven, 7, 7, 1},
		{"opening rook", newEven, 2, 8, 6},
		{"opening bishop is boxed in", newEven, 8, 8, 0},
		{"opening king", newEven, 5, 9, 3},
		{"white piece on black's turn", newEven, 3, 3, 0},
		{"empty square", newEven, 5, 5, 0},
		{"off board", newEven, 10, 1, 0},
		{"lone king in the centre", func() *syogi.Engine {
			return engineWith(syogi.Black,
				placed{5, 5, syogi.Gyoku, syogi.Black}, placed{1, 1, syogi.Ou, syogi.White})
		}, 5, 5, 8},
		{"king in the corner", func() *syogi.Engine {
			return engineWith(syogi.Black,
				placed{9, 9, syogi.Gyoku, syogi.Black}, placed{1, 1, syogi.Ou, syogi.White})
		}, 9, 9, 3},
		{"king ringed by own pieces", func() *syogi.Engine {
			pieces := []placed{{5, 5, syogi.Gyoku, syogi.Black}, {1, 1, syogi.Ou, syogi.White}}
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if dx != 0 || dy != 0 {
						pieces = append(pieces, placed{5 + dx, 5 + dy, syogi.Kin, syogi.Black})
					}
				}
			}
			return engineWith(syogi.Black, pieces...)
		}, 5, 5, 0},
		{"every king step attacked", func() *syogi.Engine {
			return engineWith(syogi.Black,
				placed{1, 9, syogi.Gyoku, syogi.Black},
				placed{2, 7, syogi.Ryu, syogi.White},
				placed{9, 1, syogi.Ou, syogi.White})
		}, 1, 9, 0},
		{"pinned silver", func() *syogi.Engine {
			return engineWith(syogi.Black,
				placed{5, 9, syogi.Gyoku, syogi.Black},
				placed{5, 8, syogi.Gin, syogi.Black},
				placed{5, 1, syogi.Hisya, syogi.White},
				placed{9, 1, syogi.Ou, syogi.White})
		}, 5, 8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.engine()
			got := e.SelectAndHint(tt.file-1, tt.rank-1)
			if got != tt.want {
				t.Fatalf("SelectAndHint = %d, want %d", got, tt.want)
			}
			if hinted := e.Board().HintCount(); hinted != got {
				t.Fatalf("hinted squares = %d, returned %d", hinted, got)
			}
		})
	}
}

func TestSelectionReplacesHints(t *testing.T) {
	e := syogi.NewEngine()
	if n := e.SelectAndHint(1, 7); n != 6 {
		t.Fatalf("rook hints = %d, want 6", n)
	}
	if n := e.SelectAndHint(6, 6); n != 1 {
		t.Fatalf("pawn hints = %d, want 1", n)
	}
	if got := e.Board().HintCount(); got != 1 {
		t.Fatalf("hints after reselect = %d, want 1", got)
	}
	if !e.CellAt(6, 5).Hint {
		t.Fatal("7f should be hinted for the 7g pawn")
	}
	e.Cancel()
	if got := e.Board().HintCount(); got != 0 {
		t.Fatalf("hints after cancel = %d, want 0", got)
	}
}

func TestHintingLeavesPositionUnchanged(t *testing.T) {
	e := syogi.NewEngine()
	if _, err := e.PlayUSI("7g7f"); err != nil {
		t.Fatalf("7g7f: %v", err)
	}
	before := e.Board()
	ply := e.Ply()
	for x := 0; x < 9; x++ {
		for y := 0; y < 9; y++ {
			e.SelectAndHint(x, y)
		}
	}
	e.Cancel()
	if !e.Board().Equal(before) {
		t.Fatal("selecting pieces changed the position")
	}
	if e.Ply() != ply {
		t.Fatalf("ply = %d, want %d", e.Ply(), ply)
	}
}

func TestMoveErrors(t *testing.T) {
	e := syogi.NewEngine()
	if err := e.Move(6, 5, false); !errors.Is(err, syogi.ErrNoSelection) {
		t.Fatalf("move without selection: %v", err)
	}
	e.SelectAndHint(6, 6)
	selected := e.Board()
	if err := e.Move(6, 4, false); !errors.Is(err, syogi.ErrIllegalMove) {
		t.Fatalf("two-square pawn move: %v", err)
	}
	if e.Ply() != 0 {
		t.Fatalf("rejected move was recorded")
	}
	if err := e.Move(6, 5, true); !errors.Is(err, syogi.ErrNotPromotable) {
		t.Fatalf("promoting outside the zone: %v", err)
	}
	if !e.Board().Equal(selected) {
		t.Fatal("rejected promotion changed the board")
	}
	if err := e.Move(6, 5, false); err != nil {
		t.Fatalf("7g7f: %v", err)
	}
	if e.CellAt(6, 5).Piece != syogi.Fu || e.CellAt(6, 6).Piece != syogi.None {
		t.Fatal("pawn did not move to 7f")
	}
}

func TestIsGameEndPassesTurn(t *testing.T) {
	e := syogi.NewEngine()
	e.SelectAndHint(6, 6)
	if err := e.Move(6, 5, false); err != nil {
		t.Fatalf("move: %v", err)
	}
	if e.CurrentTurn() != syogi.Black {
		t.Fatal("Move must not hand over the turn")
	}
	if e.IsGameEnd() {
		t.Fatal("7g7f does not end the game")
	}
	if e.CurrentTurn() != syogi.White {
		t.Fatalf("turn = %s, want white", e.CurrentTurn())
	}
	if n := e.SelectAndHint(6, 6); n != 0 {
		t.Fatalf("black piece selectable on white's turn: %d", n)
	}
}

func TestCaptureGoesToHand(t *testing.T) {
	e := syogi.NewEngine()
	for _, move := range []string{"7g7f", "3c3d", "8h2b+"} {
		if _, err := e.PlayUSI(move); err != nil {
			t.Fatalf("%s: %v", move, err)
		}
	}
	if got := e.Board().Hand(syogi.Black, syogi.Kaku); got != 1 {
		t.Fatalf("black bishops in hand = %d, want 1", got)
	}
	if c := e.CellAt(1, 1); c.Piece != syogi.Uma || c.Owner != syogi.Black {
		t.Fatalf("2b = %+v, want black horse", c)
	}
	if _, err := e.PlayUSI("3a2b"); err != nil {
		t.Fatalf("3a2b: %v", err)
	}
	if got := e.Board().Hand(syogi.White, syogi.Kaku); got != 1 {
		t.Fatalf("captured horse should enter hand as a bishop, got %d", got)
	}
	counts := e.Board().PieceCount()
	if counts[syogi.Kaku] != 2 || counts[syogi.Fu] != 18 {
		t.Fatalf("piece counts drifted: %v", counts)
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	pieces := []placed{
		{5, 1, syogi.Ou, syogi.White},
		{6, 2, syogi.Kin, syogi.White},
		{5, 5, syogi.Hisya, syogi.Black},
		{9, 9, syogi.Gyoku, syogi.Black},
	}
	single := engineWith(syogi.White, pieces...)
	// 5b and 5c both block the rook.
	if n := single.SelectAndHint(5, 1); n != 2 {
		t.Fatalf("gold blocks = %d, want 2", n)
	}

	double := engineWith(syogi.White, append(pieces, placed{1, 5, syogi.Kaku, syogi.Black})...)
	if !double.InCheck(syogi.White) {
		t.Fatal("white should be in check")
	}
	if n := double.SelectAndHint(5, 1); n != 0 {
		t.Fatalf("a block cannot answer double check, hints = %d", n)
	}
	if n := double.SelectAndHint(4, 0); n != 2 {
		t.Fatalf("king escapes = %d, want 2", n)
	}
}

func TestHandsListsBothSides(t *testing.T) {
	e := syogi.NewEngine()
	playAll(t, e, []string{"7g7f", "3c3d", "8h2b+"})
	hands := e.Board().Hands()
	if len(hands[syogi.Black]) != len(syogi.HandKinds) || len(hands[syogi.White]) != len(syogi.HandKinds) {
		t.Fatalf("hands = %v", hands)
	}
	for _, h := range hands[syogi.Black] {
		want := 0
		if h.Kind == syogi.Kaku {
			want = 1
		}
		if h.Count != want {
			t.Fatalf("black %s = %d, want %d", h.Kind, h.Count, want)
		}
	}
}
