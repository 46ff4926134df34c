package syogi_test

import (
	"testing"

	"syogi/pkg/syogi"
)

func cornerKings() []placed {
	return []placed{
		{1, 9, syogi.Gyoku, syogi.Black},
		{9, 1, syogi.Ou, syogi.White},
	}
}

func TestSelectHandCounts(t *testing.T) {
	tests := []struct {
		name  string
		extra []placed
		hand  syogi.PieceKind
		side  syogi.Side
		turn  syogi.Side
		held  int
		want  int
	}{
		{"gold anywhere empty", nil, syogi.Kin, syogi.Black, syogi.Black, 1, 79},
		{"pawn skips last rank", nil, syogi.Fu, syogi.Black, syogi.Black, 1, 71},
		{"lance skips last rank", nil, syogi.Kyo, syogi.Black, syogi.Black, 1, 71},
		{"knight skips last two ranks", nil, syogi.Kei, syogi.Black, syogi.Black, 1, 62},
		{"white pawn skips its last rank", nil, syogi.Fu, syogi.White, syogi.White, 1, 71},
		{"two pawns on a file", []placed{{4, 6, syogi.Fu, syogi.Black}}, syogi.Fu, syogi.Black, syogi.Black, 1, 63},
		{"tokin does not count as a pawn", []placed{{4, 6, syogi.To, syogi.Black}}, syogi.Fu, syogi.Black, syogi.Black, 1, 70},
		{"opponent pawn does not block", []placed{{4, 6, syogi.Fu, syogi.White}}, syogi.Fu, syogi.Black, syogi.Black, 1, 70},
		{"empty hand", nil, syogi.Kin, syogi.Black, syogi.Black, 0, 0},
		{"not your turn", nil, syogi.Kin, syogi.White, syogi.Black, 1, 0},
		{"king is never in hand", nil, syogi.Gyoku, syogi.Black, syogi.Black, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boardWith(append(cornerKings(), tt.extra...)...)
			b.SetHand(tt.side, tt.hand, tt.held)
			e := syogi.NewEngine()
			e.LoadPosition(b, tt.turn)
			if got := e.SelectHand(tt.hand, tt.side); got != tt.want {
				t.Fatalf("SelectHand = %d, want %d", got, tt.want)
			}
		})
	}
}

// matePosition has White's king boxed in on 1a; a piece dropped on 1b is
// protected by the gold on 1c.
func matePosition() *syogi.Board {
	b := boardWith(
		placed{1, 1, syogi.Ou, syogi.White},
		placed{2, 1, syogi.Kyo, syogi.White},
		placed{2, 2, syogi.Fu, syogi.White},
		placed{1, 3, syogi.Kin, syogi.Black},
		placed{9, 9, syogi.Gyoku, syogi.Black},
	)
	b.SetHand(syogi.Black, syogi.Fu, 1)
	b.SetHand(syogi.Black, syogi.Kin, 1)
	return b
}

func TestDropPawnMateIsIllegal(t *testing.T) {
	e := syogi.NewEngine()
	e.LoadPosition(matePosition(), syogi.Black)
	if n := e.SelectHand(syogi.Fu, syogi.Black); n == 0 {
		t.Fatal("pawn should have drop squares")
	}
	if e.CellAt(0, 1).Hint {
		t.Fatal("pawn drop on 1b would mate and must not be hinted")
	}
	if _, err := e.PlayUSI("P*1b"); err == nil {
		t.Fatal("P*1b should be rejected")
	}
	if e.Board().Hand(syogi.Black, syogi.Fu) != 1 {
		t.Fatal("rejected drop consumed the pawn")
	}
}

func TestDropPawnCheckIsLegal(t *testing.T) {
	b := matePosition()
	b.Put(0, 2, syogi.None, syogi.NoSide)
	e := syogi.NewEngine()
	e.LoadPosition(b, syogi.Black)
	e.SelectHand(syogi.Fu, syogi.Black)
	if !e.CellAt(0, 1).Hint {
		t.Fatal("unprotected pawn check on 1b is legal")
	}
	ended, err := e.PlayUSI("P*1b")
	if err != nil {
		t.Fatalf("P*1b: %v", err)
	}
	if ended {
		t.Fatal("king can take the pawn")
	}
	if !e.InCheck(syogi.White) {
		t.Fatal("white should be in check")
	}
}

func TestGoldDropMates(t *testing.T) {
	e := syogi.NewEngine()
	e.LoadPosition(matePosition(), syogi.Black)
	before := e.Board()
	e.SelectHand(syogi.Kin, syogi.Black)
	if !e.CellAt(0, 1).Hint {
		t.Fatal("gold drop on 1b is legal")
	}
	if err := e.Move(0, 1, false); err != nil {
		t.Fatalf("drop: %v", err)
	}
	afterDrop := e.Board()
	if !e.IsGameEnd() {
		t.Fatal("G*1b is checkmate")
	}
	if e.CurrentTurn() != syogi.Black {
		t.Fatal("turn must stay with the winner")
	}
	if !e.Board().Equal(afterDrop) {
		t.Fatal("checkmate search changed the position")
	}
	outcome, reason := e.Result(false)
	if outcome != syogi.BlackWin || reason != syogi.ReasonCheckmate {
		t.Fatalf("result = %s %s", outcome, reason)
	}
	if !e.Undo() || !e.Board().Equal(before) {
		t.Fatal("undo did not restore the position before the drop")
	}
	if outcome, _ := e.Result(false); outcome != syogi.InProgress {
		t.Fatalf("result after undo = %s", outcome)
	}
}

func TestDropCannotLeaveKingInCheck(t *testing.T) {
	b := boardWith(
		placed{5, 9, syogi.Gyoku, syogi.Black},
		placed{5, 1, syogi.Hisya, syogi.White},
		placed{9, 1, syogi.Ou, syogi.White},
	)
	b.SetHand(syogi.Black, syogi.Kin, 1)
	e := syogi.NewEngine()
	e.LoadPosition(b, syogi.Black)
	if !e.InCheck(syogi.Black) {
		t.Fatal("black should be in check from the rook")
	}
	// Only the seven squares between rook and king block the check.
	if n := e.SelectHand(syogi.Kin, syogi.Black); n != 7 {
		t.Fatalf("interposing drops = %d, want 7", n)
	}
}

func TestParseHandKind(t *testing.T) {
	for text, want := range map[string]syogi.PieceKind{
		"P": syogi.Fu, "p": syogi.Fu, "歩": syogi.Fu, "R": syogi.Hisya, "飛": syogi.Hisya, "N": syogi.Kei,
	} {
		if got, err := syogi.ParseHandKind(text); err != nil || got != want {
			t.Fatalf("ParseHandKind(%q) = %s, %v", text, got, err)
		}
	}
	for _, bad := range []string{"K", "と", "", "PP"} {
		if _, err := syogi.ParseHandKind(bad); err == nil {
			t.Fatalf("ParseHandKind(%q) accepted", bad)
		}
	}
}
