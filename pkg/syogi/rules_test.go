package syogi_test

import (
	"testing"

	"syogi/pkg/syogi"
)

var rookShuffle = []string{"2h3h", "8b7b", "3h2h", "7b8b"}

func TestRepetitionOnFourthOccurrence(t *testing.T) {
	e := syogi.NewEngine()
	for ply := 1; ply <= 13; ply++ {
		move := rookShuffle[(ply-1)%len(rookShuffle)]
		if _, err := e.PlayUSI(move); err != nil {
			t.Fatalf("ply %d %s: %v", ply, move, err)
		}
		// The position after the first move recurs at plies 5, 9 and 13.
		want := ply == 13
		if got := e.IsRepetitionMove(); got != want {
			t.Fatalf("ply %d: IsRepetitionMove = %v, count %d", ply, got, e.RepetitionCount())
		}
	}
	if outcome, reason := e.Result(false); outcome != syogi.Draw || reason != syogi.ReasonRepetition {
		t.Fatalf("result = %s %s", outcome, reason)
	}
	e.Undo()
	if e.IsRepetitionMove() {
		t.Fatal("undo should take the repetition back")
	}
	if got := e.RepetitionCount(); got != 3 {
		t.Fatalf("start position count after 12 plies = %d, want 3", got)
	}
	e.Redo()
	if !e.IsRepetitionMove() {
		t.Fatal("redo should restore the repetition")
	}
}

func TestRepetitionSurvivesLaterMoves(t *testing.T) {
	e := syogi.NewEngine()
	for ply := 1; ply <= 13; ply++ {
		if _, err := e.PlayUSI(rookShuffle[(ply-1)%len(rookShuffle)]); err != nil {
			t.Fatalf("ply %d: %v", ply, err)
		}
	}
	if _, err := e.PlayUSI("9c9d"); err != nil {
		t.Fatalf("9c9d: %v", err)
	}
	if got := e.RepetitionCount(); got != 1 {
		t.Fatalf("new position count = %d, want 1", got)
	}
	if !e.IsRepetitionMove() {
		t.Fatal("a fourfold position earlier in the game must still count")
	}
	if outcome, reason := e.Result(false); outcome != syogi.Draw || reason != syogi.ReasonRepetition {
		t.Fatalf("result = %s %s", outcome, reason)
	}
	e.Undo()
	e.Undo()
	if e.IsRepetitionMove() {
		t.Fatal("undoing the fourth occurrence clears the repetition")
	}
}

func TestStartPositionIsNotCounted(t *testing.T) {
	e := syogi.NewEngine()
	if got := e.RepetitionCount(); got != 0 {
		t.Fatalf("count before any move = %d", got)
	}
	playAll(t, e, rookShuffle)
	if got := e.RepetitionCount(); got != 1 {
		t.Fatalf("start position reached again: count = %d, want 1", got)
	}
}

func tryPosition() *syogi.Engine {
	return engineWith(syogi.Black,
		placed{5, 2, syogi.Gyoku, syogi.Black},
		placed{9, 9, syogi.Ou, syogi.White},
	)
}

func TestTryKing(t *testing.T) {
	e := tryPosition()
	if e.IsTryKing() {
		t.Fatal("king on 5b has not reached the try square")
	}
	if _, err := e.PlayUSI("5b5a"); err != nil {
		t.Fatalf("5b5a: %v", err)
	}
	if !e.IsTryKing() {
		t.Fatal("black king on 5a should count as a try")
	}
	if outcome, reason := e.Result(true); outcome != syogi.BlackWin || reason != syogi.ReasonTry {
		t.Fatalf("result with try rule = %s %s", outcome, reason)
	}
	if outcome, _ := e.Result(false); outcome != syogi.InProgress {
		t.Fatalf("result without try rule = %s", outcome)
	}
}

func TestTryKingWhite(t *testing.T) {
	e := engineWith(syogi.White,
		placed{5, 8, syogi.Ou, syogi.White},
		placed{1, 1, syogi.Gyoku, syogi.Black},
	)
	if _, err := e.PlayUSI("5h5i"); err != nil {
		t.Fatalf("5h5i: %v", err)
	}
	if !e.IsTryKing() {
		t.Fatal("white king on 5i should count as a try")
	}
	if outcome, _ := e.Result(true); outcome != syogi.WhiteWin {
		t.Fatalf("result = %s, want gote_win", outcome)
	}
}

func TestOutcomeStrings(t *testing.T) {
	tests := map[syogi.Outcome]string{
		syogi.BlackWin:   "sente_win",
		syogi.WhiteWin:   "gote_win",
		syogi.Draw:       "draw",
		syogi.InProgress: "unknown",
	}
	for outcome, want := range tests {
		if got := outcome.String(); got != want {
			t.Fatalf("%d.String() = %s, want %s", outcome, got, want)
		}
	}
}
