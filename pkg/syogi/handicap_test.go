package syogi_test

import (
	"errors"
	"testing"

	"syogi/pkg/syogi"
)

func TestSetHandicapRemovesPieces(t *testing.T) {
	tests := []struct {
		h       syogi.Handicap
		removed int
	}{
		{syogi.Hirate, 0},
		{syogi.KyoOchi, 1},
		{syogi.KakuOchi, 1},
		{syogi.HisyaOchi, 1},
		{syogi.HiKyoOchi, 2},
		{syogi.NimaiOchi, 2},
		{syogi.YonmaiOchi, 4},
		{syogi.RokumaiOchi, 6},
		{syogi.HachimaiOchi, 8},
		{syogi.JumaiOchi, 10},
	}
	for _, tt := range tests {
		for _, side := range []syogi.Side{syogi.Black, syogi.White} {
			e := syogi.NewEngine()
			if err := e.SetHandicap(side, tt.h); err != nil {
				t.Fatalf("%s: %v", tt.h, err)
			}
			n := 0
			for x := 0; x < 9; x++ {
				for y := 0; y < 9; y++ {
					if e.CellAt(x, y).Owner == side {
						n++
					}
				}
			}
			if n != 20-tt.removed {
				t.Fatalf("%s for %s: %d pieces left, want %d", tt.h, side, n, 20-tt.removed)
			}
			wantTurn := syogi.Black
			if tt.h != syogi.Hirate {
				wantTurn = side
			}
			if e.CurrentTurn() != wantTurn {
				t.Fatalf("%s for %s: turn = %s", tt.h, side, e.CurrentTurn())
			}
		}
	}
}

func TestSetHandicapMirrorsForBlack(t *testing.T) {
	e := syogi.NewEngine()
	if err := e.SetHandicap(syogi.Black, syogi.KyoOchi); err != nil {
		t.Fatalf("handicap: %v", err)
	}
	// White loses the lance on 1a; Black loses the one on 9i.
	if !e.CellAt(8, 8).Empty() || e.CellAt(0, 8).Piece != syogi.Kyo {
		t.Fatal("black's lance handicap removed the wrong lance")
	}
}

func TestSetHandicapInvalid(t *testing.T) {
	e := syogi.NewEngine()
	if err := e.SetHandicap(syogi.White, syogi.Handicap(-1)); !errors.Is(err, syogi.ErrInvalidHandicap) {
		t.Fatalf("SetHandicap = %v", err)
	}
}

func TestParseHandicap(t *testing.T) {
	for _, name := range []string{"kaku", "KAKU", "角落ち"} {
		h, err := syogi.ParseHandicap(name)
		if err != nil || h != syogi.KakuOchi {
			t.Fatalf("ParseHandicap(%q) = %s, %v", name, h, err)
		}
	}
	if h, err := syogi.ParseHandicap(""); err != nil || h != syogi.Hirate {
		t.Fatalf("empty name = %s, %v", h, err)
	}
	if _, err := syogi.ParseHandicap("queen"); err == nil {
		t.Fatal("unknown handicap accepted")
	}
}

func TestLoadBoardResetsGame(t *testing.T) {
	e := syogi.NewEngine()
	playAll(t, e, []string{"7g7f"})
	var layout [9][9]syogi.Cell
	layout[4][8] = syogi.Cell{Piece: syogi.Gyoku, Owner: syogi.Black}
	layout[4][0] = syogi.Cell{Piece: syogi.Ou, Owner: syogi.White}
	layout[4][4] = syogi.Cell{Piece: syogi.Kin, Owner: syogi.White, Hint: true}
	e.LoadBoard(layout)
	if e.CurrentTurn() != syogi.Black || e.Ply() != 0 || e.CanRedo() {
		t.Fatal("LoadBoard should reset turn and history")
	}
	if e.CellAt(4, 4).Piece != syogi.Kin || e.CellAt(4, 4).Hint {
		t.Fatal("layout not loaded cleanly")
	}
	if got := e.SFEN(); got != "4k4/9/9/9/4g4/9/9/9/4K4 b - 1" {
		t.Fatalf("sfen = %s", got)
	}
}
