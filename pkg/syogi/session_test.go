package syogi_test

import (
	"errors"
	"sync"
	"testing"

	"syogi/pkg/syogi"
)

func TestManagerLifecycle(t *testing.T) {
	m := syogi.NewManager(nil)
	a, err := m.NewGame(syogi.Hirate, syogi.White)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	b, err := m.NewGame(syogi.HisyaOchi, syogi.White)
	if err != nil {
		t.Fatalf("new handicap game: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("game ids must be unique")
	}
	want := syogi.NewEngine()
	if err := want.SetHandicap(syogi.White, syogi.HisyaOchi); err != nil {
		t.Fatalf("handicap: %v", err)
	}
	if b.Engine().CurrentTurn() != syogi.White || !b.Engine().Board().Equal(want.Board()) {
		t.Fatal("handicap game did not start from the handicap layout")
	}

	got, err := m.Get(a.ID)
	if err != nil || got != a {
		t.Fatalf("get: %v", err)
	}
	if list := m.List(); len(list) != 2 {
		t.Fatalf("list = %d sessions", len(list))
	}

	// Games are independent.
	if _, err := a.Engine().PlayUSI("7g7f"); err != nil {
		t.Fatalf("7g7f: %v", err)
	}
	if b.Engine().Ply() != 0 {
		t.Fatal("a move in one game leaked into another")
	}

	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(a.ID); !errors.Is(err, syogi.ErrGameNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
	if err := m.Delete(a.ID); !errors.Is(err, syogi.ErrGameNotFound) {
		t.Fatalf("second delete = %v", err)
	}
	if err := m.Touch("missing"); !errors.Is(err, syogi.ErrGameNotFound) {
		t.Fatalf("touch missing = %v", err)
	}
}

func TestManagerRejectsBadHandicap(t *testing.T) {
	m := syogi.NewManager(nil)
	if _, err := m.NewGame(syogi.Handicap(99), syogi.White); !errors.Is(err, syogi.ErrInvalidHandicap) {
		t.Fatalf("new game = %v", err)
	}
	if len(m.List()) != 0 {
		t.Fatal("failed game was registered")
	}
}

func TestSessionDoSerialisesAccess(t *testing.T) {
	m := syogi.NewManager(nil)
	s, err := m.NewGame(syogi.Hirate, syogi.White)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(e *syogi.Engine) error {
				e.SelectAndHint(6, 6)
				e.Cancel()
				return nil
			})
		}()
	}
	wg.Wait()
	err = s.Do(func(e *syogi.Engine) error {
		_, err := e.PlayUSI("7g7f")
		return err
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		t.Fatal("UpdatedAt should move forward")
	}
}
