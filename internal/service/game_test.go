package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
)

func newGameService(repo *fakeGameRepo) *GameService {
	return NewGameService(repo, discardLogger())
}

func createTestGame(t *testing.T, svc *GameService, userID int64, title string) *model.Game {
	t.Helper()
	game, err := svc.Create(context.Background(), userID, CreateGameInput{Title: title})
	if err != nil {
		t.Fatalf("Create(%q) error: %v", title, err)
	}
	return game
}

func TestGameCreate(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	game, err := svc.Create(context.Background(), 1, CreateGameInput{
		Title:    "  Hollow Knight  ",
		Platform: "Switch",
		RunType:  "100%",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if game.ID == 0 {
		t.Error("expected a generated ID")
	}
	if game.Title != "Hollow Knight" {
		t.Errorf("Title = %q, want trimmed %q", game.Title, "Hollow Knight")
	}
	if game.UserID != 1 {
		t.Errorf("UserID = %d, want 1", game.UserID)
	}
}

func TestGameCreateValidation(t *testing.T) {
	svc := newGameService(newFakeGameRepo())

	tests := []struct {
		name  string
		input CreateGameInput
	}{
		{"empty title", CreateGameInput{Title: ""}},
		{"whitespace title", CreateGameInput{Title: "   "}},
		{"title too long", CreateGameInput{Title: strings.Repeat("a", MaxTitleLength+1)}},
		{"platform too long", CreateGameInput{Title: "ok", Platform: strings.Repeat("a", MaxFieldLength+1)}},
		{"tags too long", CreateGameInput{Title: "ok", Tags: strings.Repeat("a", MaxTagsLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGameCreateValidationReportsFirstBadField(t *testing.T) {
	svc := newGameService(newFakeGameRepo())
	long := strings.Repeat("a", MaxFieldLength+1)

	// With several oversized fields, the reported one must be stable
	// across runs: platform is checked before genre and runType.
	for i := 0; i < 10; i++ {
		_, err := svc.Create(context.Background(), 1, CreateGameInput{
			Title:    "ok",
			Platform: long,
			Genre:    long,
			RunType:  long,
		})
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("Create error = %v, want *apperror.AppError", err)
		}
		if appErr.Field != "platform" {
			t.Fatalf("Field = %q, want %q", appErr.Field, "platform")
		}
	}
}

func TestGameGetOwnership(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	game := createTestGame(t, svc, 1, "Celeste")

	if _, err := svc.Get(context.Background(), 1, game.ID); err != nil {
		t.Errorf("owner Get error: %v", err)
	}
	if _, err := svc.Get(context.Background(), 2, game.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("other user Get error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(context.Background(), 1, 999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing Get error = %v, want ErrNotFound", err)
	}
}

func TestGameUpdatePartial(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	game := createTestGame(t, svc, 1, "Dark Souls")

	newPlatform := "PS5"
	updated, err := svc.Update(context.Background(), 1, game.ID, UpdateGameInput{Platform: &newPlatform})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != "Dark Souls" {
		t.Errorf("Title changed to %q, want untouched", updated.Title)
	}
	if updated.Platform != "PS5" {
		t.Errorf("Platform = %q, want PS5", updated.Platform)
	}

	empty := ""
	if _, err := svc.Update(context.Background(), 1, game.ID, UpdateGameInput{Title: &empty}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty title Update error = %v, want ErrValidation", err)
	}

	// Clearing a descriptive field with an explicit empty string is allowed.
	cleared, err := svc.Update(context.Background(), 1, game.ID, UpdateGameInput{Platform: &empty})
	if err != nil {
		t.Fatalf("clearing Update error: %v", err)
	}
	if cleared.Platform != "" {
		t.Errorf("Platform = %q, want cleared", cleared.Platform)
	}
}

func TestGameUpdateForbidden(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	game := createTestGame(t, svc, 1, "Hades")

	title := "stolen"
	if _, err := svc.Update(context.Background(), 2, game.ID, UpdateGameInput{Title: &title}); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update error = %v, want ErrForbidden", err)
	}
}

func TestGameDelete(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	game := createTestGame(t, svc, 1, "Undertale")

	if err := svc.Delete(context.Background(), 2, game.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("other user Delete error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), 1, game.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.Get(context.Background(), 1, game.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
}

func TestGameProgressPercentages(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		completed   int
		wantPercent int
	}{
		{"empty checklist", 0, 0, 0},
		{"nothing done", 4, 0, 0},
		{"all done", 4, 4, 100},
		{"half", 4, 2, 50},
		{"one third rounds to 33", 3, 1, 33},
		{"two thirds rounds to 67", 3, 2, 67},
		{"12.5 rounds down to even 12", 8, 1, 12},
		{"37.5 rounds up to even 38", 8, 3, 38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeGameRepo()
			svc := newGameService(repo)
			game := createTestGame(t, svc, 1, "Elden Ring")
			repo.setCounts(game.ID, tt.total, tt.completed)

			p, err := svc.Progress(context.Background(), 1, game.ID)
			if err != nil {
				t.Fatalf("Progress error: %v", err)
			}
			if p.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", p.Percent, tt.wantPercent)
			}
			if p.Total != tt.total || p.Completed != tt.completed {
				t.Errorf("counts = (%d, %d), want (%d, %d)", p.Total, p.Completed, tt.total, tt.completed)
			}
		})
	}
}

func TestGameProgressMissingGame(t *testing.T) {
	svc := newGameService(newFakeGameRepo())

	// A missing game must be NotFound, not a zero-progress result.
	if _, err := svc.Progress(context.Background(), 1, 42); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Progress error = %v, want ErrNotFound", err)
	}
}

func TestGameListWithProgress(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	first := createTestGame(t, svc, 1, "First")
	second := createTestGame(t, svc, 1, "Second")
	createTestGame(t, svc, 2, "Someone else's")

	repo.setCounts(first.ID, 2, 1)
	repo.setCounts(second.ID, 0, 0)

	list, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	for _, g := range list {
		switch g.ID {
		case first.ID:
			if g.Progress.Percent != 50 {
				t.Errorf("first game Percent = %d, want 50", g.Progress.Percent)
			}
		case second.ID:
			if g.Progress.Percent != 0 {
				t.Errorf("second game Percent = %d, want 0", g.Progress.Percent)
			}
		default:
			t.Errorf("unexpected game %d in list", g.ID)
		}
	}
}
