// Package service contains the business logic layer.
//
// Handlers parse HTTP and call into here; services validate, enforce
// ownership, and orchestrate; repositories do the SQL. Services accept
// interfaces from internal/repository, so tests inject in-memory fakes and
// never touch a database.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
	"github.com/sakif/completionist/internal/repository"
)

// Field length limits, mirroring the database's comfortable sizes.
const (
	MaxTitleLength = 100
	MaxFieldLength = 100 // platform, genre, run type
	MaxTagsLength  = 255
)

// GameService handles play-through CRUD and progress aggregation.
type GameService struct {
	games  repository.GameRepository
	logger *slog.Logger
}

// NewGameService creates a GameService.
func NewGameService(games repository.GameRepository, logger *slog.Logger) *GameService {
	return &GameService{games: games, logger: logger}
}

// CreateGameInput is the validated payload for creating a game. Every field
// except Title is optional; empty strings mean "not set". Declaring the
// shape up front (rather than pulling loose keys out of a JSON map) is what
// makes a missing title a deterministic validation error instead of a blank
// row.
type CreateGameInput struct {
	Title        string
	Platform     string
	Genre        string
	RunType      string
	Tags         string
	CoverURL     string
	ThumbnailURL string
}

// UpdateGameInput is the partial-update payload. nil = leave unchanged;
// a non-nil empty string clears the field (Title excepted — it can never
// become empty).
type UpdateGameInput struct {
	Title        *string
	Platform     *string
	Genre        *string
	RunType      *string
	Tags         *string
	CoverURL     *string
	ThumbnailURL *string
}

// Create validates and saves a new game for the given user.
func (s *GameService) Create(ctx context.Context, userID int64, in CreateGameInput) (*model.Game, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "game title is required")
	}
	if err := checkFieldLengths(title, in.Platform, in.Genre, in.RunType, in.Tags); err != nil {
		return nil, err
	}

	game := &model.Game{
		UserID:       userID,
		Title:        title,
		Platform:     strings.TrimSpace(in.Platform),
		Genre:        strings.TrimSpace(in.Genre),
		RunType:      strings.TrimSpace(in.RunType),
		Tags:         strings.TrimSpace(in.Tags),
		CoverURL:     strings.TrimSpace(in.CoverURL),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
	}

	if err := s.games.CreateGame(ctx, game); err != nil {
		s.logger.Error("failed to create game",
			slog.Int64("userID", userID),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating game: %w", err)
	}

	s.logger.Info("game created",
		slog.Int64("id", game.ID),
		slog.Int64("userID", userID),
		slog.String("title", game.Title),
	)
	return game, nil
}

// Get returns one game, enforcing ownership: a game that exists but belongs
// to someone else is Forbidden, not NotFound.
func (s *GameService) Get(ctx context.Context, userID, gameID int64) (*model.Game, error) {
	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, apperror.Forbidden("game belongs to another user")
	}
	return game, nil
}

// List returns the user's games, newest first, each with computed progress.
func (s *GameService) List(ctx context.Context, userID int64) ([]model.GameWithProgress, error) {
	games, err := s.games.ListGamesByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list games",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing games: %w", err)
	}

	result := make([]model.GameWithProgress, 0, len(games))
	for _, g := range games {
		total, completed, err := s.games.ItemCounts(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("counting checklist items: %w", err)
		}
		result = append(result, model.GameWithProgress{
			Game:     g,
			Progress: buildProgress(g.ID, total, completed),
		})
	}
	return result, nil
}

// Update applies a partial update to a game the user owns.
func (s *GameService) Update(ctx context.Context, userID, gameID int64, in UpdateGameInput) (*model.Game, error) {
	game, err := s.Get(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "game title cannot be empty")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("game title must be %d characters or less", MaxTitleLength))
		}
		game.Title = title
	}
	applyString(&game.Platform, in.Platform)
	applyString(&game.Genre, in.Genre)
	applyString(&game.RunType, in.RunType)
	applyString(&game.Tags, in.Tags)
	applyString(&game.CoverURL, in.CoverURL)
	applyString(&game.ThumbnailURL, in.ThumbnailURL)

	if err := checkFieldLengths(game.Title, game.Platform, game.Genre, game.RunType, game.Tags); err != nil {
		return nil, err
	}

	if err := s.games.UpdateGame(ctx, game); err != nil {
		s.logger.Error("failed to update game",
			slog.Int64("id", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating game: %w", err)
	}

	s.logger.Info("game updated", slog.Int64("id", game.ID))
	return game, nil
}

// Delete removes a game the user owns; its checklist cascades away with it.
func (s *GameService) Delete(ctx context.Context, userID, gameID int64) error {
	if _, err := s.Get(ctx, userID, gameID); err != nil {
		return err
	}
	if err := s.games.DeleteGame(ctx, gameID); err != nil {
		return err
	}

	s.logger.Info("game deleted",
		slog.Int64("id", gameID),
		slog.Int64("userID", userID),
	)
	return nil
}

// Progress computes completion statistics for a game's checklist.
//
// The existence (and ownership) check comes FIRST: a missing game is
// NotFound, while a game with an empty checklist is a perfectly valid
// zero-progress result. Inferring "missing" from a zero count would conflate
// the two.
//
// Read-only — safe to call concurrently and repeatedly.
func (s *GameService) Progress(ctx context.Context, userID, gameID int64) (*model.Progress, error) {
	if _, err := s.Get(ctx, userID, gameID); err != nil {
		return nil, err
	}

	total, completed, err := s.games.ItemCounts(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("counting checklist items: %w", err)
	}

	p := buildProgress(gameID, total, completed)
	return &p, nil
}

// buildProgress derives the percentage from raw counts.
//
// The zero guard prevents a divide fault on empty checklists. Rounding is
// half-to-even (banker's rounding) via math.RoundToEven: 1 of 3 → 33,
// 1 of 8 (12.5) → 12. Documented and pinned by tests — callers depend on
// the exact rule.
func buildProgress(gameID int64, total, completed int) model.Progress {
	percent := 0
	if total > 0 {
		percent = int(math.RoundToEven(float64(completed) / float64(total) * 100))
	}
	return model.Progress{
		GameID:    gameID,
		Total:     total,
		Completed: completed,
		Percent:   percent,
	}
}

// applyString copies a provided (non-nil) field, trimming whitespace.
func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// checkFieldLengths validates the shared length limits on descriptive fields.
func checkFieldLengths(title, platform, genre, runType, tags string) error {
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("game title must be %d characters or less", MaxTitleLength))
	}
	// Checked in declaration order so the reported field is stable when
	// more than one exceeds the limit.
	fields := []struct {
		name  string
		value string
	}{
		{"platform", platform},
		{"genre", genre},
		{"runType", runType},
	}
	for _, f := range fields {
		if len(f.value) > MaxFieldLength {
			return apperror.ValidationFailed(f.name,
				fmt.Sprintf("%s must be %d characters or less", f.name, MaxFieldLength))
		}
	}
	if len(tags) > MaxTagsLength {
		return apperror.ValidationFailed("tags",
			fmt.Sprintf("tags must be %d characters or less", MaxTagsLength))
	}
	return nil
}
