package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
	"github.com/sakif/completionist/internal/repository"
)

// ChecklistService handles checklist items within a user's games.
//
// ORDERING POLICY:
// An item created without an explicit order stores no order at all (NULL),
// and sorts after every ordered item. An explicit order is accepted as-is —
// no read-before-write uniqueness check; the database's unique index on
// (game, order) is the single serialization point, and the loser of a
// concurrent race gets a Conflict. Orders are display hints: values need not
// be contiguous or start anywhere in particular.
type ChecklistService struct {
	items  repository.ChecklistRepository
	games  repository.GameRepository
	logger *slog.Logger
}

// NewChecklistService creates a ChecklistService. It needs the game
// repository as well, to resolve items back to their owning user.
func NewChecklistService(
	items repository.ChecklistRepository,
	games repository.GameRepository,
	logger *slog.Logger,
) *ChecklistService {
	return &ChecklistService{items: items, games: games, logger: logger}
}

// AddItemInput is the payload for creating a checklist item.
type AddItemInput struct {
	Description string
	Order       *int // nil = no order
}

// UpdateItemInput is the partial-update payload for an item.
//
// Order needs three states — "leave alone", "clear", and "set to n" — which
// a bare *int can't express. SetOrder says whether the order field was
// provided at all; when it is, a nil Order clears the value. The handler
// derives SetOrder from JSON key presence, so `"order": null` and an absent
// key behave differently, deliberately.
type UpdateItemInput struct {
	Description *string
	Completed   *bool
	SetOrder    bool
	Order       *int
}

// List returns a game's checklist in display order.
func (s *ChecklistService) List(ctx context.Context, userID, gameID int64) ([]model.ChecklistItem, error) {
	if err := s.checkGameOwner(ctx, userID, gameID); err != nil {
		return nil, err
	}

	items, err := s.items.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing checklist: %w", err)
	}
	if items == nil {
		items = []model.ChecklistItem{}
	}
	return items, nil
}

// Add creates an item under a game the user owns. A duplicate explicit
// order surfaces as Conflict straight from the repository.
func (s *ChecklistService) Add(ctx context.Context, userID, gameID int64, in AddItemInput) (*model.ChecklistItem, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "item description is required")
	}

	if err := s.checkGameOwner(ctx, userID, gameID); err != nil {
		return nil, err
	}

	item := &model.ChecklistItem{
		GameID:      gameID,
		Description: description,
		Completed:   false,
		Order:       in.Order,
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("checklist item added",
		slog.Int64("id", item.ID),
		slog.Int64("gameID", gameID),
	)
	return item, nil
}

// Update applies a partial update to an item the user owns.
func (s *ChecklistService) Update(ctx context.Context, userID, itemID int64, in UpdateItemInput) (*model.ChecklistItem, error) {
	item, err := s.getOwnedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, apperror.ValidationFailed("description", "item description cannot be empty")
		}
		item.Description = description
	}
	if in.Completed != nil {
		item.Completed = *in.Completed
	}
	if in.SetOrder {
		item.Order = in.Order
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("checklist item updated", slog.Int64("id", item.ID))
	return item, nil
}

// Delete removes an item the user owns.
func (s *ChecklistService) Delete(ctx context.Context, userID, itemID int64) error {
	if _, err := s.getOwnedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.logger.Info("checklist item deleted", slog.Int64("id", itemID))
	return nil
}

// checkGameOwner verifies the game exists and belongs to the user.
func (s *ChecklistService) checkGameOwner(ctx context.Context, userID, gameID int64) error {
	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game.UserID != userID {
		return apperror.Forbidden("game belongs to another user")
	}
	return nil
}

// getOwnedItem resolves an item and verifies ownership through its game.
func (s *ChecklistService) getOwnedItem(ctx context.Context, userID, itemID int64) (*model.ChecklistItem, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkGameOwner(ctx, userID, item.GameID); err != nil {
		return nil, err
	}
	return item, nil
}
