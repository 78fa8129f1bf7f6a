package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
	"github.com/sakif/completionist/internal/repository"
)

// CommunityService handles shareable checklist templates: browsing,
// authoring, and importing them into a personal game list.
type CommunityService struct {
	templates repository.CommunityRepository
	games     repository.GameRepository
	logger    *slog.Logger
}

// NewCommunityService creates a CommunityService.
func NewCommunityService(
	templates repository.CommunityRepository,
	games repository.GameRepository,
	logger *slog.Logger,
) *CommunityService {
	return &CommunityService{templates: templates, games: games, logger: logger}
}

// TemplateItemInput is one item in an authored template.
type TemplateItemInput struct {
	Description string
	Order       *int
}

// CreateTemplateInput is the payload for authoring a template.
type CreateTemplateInput struct {
	Title        string
	Description  string
	Platform     string
	Genre        string
	RunType      string
	Tags         string
	ThumbnailURL string
	Items        []TemplateItemInput
}

// TemplateWithItems bundles a template and its full item list for detail
// views.
type TemplateWithItems struct {
	model.CommunityChecklist
	Items []model.CommunityChecklistItem `json:"items"`
}

// List returns all templates, newest first, with item counts.
func (s *CommunityService) List(ctx context.Context) ([]model.CommunityChecklist, error) {
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	if templates == nil {
		templates = []model.CommunityChecklist{}
	}
	return templates, nil
}

// Get returns a template with its items.
func (s *CommunityService) Get(ctx context.Context, templateID int64) (*TemplateWithItems, error) {
	template, err := s.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, template)
}

// GetByShareCode returns a template with its items, looked up by share link
// code.
func (s *CommunityService) GetByShareCode(ctx context.Context, code string) (*TemplateWithItems, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.ValidationFailed("shareCode", "share code is required")
	}

	template, err := s.templates.GetTemplateByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, template)
}

// Create validates and stores a new template authored by the given user.
// The share code is an xid — short, URL-safe, and unguessable enough for
// share links.
func (s *CommunityService) Create(ctx context.Context, userID int64, in CreateTemplateInput) (*TemplateWithItems, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "template title is required")
	}
	if err := checkFieldLengths(title, in.Platform, in.Genre, in.RunType, in.Tags); err != nil {
		return nil, err
	}

	items := make([]model.CommunityChecklistItem, 0, len(in.Items))
	for i, itemIn := range in.Items {
		description := strings.TrimSpace(itemIn.Description)
		if description == "" {
			return nil, apperror.ValidationFailed(
				fmt.Sprintf("items[%d].description", i), "item description is required")
		}
		items = append(items, model.CommunityChecklistItem{
			Description: description,
			Order:       itemIn.Order,
		})
	}

	template := &model.CommunityChecklist{
		CreatedBy:    userID,
		ShareCode:    xid.New().String(),
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Platform:     strings.TrimSpace(in.Platform),
		Genre:        strings.TrimSpace(in.Genre),
		RunType:      strings.TrimSpace(in.RunType),
		Tags:         strings.TrimSpace(in.Tags),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
	}

	if err := s.templates.CreateTemplate(ctx, template, items); err != nil {
		s.logger.Error("failed to create template",
			slog.Int64("userID", userID),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating template: %w", err)
	}

	s.logger.Info("community template created",
		slog.Int64("id", template.ID),
		slog.Int64("userID", userID),
		slog.String("title", template.Title),
	)
	return &TemplateWithItems{CommunityChecklist: *template, Items: items}, nil
}

// Delete removes a template. Only its author may delete it.
func (s *CommunityService) Delete(ctx context.Context, userID, templateID int64) error {
	template, err := s.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return err
	}
	if template.CreatedBy != userID {
		return apperror.Forbidden("only the template's author can delete it")
	}
	if err := s.templates.DeleteTemplate(ctx, templateID); err != nil {
		return err
	}

	s.logger.Info("community template deleted",
		slog.Int64("id", templateID),
		slog.Int64("userID", userID),
	)
	return nil
}

// Import instantiates a personal game from a template: one new Game copying
// the template's descriptive fields (its thumbnail becomes the game's
// cover), plus one fresh ChecklistItem per template item, completed forced
// to false.
//
// The game and all items are written in a single transaction by the
// repository — a failed item copy rolls back the game too, so a
// partially-populated import can never be observed.
//
// Import is intentionally NOT idempotent: importing the same template twice
// creates two independent games. That's a feature — a second play-through of
// the same template is a normal thing to want — so retries after a failure
// are safe but retries after success multiply games.
//
// The source template is never touched.
func (s *CommunityService) Import(ctx context.Context, userID, templateID int64) (*model.Game, error) {
	if userID <= 0 {
		return nil, apperror.ValidationFailed("userId", "importing user is required")
	}

	template, err := s.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	templateItems, err := s.templates.TemplateItems(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading template items: %w", err)
	}

	game := &model.Game{
		UserID:       userID,
		Title:        template.Title,
		Platform:     template.Platform,
		Genre:        template.Genre,
		RunType:      template.RunType,
		Tags:         template.Tags,
		CoverURL:     template.ThumbnailURL,
		ThumbnailURL: template.ThumbnailURL,
	}

	items := copyTemplateItems(templateItems)

	if err := s.games.CreateGameWithItems(ctx, game, items); err != nil {
		s.logger.Error("template import failed",
			slog.Int64("templateID", templateID),
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("importing template %d: %w", templateID, err)
	}

	s.logger.Info("template imported",
		slog.Int64("templateID", templateID),
		slog.Int64("gameID", game.ID),
		slog.Int64("userID", userID),
		slog.Int("items", len(items)),
	)
	return game, nil
}

// copyTemplateItems builds the checklist for an imported game. Items keep
// their template order; an item with no order gets the next value of a
// running counter (starting at 1) so the copied checklist comes out fully
// ordered. The counter always stays above every explicit order seen so far —
// template items arrive ordered-first, so assigned values can't collide
// with explicit ones.
func copyTemplateItems(templateItems []model.CommunityChecklistItem) []model.ChecklistItem {
	items := make([]model.ChecklistItem, 0, len(templateItems))
	next := 1
	for _, ti := range templateItems {
		var order int
		if ti.Order != nil {
			order = *ti.Order
			if order >= next {
				next = order + 1
			}
		} else {
			order = next
			next++
		}
		items = append(items, model.ChecklistItem{
			Description: ti.Description,
			Completed:   false,
			Order:       &order,
		})
	}
	return items
}

// withItems attaches a template's items for detail responses.
func (s *CommunityService) withItems(ctx context.Context, template *model.CommunityChecklist) (*TemplateWithItems, error) {
	items, err := s.templates.TemplateItems(ctx, template.ID)
	if err != nil {
		return nil, fmt.Errorf("loading template items: %w", err)
	}
	if items == nil {
		items = []model.CommunityChecklistItem{}
	}
	return &TemplateWithItems{CommunityChecklist: *template, Items: items}, nil
}
