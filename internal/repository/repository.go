// Package repository defines the persistence interfaces the service layer
// depends on. The concrete SQLite implementation lives in repository/sqlite;
// tests substitute in-memory fakes.
//
// One *sqlite.DB satisfies all four interfaces, so method names carry the
// entity name (CreateGame, CreateItem, ...) to avoid collisions.
package repository

import (
	"context"

	"github.com/sakif/completionist/internal/model"
)

// UserRepository manages user accounts.
type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.ErrConflict if the
	// email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertByGitHubID inserts a user on first GitHub login and refreshes
	// username/email on subsequent logins, keyed by the GitHub account ID.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
}

// GameRepository manages tracked play-throughs.
type GameRepository interface {
	CreateGame(ctx context.Context, game *model.Game) error
	GetGameByID(ctx context.Context, id int64) (*model.Game, error)
	ListGamesByUser(ctx context.Context, userID int64) ([]model.Game, error)
	UpdateGame(ctx context.Context, game *model.Game) error
	// DeleteGame removes the game; its checklist items go with it
	// (ON DELETE CASCADE).
	DeleteGame(ctx context.Context, id int64) error
	// ItemCounts returns (total, completed) checklist item counts for a game.
	// It does NOT check that the game exists — a missing game and an empty
	// checklist both count (0, 0). Callers who need the distinction (the
	// progress aggregator does) must resolve the game first.
	ItemCounts(ctx context.Context, gameID int64) (total, completed int, err error)
	// CreateGameWithItems inserts a game and its checklist items as one
	// transaction. Used by the template importer: either the game and every
	// item land together, or nothing does.
	CreateGameWithItems(ctx context.Context, game *model.Game, items []model.ChecklistItem) error
}

// ChecklistRepository manages checklist items within games.
type ChecklistRepository interface {
	// CreateItem inserts an item. A duplicate (game, order) pair returns
	// apperror.ErrConflict — the unique index is the only serialization
	// point, there is no read-before-write check.
	CreateItem(ctx context.Context, item *model.ChecklistItem) error
	GetItem(ctx context.Context, id int64) (*model.ChecklistItem, error)
	// ListByGame returns ordered items first (by order, then id), unordered
	// items last.
	ListByGame(ctx context.Context, gameID int64) ([]model.ChecklistItem, error)
	UpdateItem(ctx context.Context, item *model.ChecklistItem) error
	DeleteItem(ctx context.Context, id int64) error
}

// CommunityRepository manages shareable checklist templates.
type CommunityRepository interface {
	// CreateTemplate inserts a template and its items in one transaction.
	CreateTemplate(ctx context.Context, template *model.CommunityChecklist, items []model.CommunityChecklistItem) error
	GetTemplateByID(ctx context.Context, id int64) (*model.CommunityChecklist, error)
	GetTemplateByShareCode(ctx context.Context, code string) (*model.CommunityChecklist, error)
	// ListTemplates returns all templates, newest first, with ItemCount
	// populated.
	ListTemplates(ctx context.Context) ([]model.CommunityChecklist, error)
	// TemplateItems returns a template's items in template order (ordered
	// first, then unordered).
	TemplateItems(ctx context.Context, templateID int64) ([]model.CommunityChecklistItem, error)
	DeleteTemplate(ctx context.Context, id int64) error
}
