package service

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
)

// discardLogger keeps the services quiet during tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intp(n int) *int { return &n }

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	nextID int64
	users  map[int64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("email is already registered")
		}
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NotFoundKey("user", email)
}

func (r *fakeUserRepo) UpsertByGitHubID(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.GitHubID == user.GitHubID && u.GitHubID != 0 {
			u.Username = user.Username
			u.Email = user.Email
			user.ID = u.ID
			return nil
		}
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// fakeGameRepo is an in-memory GameRepository. Item counts are set directly
// by tests via setCounts; CreateGameWithItems records what it was asked to
// write so the importer's output can be inspected.
type fakeGameRepo struct {
	nextID int64
	games  map[int64]*model.Game
	counts map[int64][2]int // gameID -> {total, completed}

	createWithItemsErr error
	importedItems      []model.ChecklistItem
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		games:  make(map[int64]*model.Game),
		counts: make(map[int64][2]int),
	}
}

func (r *fakeGameRepo) setCounts(gameID int64, total, completed int) {
	r.counts[gameID] = [2]int{total, completed}
}

func (r *fakeGameRepo) CreateGame(_ context.Context, game *model.Game) error {
	r.nextID++
	game.ID = r.nextID
	clone := *game
	r.games[game.ID] = &clone
	return nil
}

func (r *fakeGameRepo) GetGameByID(_ context.Context, id int64) (*model.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	clone := *g
	return &clone, nil
}

func (r *fakeGameRepo) ListGamesByUser(_ context.Context, userID int64) ([]model.Game, error) {
	var games []model.Game
	for _, g := range r.games {
		if g.UserID == userID {
			games = append(games, *g)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID > games[j].ID })
	return games, nil
}

func (r *fakeGameRepo) UpdateGame(_ context.Context, game *model.Game) error {
	if _, ok := r.games[game.ID]; !ok {
		return apperror.NotFound("game", game.ID)
	}
	clone := *game
	r.games[game.ID] = &clone
	return nil
}

func (r *fakeGameRepo) DeleteGame(_ context.Context, id int64) error {
	if _, ok := r.games[id]; !ok {
		return apperror.NotFound("game", id)
	}
	delete(r.games, id)
	return nil
}

func (r *fakeGameRepo) ItemCounts(_ context.Context, gameID int64) (int, int, error) {
	c := r.counts[gameID]
	return c[0], c[1], nil
}

func (r *fakeGameRepo) CreateGameWithItems(_ context.Context, game *model.Game, items []model.ChecklistItem) error {
	if r.createWithItemsErr != nil {
		return r.createWithItemsErr
	}
	r.nextID++
	game.ID = r.nextID
	clone := *game
	r.games[game.ID] = &clone
	r.importedItems = append([]model.ChecklistItem(nil), items...)
	for i := range r.importedItems {
		r.importedItems[i].GameID = game.ID
	}
	return nil
}

// fakeChecklistRepo is an in-memory ChecklistRepository. It enforces the
// same (game, order) uniqueness the real unique index does.
type fakeChecklistRepo struct {
	nextID int64
	items  map[int64]*model.ChecklistItem
}

func newFakeChecklistRepo() *fakeChecklistRepo {
	return &fakeChecklistRepo{items: make(map[int64]*model.ChecklistItem)}
}

func (r *fakeChecklistRepo) orderTaken(gameID int64, order *int, excludeID int64) bool {
	if order == nil {
		return false
	}
	for _, it := range r.items {
		if it.ID != excludeID && it.GameID == gameID && it.Order != nil && *it.Order == *order {
			return true
		}
	}
	return false
}

func (r *fakeChecklistRepo) CreateItem(_ context.Context, item *model.ChecklistItem) error {
	if r.orderTaken(item.GameID, item.Order, 0) {
		return apperror.Conflict("an item with this order already exists for the game")
	}
	r.nextID++
	item.ID = r.nextID
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeChecklistRepo) GetItem(_ context.Context, id int64) (*model.ChecklistItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperror.NotFound("checklist item", id)
	}
	clone := *it
	return &clone, nil
}

func (r *fakeChecklistRepo) ListByGame(_ context.Context, gameID int64) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	for _, it := range r.items {
		if it.GameID == gameID {
			items = append(items, *it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Order == nil && b.Order == nil:
			return a.ID < b.ID
		case a.Order == nil:
			return false
		case b.Order == nil:
			return true
		case *a.Order != *b.Order:
			return *a.Order < *b.Order
		default:
			return a.ID < b.ID
		}
	})
	return items, nil
}

func (r *fakeChecklistRepo) UpdateItem(_ context.Context, item *model.ChecklistItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return apperror.NotFound("checklist item", item.ID)
	}
	if r.orderTaken(item.GameID, item.Order, item.ID) {
		return apperror.Conflict("an item with this order already exists for the game")
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeChecklistRepo) DeleteItem(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return apperror.NotFound("checklist item", id)
	}
	delete(r.items, id)
	return nil
}

// fakeCommunityRepo is an in-memory CommunityRepository.
type fakeCommunityRepo struct {
	nextID    int64
	templates map[int64]*model.CommunityChecklist
	items     map[int64][]model.CommunityChecklistItem
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{
		templates: make(map[int64]*model.CommunityChecklist),
		items:     make(map[int64][]model.CommunityChecklistItem),
	}
}

func (r *fakeCommunityRepo) CreateTemplate(_ context.Context, template *model.CommunityChecklist, items []model.CommunityChecklistItem) error {
	r.nextID++
	template.ID = r.nextID
	clone := *template
	r.templates[template.ID] = &clone
	stored := append([]model.CommunityChecklistItem(nil), items...)
	for i := range stored {
		r.nextID++
		stored[i].ID = r.nextID
		stored[i].CommunityChecklistID = template.ID
	}
	r.items[template.ID] = stored
	return nil
}

func (r *fakeCommunityRepo) GetTemplateByID(_ context.Context, id int64) (*model.CommunityChecklist, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, apperror.NotFound("community checklist", id)
	}
	clone := *t
	return &clone, nil
}

func (r *fakeCommunityRepo) GetTemplateByShareCode(_ context.Context, code string) (*model.CommunityChecklist, error) {
	for _, t := range r.templates {
		if t.ShareCode == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, apperror.NotFoundKey("community checklist", code)
}

func (r *fakeCommunityRepo) ListTemplates(_ context.Context) ([]model.CommunityChecklist, error) {
	var templates []model.CommunityChecklist
	for _, t := range r.templates {
		clone := *t
		clone.ItemCount = len(r.items[t.ID])
		templates = append(templates, clone)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID > templates[j].ID })
	return templates, nil
}

func (r *fakeCommunityRepo) TemplateItems(_ context.Context, templateID int64) ([]model.CommunityChecklistItem, error) {
	items := append([]model.CommunityChecklistItem(nil), r.items[templateID]...)
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Order == nil && b.Order == nil:
			return a.ID < b.ID
		case a.Order == nil:
			return false
		case b.Order == nil:
			return true
		case *a.Order != *b.Order:
			return *a.Order < *b.Order
		default:
			return a.ID < b.ID
		}
	})
	return items, nil
}

func (r *fakeCommunityRepo) DeleteTemplate(_ context.Context, id int64) error {
	if _, ok := r.templates[id]; !ok {
		return apperror.NotFound("community checklist", id)
	}
	delete(r.templates, id)
	delete(r.items, id)
	return nil
}
