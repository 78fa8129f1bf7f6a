package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
	"github.com/sakif/completionist/internal/repository"
)

// compile-time check that *DB implements repository.ChecklistRepository
var _ repository.ChecklistRepository = (*DB)(nil)

// CreateItem inserts a checklist item.
//
// The unique index on (game_id, position) is the only duplicate-order check.
// Two concurrent creations with the same explicit order race on the index:
// the loser gets a Conflict, the data stays consistent, and nobody holds a
// lock in application code.
func (db *DB) CreateItem(ctx context.Context, item *model.ChecklistItem) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO checklist_items (game_id, description, completed, position)
		 VALUES (?, ?, ?, ?)`,
		item.GameID,
		item.Description,
		item.Completed,
		nullableInt(item.Order),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf(
				"checklist order %s is already in use for game %d",
				orderString(item.Order), item.GameID))
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("game", item.GameID)
		}
		return fmt.Errorf("sqlite: inserting checklist item: %w", err)
	}

	item.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new checklist item id: %w", err)
	}
	return nil
}

// GetItem retrieves a single checklist item.
func (db *DB) GetItem(ctx context.Context, id int64) (*model.ChecklistItem, error) {
	var (
		item     model.ChecklistItem
		position sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, game_id, description, completed, position
		 FROM checklist_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.GameID, &item.Description, &item.Completed, &position)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("checklist item", id)
		}
		return nil, fmt.Errorf("sqlite: getting checklist item %d: %w", id, err)
	}

	item.Order = intPointer(position)
	return &item, nil
}

// ListByGame returns a game's checklist in display order: items with an
// order first (ascending), then unordered items in insertion order.
// "position IS NULL" sorts to 0 for ordered rows, pushing NULLs last.
func (db *DB) ListByGame(ctx context.Context, gameID int64) ([]model.ChecklistItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, game_id, description, completed, position
		 FROM checklist_items
		 WHERE game_id = ?
		 ORDER BY position IS NULL, position, id`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing checklist for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		var (
			item     model.ChecklistItem
			position sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.GameID, &item.Description, &item.Completed, &position); err != nil {
			return nil, fmt.Errorf("sqlite: scanning checklist row: %w", err)
		}
		item.Order = intPointer(position)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating checklist items: %w", err)
	}
	return items, nil
}

// UpdateItem saves description, completed, and order for an existing item.
// The service layer has already merged the partial update into the full
// record, so this is a whole-row write.
func (db *DB) UpdateItem(ctx context.Context, item *model.ChecklistItem) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE checklist_items
		 SET description = ?, completed = ?, position = ?
		 WHERE id = ?`,
		item.Description,
		item.Completed,
		nullableInt(item.Order),
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf(
				"checklist order %s is already in use for game %d",
				orderString(item.Order), item.GameID))
		}
		return fmt.Errorf("sqlite: updating checklist item %d: %w", item.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("checklist item", item.ID)
	}
	return nil
}

// DeleteItem removes a single checklist item.
func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM checklist_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting checklist item %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("checklist item", id)
	}
	return nil
}
