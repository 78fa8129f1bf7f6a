package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/model"
	"github.com/sakif/completionist/internal/repository"
)

// compile-time check that *DB implements repository.GameRepository
var _ repository.GameRepository = (*DB)(nil)

// CreateGame inserts a new game and fills in its ID and timestamps.
func (db *DB) CreateGame(ctx context.Context, game *model.Game) error {
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO games
			(user_id, title, platform, genre, run_type, tags, cover_url, thumbnail_url,
			 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.UserID,
		game.Title,
		game.Platform,
		game.Genre,
		game.RunType,
		game.Tags,
		game.CoverURL,
		game.ThumbnailURL,
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", game.UserID)
		}
		return fmt.Errorf("sqlite: inserting game %q: %w", game.Title, err)
	}

	game.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new game id: %w", err)
	}
	return nil
}

// GetGameByID retrieves a single game.
func (db *DB) GetGameByID(ctx context.Context, id int64) (*model.Game, error) {
	var g model.Game
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, platform, genre, run_type, tags,
		        cover_url, thumbnail_url, created_at, updated_at
		 FROM games WHERE id = ?`, id,
	).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Platform, &g.Genre, &g.RunType, &g.Tags,
		&g.CoverURL, &g.ThumbnailURL, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %d: %w", id, err)
	}
	return &g, nil
}

// ListGamesByUser returns all of a user's games, newest first.
func (db *DB) ListGamesByUser(ctx context.Context, userID int64) ([]model.Game, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, platform, genre, run_type, tags,
		        cover_url, thumbnail_url, created_at, updated_at
		 FROM games WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games for user %d: %w", userID, err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Platform, &g.Genre, &g.RunType, &g.Tags,
			&g.CoverURL, &g.ThumbnailURL, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}
	return games, nil
}

// UpdateGame saves the descriptive fields of an existing game.
// RowsAffected == 0 means the WHERE matched nothing → NotFound.
func (db *DB) UpdateGame(ctx context.Context, game *model.Game) error {
	game.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE games
		 SET title = ?, platform = ?, genre = ?, run_type = ?, tags = ?,
		     cover_url = ?, thumbnail_url = ?, updated_at = ?
		 WHERE id = ?`,
		game.Title,
		game.Platform,
		game.Genre,
		game.RunType,
		game.Tags,
		game.CoverURL,
		game.ThumbnailURL,
		game.UpdatedAt,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating game %d: %w", game.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("game", game.ID)
	}
	return nil
}

// DeleteGame removes a game. The ON DELETE CASCADE on checklist_items.game_id
// removes its checklist in the same statement — no orphan rows.
func (db *DB) DeleteGame(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting game %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("game", id)
	}
	return nil
}

// ItemCounts returns (total, completed) for a game's checklist in one query.
// A game with no items and a missing game both return (0, 0); the service
// layer resolves the game first when the distinction matters.
func (db *DB) ItemCounts(ctx context.Context, gameID int64) (int, int, error) {
	var total, completed int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(completed), 0)
		 FROM checklist_items WHERE game_id = ?`, gameID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("sqlite: counting checklist items for game %d: %w", gameID, err)
	}
	return total, completed, nil
}

// CreateGameWithItems inserts a game and all of its checklist items inside one
// transaction. This is the write half of the template importer: a concurrent
// reader sees either no rows of the import or all of them, and any failure
// (say, a duplicate order among the items) rolls the whole thing back.
//
// The deferred Rollback is a no-op after a successful Commit — that's the
// standard database/sql pattern for guaranteed release on every exit path.
func (db *DB) CreateGameWithItems(ctx context.Context, game *model.Game, items []model.ChecklistItem) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games
			(user_id, title, platform, genre, run_type, tags, cover_url, thumbnail_url,
			 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.UserID,
		game.Title,
		game.Platform,
		game.Genre,
		game.RunType,
		game.Tags,
		game.CoverURL,
		game.ThumbnailURL,
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", game.UserID)
		}
		return fmt.Errorf("sqlite: inserting imported game %q: %w", game.Title, err)
	}

	game.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading imported game id: %w", err)
	}

	for i := range items {
		item := &items[i]
		item.GameID = game.ID

		itemRes, err := tx.ExecContext(ctx,
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
					"duplicate checklist order %s in imported items", orderString(item.Order)))
			}
			return fmt.Errorf("sqlite: inserting imported checklist item: %w", err)
		}

		item.ID, err = itemRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading imported item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing import: %w", err)
	}
	return nil
}

// orderString formats a nullable order for error messages.
func orderString(p *int) string {
	if p == nil {
		return "(none)"
	}
	return fmt.Sprint(*p)
}
