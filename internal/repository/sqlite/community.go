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

// compile-time check that *DB implements repository.CommunityRepository
var _ repository.CommunityRepository = (*DB)(nil)

// CreateTemplate inserts a template and its items in one transaction, same
// all-or-nothing shape as the importer's CreateWithItems.
func (db *DB) CreateTemplate(ctx context.Context, template *model.CommunityChecklist, items []model.CommunityChecklistItem) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning template transaction: %w", err)
	}
	defer tx.Rollback()

	template.CreatedAt = time.Now()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO community_checklists
			(created_by, share_code, title, description, platform, genre, run_type,
			 tags, thumbnail_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		template.CreatedBy,
		template.ShareCode,
		template.Title,
		template.Description,
		template.Platform,
		template.Genre,
		template.RunType,
		template.Tags,
		template.ThumbnailURL,
		template.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("share code %s already exists", template.ShareCode))
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", template.CreatedBy)
		}
		return fmt.Errorf("sqlite: inserting template %q: %w", template.Title, err)
	}

	template.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new template id: %w", err)
	}

	for i := range items {
		item := &items[i]
		item.CommunityChecklistID = template.ID

		itemRes, err := tx.ExecContext(ctx,
			`INSERT INTO community_checklist_items
				(community_checklist_id, description, position)
			 VALUES (?, ?, ?)`,
			item.CommunityChecklistID,
			item.Description,
			nullableInt(item.Order),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict(fmt.Sprintf(
					"duplicate item order %s in template", orderString(item.Order)))
			}
			return fmt.Errorf("sqlite: inserting template item: %w", err)
		}

		item.ID, err = itemRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new template item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing template: %w", err)
	}
	return nil
}

// GetTemplateByID retrieves a template (without its items).
func (db *DB) GetTemplateByID(ctx context.Context, id int64) (*model.CommunityChecklist, error) {
	t, err := db.getTemplate(ctx, `WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("template", id)
	}
	return t, err
}

// GetTemplateByShareCode retrieves a template by its share link code.
func (db *DB) GetTemplateByShareCode(ctx context.Context, code string) (*model.CommunityChecklist, error) {
	t, err := db.getTemplate(ctx, `WHERE share_code = ?`, code)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFoundKey("template", code)
	}
	return t, err
}

// getTemplate is the shared SELECT for the two lookups. It returns the raw
// sql.ErrNoRows so each caller can attach the identifier style it was given.
func (db *DB) getTemplate(ctx context.Context, where string, arg any) (*model.CommunityChecklist, error) {
	var (
		t         model.CommunityChecklist
		createdBy sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, created_by, share_code, title, description, platform, genre,
		        run_type, tags, thumbnail_url, created_at
		 FROM community_checklists `+where, arg,
	).Scan(
		&t.ID, &createdBy, &t.ShareCode, &t.Title, &t.Description, &t.Platform,
		&t.Genre, &t.RunType, &t.Tags, &t.ThumbnailURL, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: getting template: %w", err)
	}

	t.CreatedBy = createdBy.Int64
	return &t, nil
}

// ListTemplates returns all templates, newest first, with item counts from a single
// LEFT JOIN (so templates with zero items still appear).
func (db *DB) ListTemplates(ctx context.Context) ([]model.CommunityChecklist, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.created_by, c.share_code, c.title, c.description,
		        c.platform, c.genre, c.run_type, c.tags, c.thumbnail_url,
		        c.created_at, COUNT(i.id)
		 FROM community_checklists c
		 LEFT JOIN community_checklist_items i ON i.community_checklist_id = c.id
		 GROUP BY c.id
		 ORDER BY c.created_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing templates: %w", err)
	}
	defer rows.Close()

	var templates []model.CommunityChecklist
	for rows.Next() {
		var (
			t         model.CommunityChecklist
			createdBy sql.NullInt64
		)
		if err := rows.Scan(
			&t.ID, &createdBy, &t.ShareCode, &t.Title, &t.Description,
			&t.Platform, &t.Genre, &t.RunType, &t.Tags, &t.ThumbnailURL,
			&t.CreatedAt, &t.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning template row: %w", err)
		}
		t.CreatedBy = createdBy.Int64
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating templates: %w", err)
	}
	return templates, nil
}

// TemplateItems returns a template's items in template order (ordered items first,
// unordered last) — the same order the importer copies them in.
func (db *DB) TemplateItems(ctx context.Context, templateID int64) ([]model.CommunityChecklistItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, community_checklist_id, description, position
		 FROM community_checklist_items
		 WHERE community_checklist_id = ?
		 ORDER BY position IS NULL, position, id`, templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items for template %d: %w", templateID, err)
	}
	defer rows.Close()

	var items []model.CommunityChecklistItem
	for rows.Next() {
		var (
			item     model.CommunityChecklistItem
			position sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.CommunityChecklistID, &item.Description, &position); err != nil {
			return nil, fmt.Errorf("sqlite: scanning template item row: %w", err)
		}
		item.Order = intPointer(position)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating template items: %w", err)
	}
	return items, nil
}

// DeleteTemplate removes a template; its items cascade.
func (db *DB) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM community_checklists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting template %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("template", id)
	}
	return nil
}
