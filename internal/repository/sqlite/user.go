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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The UNIQUE index on email is the only duplicate
// check — no read-before-write, so two concurrent registrations for the same
// email race safely and the loser gets a Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullableGitHubID(user.GitHubID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("email %s is already registered", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email. Used by login.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

// UpsertByGitHubID inserts a user on first GitHub login and refreshes the
// profile on subsequent logins. GitHub's account ID is stable, so it is the
// upsert key; the internal ID never changes once assigned.
func (db *DB) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	var existingID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != 0 {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?`,
			user.Username, user.Email, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
		}
		return nil
	}

	return db.CreateUser(ctx, user)
}

// getUser is the shared SELECT for the ByID/ByEmail lookups.
func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, github_id, created_at, updated_at
		 FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&githubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			if id, ok := arg.(int64); ok {
				return nil, apperror.NotFound("user", id)
			}
			return nil, apperror.NotFoundKey("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.GitHubID = githubID.Int64
	return &u, nil
}

// nullableGitHubID maps the model's "0 = not linked" convention onto the
// NULLable github_id column, so the UNIQUE constraint ignores unlinked rows.
func nullableGitHubID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
