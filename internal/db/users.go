package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pdfdesk/backend/internal/model"
)

// userColumns never includes password_hash; only FindByEmail reads it.
const userColumns = `id, first_name, last_name, email, role, status, is_deleted, password_changed_at, created_at, updated_at`

func scanUser(row pgx.Row, user *model.User, extra ...any) error {
	dest := []any{
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.IsDeleted,
		&user.PasswordChangedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// FindByEmail loads the user including its password hash.
func (db *Postgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`

	var user model.User
	if err := scanUser(db.Pool.QueryRow(ctx, query, email), &user, &user.PasswordHash); err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (db *Postgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := scanUser(db.Pool.QueryRow(ctx, query, id), &user); err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (db *Postgres) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, status, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + userColumns

	var created model.User
	err := scanUser(db.Pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.IsDeleted,
	), &created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &created, nil
}

// UpdatePasswordByEmailAndRole writes the hash and the change timestamp in
// one statement.
func (db *Postgres) UpdatePasswordByEmailAndRole(ctx context.Context, email string, role model.Role, update model.PasswordUpdate) error {
	query := `
		UPDATE users
		SET password_hash = $1, password_changed_at = $2, updated_at = NOW()
		WHERE email = $3 AND role = $4
	`
	tag, err := db.Pool.Exec(ctx, query, update.PasswordHash, update.PasswordChangedAt, email, role)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Postgres) UpdateStatusByID(ctx context.Context, id string, status model.Status) (*model.User, error) {
	query := `
		UPDATE users
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	var user model.User
	if err := scanUser(db.Pool.QueryRow(ctx, query, status, id), &user); err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return &user, nil
}

func (db *Postgres) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var user model.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
