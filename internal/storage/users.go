package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email),
	).Scan(&u.ID, &u.Email)
	if err != nil {
		return core.User{}, notFound(err, core.ErrUserNotFound)
	}
	return u, nil
}

func (r *SQLiteRepository) FindUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `SELECT id, email FROM users WHERE id = ?`, id).Scan(&u.ID, &u.Email)
	if err != nil {
		return core.User{}, notFound(err, core.ErrUserNotFound)
	}
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return core.User{}, core.ErrInvalidEmail
	}

	var u core.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email) VALUES (?) RETURNING id, email`, email,
	).Scan(&u.ID, &u.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", log.FieldComponent, log.ComponentStorage, log.FieldUserID, u.ID)
	return u, nil
}
