package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetOrCreateUser finds a user by username, creating the row on first
// sight. The upsert keeps the call idempotent for repeated logins.
func (s *UserService) GetOrCreateUser(ctx context.Context, username string) (*user.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
		RETURNING id, username, points, created_at, updated_at
	`, username).Scan(&u.ID, &u.Username, &u.Points, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		SELECT id, username, points, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.Points, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetPreferences returns the stored blob, or the defaults when the user
// never saved any.
func (s *UserService) GetPreferences(ctx context.Context, userID int64) (*user.Preferences, error) {
	prefs := &user.Preferences{}
	err := s.db.QueryRow(ctx, `
		SELECT preferences FROM users WHERE id = $1 AND preferences IS NOT NULL
	`, userID).Scan(prefs)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := user.DefaultPreferences()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID int64, prefs *user.Preferences) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET preferences = $2, updated_at = NOW() WHERE id = $1
	`, userID, prefs)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
