package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskTracker/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Exists reports whether a user with exactly this username is stored.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return false, classify("user exists", err)
	}
	return n > 0, nil
}

// Create inserts a new user with an already hashed password.
// The UNIQUE constraint on username decides races: the losing insert gets ErrConflict.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return nil, classify("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, classify("insert user", err)
	}
	return &models.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetByUsername returns the user or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, `SELECT id, username, password FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify("get user", err)
	}
	return &u, nil
}

// FindID resolves a username to its id, or ErrNotFound.
func (r *UserRepository) FindID(ctx context.Context, username string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, classify("find user id", err)
	}
	return id, nil
}
