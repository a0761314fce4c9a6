package repository

import (
	"context"

	"taskTracker/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindID(ctx context.Context, username string) (int64, error)
}

// TaskRepositoryI defines operations on Task entities.
type TaskRepositoryI interface {
	Create(ctx context.Context, userID int64, description string) (*models.Task, error)
	ListDescriptions(ctx context.Context, userID int64) ([]string, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Task, error)
}

var (
	_ UserRepositoryI = (*UserRepository)(nil)
	_ TaskRepositoryI = (*TaskRepository)(nil)
)
