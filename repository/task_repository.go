package repository

import (
	"context"
	"database/sql"
	"time"

	"taskTracker/models"
)

// TaskRepository stores task descriptions per user.
// Listings are returned in insertion order (ascending id).
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task for userID. A userID that does not reference a stored
// user fails with ErrNotFound and nothing is inserted.
func (r *TaskRepository) Create(ctx context.Context, userID int64, description string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO tasks (userId, task) SELECT id, ? FROM users WHERE id = ?`, description, userID)
	if err != nil {
		return nil, classify("insert task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, classify("insert task", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, classify("insert task", err)
	}
	return &models.Task{ID: id, UserID: userID, Description: description}, nil
}

// ListDescriptions returns the task descriptions of userID, oldest first.
// A user without tasks yields an empty, non-nil slice.
func (r *TaskRepository) ListDescriptions(ctx context.Context, userID int64) ([]string, error) {
	tasks, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Description)
	}
	return out, nil
}

// ListByUserID returns the tasks of userID ordered by id.
func (r *TaskRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, userId, task FROM tasks WHERE userId = ? ORDER BY id`, userID)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()
	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description); err != nil {
			return nil, classify("scan task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks", err)
	}
	return out, nil
}
