package models

// Task is a single to-do entry owned by a User via UserID.
// The description lives in the `task` column of the `tasks` table.
type Task struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"userId" json:"user_id"`
	Description string `db:"task" json:"description"`
}
