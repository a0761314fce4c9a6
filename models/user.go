package models

// User represents a registered account.
// It maps to the `users` table in SQLite; the hash is stored in the `password` column.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
}
