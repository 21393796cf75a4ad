package models

import (
	"time"
)

// Season is a scoring period. Activating a season refills every balance to DefaultBalance.
type Season struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	DefaultBalance int64     `db:"default_balance"`
	Active         bool      `db:"active"`
	Description    string    `db:"description"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
