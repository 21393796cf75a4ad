package models

import (
	"time"
)

// Question is a superlative poll question scoped to a season
type Question struct {
	ID        int64     `db:"id"`
	SeasonID  int64     `db:"season_id"`
	Text      string    `db:"text"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
