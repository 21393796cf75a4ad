package models

import (
	"time"
)

// Direction selects which side of a transfer a history listing is for
type Direction string

const (
	DirectionGiven    Direction = "given"
	DirectionReceived Direction = "received"
)

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return d == DirectionGiven || d == DirectionReceived
}

// Transaction is an immutable record of kudos moving from one member to another.
// MessageRef is set once, after the public announcement has been posted.
type Transaction struct {
	ID          int64     `db:"id"`
	SenderID    int64     `db:"sender_id"`
	RecipientID int64     `db:"recipient_id"`
	Amount      int64     `db:"amount"`
	SeasonID    int64     `db:"season_id"`
	Reason      string    `db:"reason"`
	MessageRef  *string   `db:"message_ref"`
	CreatedAt   time.Time `db:"created_at"`
}

// TransferRequest carries the arguments of a ledger commit
type TransferRequest struct {
	SenderID    int64
	RecipientID int64
	Amount      int64
	SeasonID    int64
	Reason      string
}
