package database

import "time"

// entityRow is one row of the entities table. The record itself lives in
// Data as JSON; NameKey and SearchKey are the lower-cased match columns.
type entityRow struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"`
	Name      string    `db:"name"`
	NameKey   string    `db:"name_key"`
	SearchKey string    `db:"search_key"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type userRow struct {
	UserID           int64     `db:"user_id"`
	Username         string    `db:"username"`
	FirstName        string    `db:"first_name"`
	RegisteredAt     time.Time `db:"registered_at"`
	LastInteraction  time.Time `db:"last_interaction"`
	LastSection      string    `db:"last_section"`
	InteractionCount int       `db:"interaction_count"`
	FavoriteSections string    `db:"favorite_sections"`
}

type interactionRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Section   string    `db:"section"`
	Query     string    `db:"query"`
	Timestamp time.Time `db:"timestamp"`
}

type feedbackRow struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
