package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edgard/plexybot/internal/knowledge"
)

func (s *Store) GetUser(ctx context.Context, userID int64) (*knowledge.User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var row userRow
	err := s.db.GetContext(ctx, &row, `
        SELECT user_id, username, first_name, registered_at, last_interaction, last_section, interaction_count, favorite_sections
        FROM users WHERE user_id = ?;`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, knowledge.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var interactions []interactionRow
	if err := s.db.SelectContext(ctx, &interactions, `
        SELECT id, user_id, section, query, timestamp
        FROM interactions WHERE user_id = ? ORDER BY id ASC;`, userID); err != nil {
		return nil, fmt.Errorf("failed to get interactions of user %d: %w", userID, err)
	}

	u := &knowledge.User{
		ID:               row.UserID,
		Username:         row.Username,
		FirstName:        row.FirstName,
		RegisteredAt:     row.RegisteredAt.UTC(),
		LastInteraction:  row.LastInteraction.UTC(),
		LastSection:      knowledge.Section(row.LastSection),
		InteractionCount: row.InteractionCount,
	}
	if row.FavoriteSections != "" {
		if err := json.Unmarshal([]byte(row.FavoriteSections), &u.FavoriteSections); err != nil {
			s.logger.WarnContext(ctx, "Discarding malformed favorite sections", "user_id", userID, "error", err)
		}
	}
	for _, in := range interactions {
		u.Interactions = append(u.Interactions, knowledge.Interaction{
			Section:   knowledge.Section(in.Section),
			Query:     in.Query,
			Timestamp: in.Timestamp.UTC(),
		})
	}
	return u, nil
}

// SaveUser upserts the user row and appends interactions not yet stored.
func (s *Store) SaveUser(ctx context.Context, u *knowledge.User) error {
	if u == nil || u.ID == 0 {
		return fmt.Errorf("cannot save user without id")
	}
	favorites, err := json.Marshal(u.FavoriteSections)
	if err != nil {
		return fmt.Errorf("encode favorite sections: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving user", "user_id", u.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	row := userRow{
		UserID:           u.ID,
		Username:         u.Username,
		FirstName:        u.FirstName,
		RegisteredAt:     u.RegisteredAt.UTC(),
		LastInteraction:  u.LastInteraction.UTC(),
		LastSection:      string(u.LastSection),
		InteractionCount: u.InteractionCount,
		FavoriteSections: string(favorites),
	}
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO users (user_id, username, first_name, registered_at, last_interaction, last_section, interaction_count, favorite_sections)
        VALUES (:user_id, :username, :first_name, :registered_at, :last_interaction, :last_section, :interaction_count, :favorite_sections)
        ON CONFLICT (user_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_interaction = excluded.last_interaction,
            last_section = excluded.last_section,
            interaction_count = excluded.interaction_count,
            favorite_sections = excluded.favorite_sections;`, row)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}

	var stored int
	if err := tx.GetContext(ctx, &stored, `SELECT COUNT(*) FROM interactions WHERE user_id = ?;`, u.ID); err != nil {
		return fmt.Errorf("failed to count interactions of user %d: %w", u.ID, err)
	}
	for _, in := range u.Interactions[min(stored, len(u.Interactions)):] {
		_, err := tx.ExecContext(ctx, `INSERT INTO interactions (user_id, section, query, timestamp) VALUES (?, ?, ?, ?);`,
			u.ID, string(in.Section), in.Query, in.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("failed to append interaction of user %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users;`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *Store) AddFeedback(ctx context.Context, fb *knowledge.Feedback) error {
	row := feedbackRow{
		ID:        fb.ID,
		UserID:    fb.UserID,
		Username:  fb.Username,
		Text:      fb.Text,
		CreatedAt: fb.CreatedAt.UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO feedback (id, user_id, username, text, created_at)
        VALUES (:id, :user_id, :username, :text, :created_at);`, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving feedback", "user_id", fb.UserID, "error", err)
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (s *Store) CountFeedback(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM feedback;`); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
