package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/plexybot/internal/utils/keymutex"
)

// Section names the bot area a user interacted with.
type Section string

const (
	SectionStart         Section = "start"
	SectionHelp          Section = "help"
	SectionVitamins      Section = "vitamins"
	SectionPlants        Section = "plants"
	SectionAIQuestion    Section = "ai_question"
	SectionVitaminAdvice Section = "vitamin_recommendation"
	SectionPhoto         Section = "photo_recognition"
	SectionProblems      Section = "problems_solutions"
	SectionFAQ           Section = "faq"
	SectionFeedback      Section = "feedback"
	SectionFreeText      Section = "free_text"
)

// Interaction is one entry of a user's append-only interaction log.
type Interaction struct {
	Section   Section   `json:"section" bson:"section"`
	Query     string    `json:"query,omitempty" bson:"query,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// User is the per-user usage record.
type User struct {
	ID               int64           `json:"user_id" bson:"user_id"`
	Username         string          `json:"username,omitempty" bson:"username,omitempty"`
	FirstName        string          `json:"first_name,omitempty" bson:"first_name,omitempty"`
	RegisteredAt     time.Time       `json:"registered_at" bson:"registered_at"`
	LastInteraction  time.Time       `json:"last_interaction" bson:"last_interaction"`
	LastSection      Section         `json:"last_section,omitempty" bson:"last_section,omitempty"`
	InteractionCount int             `json:"interaction_count" bson:"interaction_count"`
	FavoriteSections map[Section]int `json:"favorite_sections,omitempty" bson:"favorite_sections,omitempty"`
	Interactions     []Interaction   `json:"interactions,omitempty" bson:"interactions,omitempty"`
}

// Feedback is a user's free-text feedback. It is never modified after being written.
type Feedback struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := *u
	c.Interactions = slices.Clone(u.Interactions)
	if u.FavoriteSections != nil {
		c.FavoriteSections = make(map[Section]int, len(u.FavoriteSections))
		for k, v := range u.FavoriteSections {
			c.FavoriteSections[k] = v
		}
	}
	return &c
}

// Profile identifies the Telegram user behind an interaction.
type Profile struct {
	ID        int64
	Username  string
	FirstName string
}

// Journal records user activity and feedback.
type Journal struct {
	users    UserRepository
	feedback FeedbackRepository
	locks    *keymutex.KeyedMutex[int64]
	logger   *slog.Logger
	now      func() time.Time
}

func newJournal(users UserRepository, feedback FeedbackRepository, logger *slog.Logger) *Journal {
	return &Journal{
		users:    users,
		feedback: feedback,
		locks:    keymutex.New[int64](),
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterUser creates the user record if absent and refreshes the profile fields.
func (j *Journal) RegisterUser(ctx context.Context, p Profile) (*User, error) {
	return j.touch(ctx, p, func(*User, time.Time) {})
}

// RecordInteraction appends an interaction to the user's log, creating the
// user on first contact.
func (j *Journal) RecordInteraction(ctx context.Context, p Profile, section Section, query string) error {
	_, err := j.touch(ctx, p, func(u *User, now time.Time) {
		u.Interactions = append(u.Interactions, Interaction{Section: section, Query: strings.TrimSpace(query), Timestamp: now})
		u.InteractionCount++
		u.LastSection = section
		if u.FavoriteSections == nil {
			u.FavoriteSections = make(map[Section]int)
		}
		u.FavoriteSections[section]++
	})
	return err
}

func (j *Journal) touch(ctx context.Context, p Profile, apply func(*User, time.Time)) (*User, error) {
	if p.ID == 0 {
		return nil, errors.New("user id is zero")
	}
	unlock := j.locks.Lock(p.ID)
	defer unlock()

	now := j.now().UTC()
	u, err := j.users.GetUser(ctx, p.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		u = &User{ID: p.ID, RegisteredAt: now}
		j.logger.InfoContext(ctx, "Registering new user", "user_id", p.ID)
	case err != nil:
		return nil, fmt.Errorf("load user %d: %w", p.ID, err)
	}

	if p.Username != "" {
		u.Username = p.Username
	}
	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	u.LastInteraction = now
	apply(u, now)

	if err := j.users.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user %d: %w", p.ID, err)
	}
	return u, nil
}

// User returns a stored user record.
func (j *Journal) User(ctx context.Context, userID int64) (*User, error) {
	return j.users.GetUser(ctx, userID)
}

// SaveFeedback stores a new immutable feedback record.
func (j *Journal) SaveFeedback(ctx context.Context, p Profile, text string) (*Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("feedback text is empty")
	}
	fb := &Feedback{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		Username:  p.Username,
		Text:      text,
		CreatedAt: j.now().UTC(),
	}
	if err := j.feedback.AddFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("save feedback from %d: %w", p.ID, err)
	}
	return fb, nil
}
