package knowledge

import "context"

// Repository is the storage contract a backend offers for one entity kind.
// Every multi-result method returns records in insertion order.
type Repository[T Entity] interface {
	// FindByKey returns the record whose NameKey equals key, or ErrNotFound.
	FindByKey(ctx context.Context, key string) (T, error)
	// FindNameContaining returns records whose NameKey contains fragment.
	FindNameContaining(ctx context.Context, fragment string, limit int) ([]T, error)
	// Search returns records whose SearchText contains keyword.
	Search(ctx context.Context, keyword string, limit int) ([]T, error)
	// Save inserts the record, or replaces the one stored under the same key
	// while keeping its original insertion position.
	Save(ctx context.Context, record T) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, limit int) ([]T, error)
	Count(ctx context.Context) (int, error)
}

// UserRepository persists user records.
type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	SaveUser(ctx context.Context, user *User) error
	CountUsers(ctx context.Context) (int, error)
}

// FeedbackRepository persists feedback. Records are write-once.
type FeedbackRepository interface {
	AddFeedback(ctx context.Context, fb *Feedback) error
	CountFeedback(ctx context.Context) (int, error)
}

// Backend bundles everything a storage implementation provides.
type Backend interface {
	Plants() Repository[*Plant]
	Vitamins() Repository[*Vitamin]
	Users() UserRepository
	Feedback() FeedbackRepository
	Ping(ctx context.Context) error
	// Maintain runs periodic housekeeping (compaction, vacuum, index checks).
	Maintain(ctx context.Context) error
	Close(ctx context.Context) error
}
