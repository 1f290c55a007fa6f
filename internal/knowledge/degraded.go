package knowledge

import (
	"context"
	"log/slog"
)

type degradedRepo[T Entity] struct {
	logger *slog.Logger
}

func (r degradedRepo[T]) FindByKey(context.Context, string) (T, error) {
	var zero T
	return zero, ErrNotFound
}

func (r degradedRepo[T]) FindNameContaining(context.Context, string, int) ([]T, error) {
	return nil, nil
}

func (r degradedRepo[T]) Search(context.Context, string, int) ([]T, error) { return nil, nil }

func (r degradedRepo[T]) Save(ctx context.Context, rec T) error {
	r.logger.WarnContext(ctx, "Storage unavailable, dropping write", "kind", rec.Kind(), "entity", rec.DisplayName())
	return nil
}

func (r degradedRepo[T]) Delete(ctx context.Context, key string) error {
	r.logger.WarnContext(ctx, "Storage unavailable, dropping delete", "key", key)
	return ErrNotFound
}

func (r degradedRepo[T]) List(context.Context, int) ([]T, error) { return nil, nil }
func (r degradedRepo[T]) Count(context.Context) (int, error)     { return 0, nil }

type degradedBackend struct {
	logger *slog.Logger
}

func newDegradedBackend(logger *slog.Logger) degradedBackend {
	return degradedBackend{logger: logger.With("component", "degraded_store")}
}

func (b degradedBackend) Plants() Repository[*Plant]     { return degradedRepo[*Plant](b) }
func (b degradedBackend) Vitamins() Repository[*Vitamin] { return degradedRepo[*Vitamin](b) }
func (b degradedBackend) Users() UserRepository          { return b }
func (b degradedBackend) Feedback() FeedbackRepository   { return b }
func (b degradedBackend) Ping(context.Context) error     { return nil }
func (b degradedBackend) Maintain(context.Context) error { return nil }
func (b degradedBackend) Close(context.Context) error    { return nil }

func (b degradedBackend) GetUser(context.Context, int64) (*User, error) { return nil, ErrNotFound }

func (b degradedBackend) SaveUser(ctx context.Context, u *User) error {
	b.logger.WarnContext(ctx, "Storage unavailable, dropping user update", "user_id", u.ID)
	return nil
}

func (b degradedBackend) CountUsers(context.Context) (int, error) { return 0, nil }

func (b degradedBackend) AddFeedback(ctx context.Context, fb *Feedback) error {
	b.logger.WarnContext(ctx, "Storage unavailable, dropping feedback", "user_id", fb.UserID)
	return nil
}

func (b degradedBackend) CountFeedback(context.Context) (int, error) { return 0, nil }
