package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/plexybot/internal/knowledge"
)

// entityRepo stores one entity kind in the shared entities table.
type entityRepo[T knowledge.Record[T]] struct {
	db     *sqlx.DB
	kind   knowledge.Kind
	logger *slog.Logger
}

func newEntityRepo[T knowledge.Record[T]](db *sqlx.DB, kind knowledge.Kind, logger *slog.Logger) *entityRepo[T] {
	return &entityRepo[T]{db: db, kind: kind, logger: logger.With("kind", kind)}
}

const entityColumns = `id, kind, name, name_key, search_key, data, created_at, updated_at`

func (r *entityRepo[T]) decode(row entityRow) (T, error) {
	var rec T
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return rec, fmt.Errorf("decode %s %q: %w", r.kind, row.Name, err)
	}
	return rec, nil
}

func (r *entityRepo[T]) decodeAll(ctx context.Context, rows []entityRow) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := r.decode(row)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping undecodable entity", "entity", row.Name, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *entityRepo[T]) FindByKey(ctx context.Context, key string) (T, error) {
	var zero T
	var row entityRow
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = ? AND name_key = ?;`
	err := r.db.GetContext(ctx, &row, query, r.kind, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return zero, knowledge.ErrNotFound
	case err != nil:
		return zero, fmt.Errorf("failed to query %s %q: %w", r.kind, key, err)
	}
	return r.decode(row)
}

func (r *entityRepo[T]) selectWhere(ctx context.Context, cond string, limit int, args ...any) ([]T, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = ?` + cond + ` ORDER BY id ASC LIMIT ?;`
	params := append([]any{r.kind}, args...)
	params = append(params, limit)

	var rows []entityRow
	if err := r.db.SelectContext(ctx, &rows, query, params...); err != nil {
		return nil, fmt.Errorf("failed to query %s entities: %w", r.kind, err)
	}
	return r.decodeAll(ctx, rows)
}

// instr is used instead of LIKE: sqlite's LIKE only folds ASCII case, while
// both sides here are already lower-cased in Go.
func (r *entityRepo[T]) FindNameContaining(ctx context.Context, fragment string, limit int) ([]T, error) {
	return r.selectWhere(ctx, ` AND instr(name_key, ?) > 0`, limit, strings.ToLower(fragment))
}

func (r *entityRepo[T]) Search(ctx context.Context, keyword string, limit int) ([]T, error) {
	return r.selectWhere(ctx, ` AND instr(search_key, ?) > 0`, limit, strings.ToLower(keyword))
}

func (r *entityRepo[T]) List(ctx context.Context, limit int) ([]T, error) {
	return r.selectWhere(ctx, "", limit)
}

func (r *entityRepo[T]) Save(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", r.kind, rec.DisplayName(), err)
	}
	now := time.Now().UTC()
	row := entityRow{
		Kind:      string(r.kind),
		Name:      rec.DisplayName(),
		NameKey:   knowledge.NameKey(rec.DisplayName()),
		SearchKey: rec.SearchText(),
		Data:      string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// ON CONFLICT keeps the row id, so the record keeps its insertion position.
	query := `
        INSERT INTO entities (kind, name, name_key, search_key, data, created_at, updated_at)
        VALUES (:kind, :name, :name_key, :search_key, :data, :created_at, :updated_at)
        ON CONFLICT (kind, name_key) DO UPDATE SET
            name = excluded.name,
            search_key = excluded.search_key,
            data = excluded.data,
            updated_at = excluded.updated_at;
    `
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.ErrorContext(ctx, "Error saving entity", "entity", row.Name, "error", err)
		return fmt.Errorf("failed to save %s %q: %w", r.kind, row.Name, err)
	}
	return nil
}

func (r *entityRepo[T]) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entities WHERE kind = ? AND name_key = ?;`, r.kind, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", r.kind, key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return knowledge.ErrNotFound
	}
	return nil
}

func (r *entityRepo[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM entities WHERE kind = ?;`, r.kind); err != nil {
		return 0, fmt.Errorf("failed to count %s entities: %w", r.kind, err)
	}
	return n, nil
}
