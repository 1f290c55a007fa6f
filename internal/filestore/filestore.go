// Package filestore is a flat-file JSON backend of the knowledge store:
// one file per record plus an ordered index per entity kind.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edgard/plexybot/internal/knowledge"
)

// Store implements knowledge.Backend on a directory tree.
type Store struct {
	dir      string
	plants   *entityRepo[*knowledge.Plant]
	vitamins *entityRepo[*knowledge.Vitamin]
	userMu   sync.Mutex
	logger   *slog.Logger
}

var _ knowledge.Backend = (*Store)(nil)

// Open prepares dir and loads the indexes.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "file_store")

	for _, sub := range []string{"plants", "vitamins", "users", "feedback"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", sub, err)
		}
	}

	plants, err := openEntityRepo[*knowledge.Plant](dir, "plants", log)
	if err != nil {
		return nil, err
	}
	vitamins, err := openEntityRepo[*knowledge.Vitamin](dir, "vitamins", log)
	if err != nil {
		return nil, err
	}

	log.Info("File store opened", "dir", dir, "plants", len(plants.index), "vitamins", len(vitamins.index))
	return &Store{dir: dir, plants: plants, vitamins: vitamins, logger: log}, nil
}

func (s *Store) Plants() knowledge.Repository[*knowledge.Plant]     { return s.plants }
func (s *Store) Vitamins() knowledge.Repository[*knowledge.Vitamin] { return s.vitamins }
func (s *Store) Users() knowledge.UserRepository                    { return s }
func (s *Store) Feedback() knowledge.FeedbackRepository             { return s }
func (s *Store) Close(context.Context) error                        { return nil }

// Ping checks that the directory is still reachable.
func (s *Store) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// Maintain rewrites the indexes and removes record files no index refers to.
func (s *Store) Maintain(ctx context.Context) error {
	removedPlants, err := s.plants.compact()
	if err != nil {
		return err
	}
	removedVitamins, err := s.vitamins.compact()
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "File store compacted", "orphans_removed", removedPlants+removedVitamins)
	return nil
}

func (s *Store) userPath(id int64) string {
	return filepath.Join(s.dir, "users", strconv.FormatInt(id, 10)+".json")
}

func (s *Store) GetUser(_ context.Context, userID int64) (*knowledge.User, error) {
	var u knowledge.User
	if err := readJSON(s.userPath(userID), &u); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, knowledge.ErrNotFound
		}
		return nil, fmt.Errorf("read user %d: %w", userID, err)
	}
	return &u, nil
}

func (s *Store) SaveUser(_ context.Context, u *knowledge.User) error {
	s.userMu.Lock()
	defer s.userMu.Unlock()
	return writeJSON(s.userPath(u.ID), u)
}

func (s *Store) CountUsers(context.Context) (int, error) {
	return countJSON(filepath.Join(s.dir, "users"))
}

func (s *Store) AddFeedback(_ context.Context, fb *knowledge.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	path := filepath.Join(s.dir, "feedback", fb.ID+".json")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("feedback %s already exists", fb.ID)
	}
	return writeJSON(path, fb)
}

func (s *Store) CountFeedback(context.Context) (int, error) {
	return countJSON(filepath.Join(s.dir, "feedback"))
}

func countJSON(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes through a temp file and rename so readers never see a
// partially written file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
