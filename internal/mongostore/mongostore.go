// Package mongostore is the MongoDB backend of the knowledge store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	collPlants   = "plants"
	collVitamins = "vitamins"
	collUsers    = "users"
	collFeedback = "feedback"
)

// Config holds connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Store implements knowledge.Backend on MongoDB.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	plants   *entityRepo[*knowledge.Plant]
	vitamins *entityRepo[*knowledge.Vitamin]
	logger   *slog.Logger
}

var _ knowledge.Backend = (*Store)(nil)

// Open connects, pings and prepares indexes. Any failure is returned so the
// caller can fall back to degraded mode.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	log := logger.With("component", "mongo_store")

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		db:       db,
		plants:   &entityRepo[*knowledge.Plant]{coll: db.Collection(collPlants), kind: knowledge.KindPlant},
		vitamins: &entityRepo[*knowledge.Vitamin]{coll: db.Collection(collVitamins), kind: knowledge.KindVitamin},
		logger:   log,
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("Connected to MongoDB", "database", cfg.Database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "name_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, name := range []string{collPlants, collVitamins} {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, unique); err != nil {
			return fmt.Errorf("failed to create name index on %s: %w", name, err)
		}
	}
	_, err := s.db.Collection(collFeedback).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create feedback index: %w", err)
	}
	return nil
}

func (s *Store) Plants() knowledge.Repository[*knowledge.Plant]     { return s.plants }
func (s *Store) Vitamins() knowledge.Repository[*knowledge.Vitamin] { return s.vitamins }
func (s *Store) Users() knowledge.UserRepository                    { return s }
func (s *Store) Feedback() knowledge.FeedbackRepository             { return s }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Maintain verifies connectivity and re-creates missing indexes.
func (s *Store) Maintain(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("mongodb ping: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "MongoDB maintenance completed")
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type entityDoc[T any] struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	NameKey   string             `bson:"name_key"`
	SearchKey string             `bson:"search_key"`
	Record    T                  `bson:"record"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type entityRepo[T knowledge.Record[T]] struct {
	coll *mongo.Collection
	kind knowledge.Kind
}

func (r *entityRepo[T]) FindByKey(ctx context.Context, key string) (T, error) {
	var doc entityDoc[T]
	err := r.coll.FindOne(ctx, bson.M{"name_key": key}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		var zero T
		return zero, knowledge.ErrNotFound
	case err != nil:
		var zero T
		return zero, fmt.Errorf("find %s %q: %w", r.kind, key, err)
	}
	return doc.Record, nil
}

func (r *entityRepo[T]) find(ctx context.Context, filter bson.M, limit int) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s entities: %w", r.kind, err)
	}
	var docs []entityDoc[T]
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s entities: %w", r.kind, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Record)
	}
	return out, nil
}

func containsFilter(field, fragment string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(fragment)}}
}

func (r *entityRepo[T]) FindNameContaining(ctx context.Context, fragment string, limit int) ([]T, error) {
	return r.find(ctx, containsFilter("name_key", fragment), limit)
}

func (r *entityRepo[T]) Search(ctx context.Context, keyword string, limit int) ([]T, error) {
	return r.find(ctx, containsFilter("search_key", keyword), limit)
}

func (r *entityRepo[T]) List(ctx context.Context, limit int) ([]T, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *entityRepo[T]) Save(ctx context.Context, rec T) error {
	key := knowledge.NameKey(rec.DisplayName())
	update := bson.M{"$set": bson.M{
		"name_key":   key,
		"search_key": rec.SearchText(),
		"record":     rec,
		"updated_at": time.Now().UTC(),
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"name_key": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s %q: %w", r.kind, rec.DisplayName(), err)
	}
	return nil
}

func (r *entityRepo[T]) Delete(ctx context.Context, key string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name_key": key})
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", r.kind, key, err)
	}
	if res.DeletedCount == 0 {
		return knowledge.ErrNotFound
	}
	return nil
}

func (r *entityRepo[T]) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s entities: %w", r.kind, err)
	}
	return int(n), nil
}

type userDoc struct {
	ID   int64          `bson:"_id"`
	User knowledge.User `bson:",inline"`
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*knowledge.User, error) {
	var doc userDoc
	err := s.db.Collection(collUsers).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, knowledge.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return &doc.User, nil
}

func (s *Store) SaveUser(ctx context.Context, u *knowledge.User) error {
	_, err := s.db.Collection(collUsers).ReplaceOne(ctx,
		bson.M{"_id": u.ID},
		userDoc{ID: u.ID, User: *u},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.ID, err)
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	n, err := s.db.Collection(collUsers).CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (s *Store) AddFeedback(ctx context.Context, fb *knowledge.Feedback) error {
	if _, err := s.db.Collection(collFeedback).InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *Store) CountFeedback(ctx context.Context) (int, error) {
	n, err := s.db.Collection(collFeedback).CountDocuments(ctx, bson.M{})
	return int(n), err
}
