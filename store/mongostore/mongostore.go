// Package mongostore implements the Relationship Store on MongoDB. Every
// invariant-bearing mutation is a single UpdateOne whose filter carries the
// precondition, so the check and the write are atomic per document.
package mongostore

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db       *mongo.Database
	users    *mongo.Collection
	events   *mongo.Collection
	ratings  *mongo.Collection
	comments *mongo.Collection
}

func New(db *mongo.Database) *Store {
	s := &Store{
		db:       db,
		users:    db.Collection("users"),
		events:   db.Collection("events"),
		ratings:  db.Collection("ratings"),
		comments: db.Collection("comments"),
	}
	if err := s.EnsureIndexes(context.Background()); err != nil {
		log.Printf("[warn] EnsureIndexes: %v", err)
	}
	return s
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_date", Value: 1}},
			Options: options.Index().SetName("events_start_date"),
		},
		{
			Keys:    bson.D{{Key: "registered_users", Value: 1}},
			Options: options.Index().SetName("events_registered_users"),
		},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}

	// The compound unique index is what makes rating creation race-safe:
	// concurrent inserts for the same (event, user) collide here.
	_, err = s.ratings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ratings_event_user_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("ratings indexes: %w", err)
	}

	_, err = s.comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("comments_event_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("comments indexes: %w", err)
	}
	return nil
}
