package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// RatingService owns post-event rating eligibility: a user may rate an event
// once, only after it has ended, and only if they were registered for it.
type RatingService struct {
	ratings RatingStore
	events  EventStore
	log     *slog.Logger
	now     func() time.Time
}

func NewRatingService(ratings RatingStore, events EventStore, log *slog.Logger) *RatingService {
	return &RatingService{ratings: ratings, events: events, log: log, now: time.Now}
}

// CreateRating records a score for (event, user). Uniqueness of the pair is
// enforced by the store, not by a prior read.
func (s *RatingService) CreateRating(ctx context.Context, eventID, userID primitive.ObjectID, score int) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, invalidf("score must be between 1 and 5")
	}
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.IsArchived {
		return nil, notFoundf("event not found")
	}
	if !e.HasRegistered(userID) {
		return nil, forbiddenf("only registered participants can rate the event")
	}
	if s.now().Before(e.EndDate) {
		return nil, forbiddenf("event can only be rated after it has ended")
	}

	r := &models.Rating{
		EventID:   eventID,
		UserID:    userID,
		Score:     score,
		CreatedAt: s.now(),
	}
	inserted, err := s.ratings.CreateRating(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}
	if !inserted {
		return nil, conflictf("event already rated by this user")
	}
	s.log.Info("rating created", slog.String("event_id", eventID.Hex()),
		slog.String("user_id", userID.Hex()), slog.Int("score", score))
	return r, nil
}

// EventAverageRating returns the mean score for the event, 0 when the event
// has no ratings yet.
func (s *RatingService) EventAverageRating(ctx context.Context, eventID primitive.ObjectID) (float64, error) {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if e == nil || e.IsArchived {
		return 0, notFoundf("event not found")
	}
	avg, err := s.ratings.AverageForEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

// CancelRating deletes the user's rating for the event.
func (s *RatingService) CancelRating(ctx context.Context, eventID, userID primitive.ObjectID) error {
	deleted, err := s.ratings.DeleteRating(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if !deleted {
		return notFoundf("rating not found")
	}
	s.log.Info("rating cancelled", slog.String("event_id", eventID.Hex()), slog.String("user_id", userID.Hex()))
	return nil
}
