package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/gatherly/gatherly-api/models"
)

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	res, err := s.events.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) (bool, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.City != nil {
		set["city"] = *patch.City
	}
	if patch.Interests != nil {
		set["interests"] = patch.Interests
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["end_date"] = *patch.EndDate
	}
	if patch.MaxParticipants != nil {
		set["max_participants"] = *patch.MaxParticipants
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Images != nil {
		set["images"] = patch.Images
	}
	filter := bson.M{"_id": id, "is_archived": false}
	if patch.MaxParticipants != nil {
		// Same atomicity trick as RegisterParticipant: the size comparison
		// sits in the filter so a racing registration cannot push the set
		// past the shrunk capacity.
		filter["$expr"] = bson.M{"$lte": bson.A{
			bson.M{"$size": "$registered_users"},
			*patch.MaxParticipants,
		}}
	}
	res, err := s.events.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update event: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ArchiveEvent(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.events.UpdateOne(ctx,
		bson.M{"_id": id, "is_archived": false},
		bson.M{"$set": bson.M{"is_archived": true, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("archive event: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// RegisterParticipant pushes iff the event is live, has not started, the
// user is absent from the set and the set is below capacity. The $expr size
// comparison makes the capacity check atomic with the push, so N concurrent
// registrations for the last slot produce exactly one match.
func (s *Store) RegisterParticipant(ctx context.Context, eventID, userID primitive.ObjectID, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":              eventID,
		"is_archived":      false,
		"status":           models.EventStatusScheduled,
		"start_date":       bson.M{"$gt": now},
		"registered_users": bson.M{"$ne": userID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": "$registered_users"},
			"$max_participants",
		}},
	}
	update := bson.M{
		"$addToSet": bson.M{"registered_users": userID},
		"$set":      bson.M{"updated_at": now},
	}
	res, err := s.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("register participant: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) UnregisterParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": eventID, "registered_users": userID}
	update := bson.M{
		"$pull": bson.M{"registered_users": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := s.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("unregister participant: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ListUpcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	filter := bson.M{
		"is_archived": false,
		"status":      models.EventStatusScheduled,
		"start_date":  bson.M{"$gt": now},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.events.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
