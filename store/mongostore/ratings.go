package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/gatherly/gatherly-api/models"
)

// CreateRating relies on the unique (event_id, user_id) index; a duplicate
// key error means another rating for the pair won the race.
func (s *Store) CreateRating(ctx context.Context, r *models.Rating) (bool, error) {
	res, err := s.ratings.InsertOne(ctx, r)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert rating: %w", err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return true, nil
}

func (s *Store) DeleteRating(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	res, err := s.ratings.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func (s *Store) AverageForEvent(ctx context.Context, eventID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$score"}}}},
	}
	cur, err := s.ratings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer cur.Close(ctx)

	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("decode rating average: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Avg, nil
}
