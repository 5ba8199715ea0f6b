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

func (s *Store) CreateComment(ctx context.Context, cm *models.Comment) error {
	res, err := s.comments.InsertOne(ctx, cm)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	cm.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var cm models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&cm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &cm, nil
}

// UpdateContent carries the ownership check in the filter.
func (s *Store) UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string) (bool, error) {
	res, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) SetArchivedByOwner(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"archived_by_owner": true, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("archive comment by owner: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) SetArchivedByOrganizer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"archived_by_organizer": true, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("archive comment by organizer: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ListVisibleByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Comment, error) {
	filter := bson.M{
		"event_id":              eventID,
		"archived_by_owner":     false,
		"archived_by_organizer": false,
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.comments.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}
