package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/gatherly/gatherly-api/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) (bool, error) {
	res, err := s.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return true, nil
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (bool, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.City != nil {
		set["city"] = *patch.City
	}
	if patch.Interests != nil {
		set["interests"] = patch.Interests
	}
	if patch.AvatarURL != nil {
		set["avatar_url"] = *patch.AvatarURL
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id, "is_archived": false},
		bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// AddSentRequest pushes only when the pair is in state None as seen from the
// sender document: not friends, no pending edge in either direction.
func (s *Store) AddSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":                      senderID,
		"is_archived":              false,
		"friends":                  bson.M{"$ne": receiverID},
		"friend_requests_sent":     bson.M{"$ne": receiverID},
		"friend_requests_received": bson.M{"$ne": receiverID},
	}
	update := bson.M{
		"$addToSet": bson.M{"friend_requests_sent": receiverID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("add sent request: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) AddReceivedRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":                      receiverID,
		"is_archived":              false,
		"friends":                  bson.M{"$ne": senderID},
		"friend_requests_sent":     bson.M{"$ne": senderID},
		"friend_requests_received": bson.M{"$ne": senderID},
	}
	update := bson.M{
		"$addToSet": bson.M{"friend_requests_received": senderID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("add received request: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) PullSentRequest(ctx context.Context, userID, peerID primitive.ObjectID) (bool, error) {
	return s.pullFromSet(ctx, userID, "friend_requests_sent", peerID)
}

func (s *Store) PullReceivedRequest(ctx context.Context, userID, peerID primitive.ObjectID) (bool, error) {
	return s.pullFromSet(ctx, userID, "friend_requests_received", peerID)
}

func (s *Store) PullFriend(ctx context.Context, userID, friendID primitive.ObjectID) (bool, error) {
	return s.pullFromSet(ctx, userID, "friends", friendID)
}

// pullFromSet removes value from the named set iff present; the presence
// check sits in the filter so concurrent pulls for the same edge see exactly
// one match.
func (s *Store) pullFromSet(ctx context.Context, userID primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": userID, field: value}
	update := bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("pull %s: %w", field, err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) AcceptOnReceiver(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": receiverID, "friend_requests_received": senderID}
	update := bson.M{
		"$pull":     bson.M{"friend_requests_received": senderID},
		"$addToSet": bson.M{"friends": senderID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("accept on receiver: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) AcceptOnSender(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": senderID}
	update := bson.M{
		"$pull":     bson.M{"friend_requests_sent": receiverID},
		"$addToSet": bson.M{"friends": receiverID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("accept on sender: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) AddRegisteredEvent(ctx context.Context, userID, eventID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"registered_events": eventID}})
	if err != nil {
		return fmt.Errorf("add registered event: %w", err)
	}
	return nil
}

func (s *Store) PullRegisteredEvent(ctx context.Context, userID, eventID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"registered_events": eventID}})
	if err != nil {
		return fmt.Errorf("pull registered event: %w", err)
	}
	return nil
}

func (s *Store) SetBanned(ctx context.Context, userID primitive.ObjectID, banned bool) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"is_banned": banned, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("set banned: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ArchiveUser(ctx context.Context, userID primitive.ObjectID, defacedEmail string) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "is_archived": false},
		bson.M{"$set": bson.M{"is_archived": true, "email": defacedEmail, "updated_at": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("archive user: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ListActiveUsers(ctx context.Context, exclude []primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{
		"_id":         bson.M{"$nin": exclude},
		"is_banned":   false,
		"is_archived": false,
	}
	cur, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
