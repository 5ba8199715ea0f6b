package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin       = "admin"
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"` // admin, organizer, participant
	AvatarURL      string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	IsBanned       bool               `bson:"is_banned" json:"is_banned"`
	IsArchived     bool               `bson:"is_archived" json:"-"`

	City      primitive.ObjectID   `bson:"city,omitempty" json:"city,omitempty"`
	Interests []primitive.ObjectID `bson:"interests,omitempty" json:"interests,omitempty"`

	// Social graph. Friends is always symmetric; the two request sets hold
	// the asymmetric pending edges. An id never appears in both a request
	// set and friends.
	Friends                []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	FriendRequestsSent     []primitive.ObjectID `bson:"friend_requests_sent,omitempty" json:"friend_requests_sent,omitempty"`
	FriendRequestsReceived []primitive.ObjectID `bson:"friend_requests_received,omitempty" json:"friend_requests_received,omitempty"`

	RegisteredEvents []primitive.ObjectID `bson:"registered_events,omitempty" json:"registered_events,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasFriend reports whether id is in the user's friends set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

func (u *User) HasSentRequestTo(id primitive.ObjectID) bool {
	return containsID(u.FriendRequestsSent, id)
}

func (u *User) HasReceivedRequestFrom(id primitive.ObjectID) bool {
	return containsID(u.FriendRequestsReceived, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
