package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventStatusScheduled = "SCHEDULED"
	EventStatusCancelled = "CANCELLED"
	EventStatusCompleted = "COMPLETED"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Organizer   primitive.ObjectID `bson:"organizer" json:"organizer"` // immutable after creation
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	City        primitive.ObjectID `bson:"city,omitempty" json:"city,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`

	Interests []primitive.ObjectID `bson:"interests,omitempty" json:"interests,omitempty"`

	StartDate       time.Time `bson:"start_date" json:"start_date"`
	EndDate         time.Time `bson:"end_date" json:"end_date"`
	MaxParticipants int       `bson:"max_participants" json:"max_participants"`

	// Size never exceeds MaxParticipants; only participant-role users appear.
	RegisteredUsers []primitive.ObjectID `bson:"registered_users" json:"registered_users"`

	Status     string   `bson:"status" json:"status"` // SCHEDULED, CANCELLED, COMPLETED
	IsArchived bool     `bson:"is_archived" json:"-"`
	Images     []string `bson:"images" json:"images"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AvailableSpots returns the number of open registration slots.
func (e *Event) AvailableSpots() int {
	return e.MaxParticipants - len(e.RegisteredUsers)
}

// HasRegistered reports whether the user id is in the registered set.
func (e *Event) HasRegistered(id primitive.ObjectID) bool {
	return containsID(e.RegisteredUsers, id)
}
