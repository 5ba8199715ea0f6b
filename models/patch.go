package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPatch is a partial profile update; nil fields are left untouched.
type UserPatch struct {
	Name      *string
	City      *primitive.ObjectID
	Interests []primitive.ObjectID
	AvatarURL *string
}

// EventPatch is a partial event update; nil fields are left untouched. The
// organizer is immutable and deliberately absent.
type EventPatch struct {
	Title           *string
	Description     *string
	Location        *string
	City            *primitive.ObjectID
	Interests       []primitive.ObjectID
	StartDate       *time.Time
	EndDate         *time.Time
	MaxParticipants *int
	Status          *string
	Images          []string
}
