package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is keyed by (event_id, user_id); a unique compound index enforces
// at most one rating per user per event.
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Score     int                `bson:"score" json:"score"` // 1-5
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
