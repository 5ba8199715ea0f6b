package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment carries two independent archival bits: the owner and the event
// organizer can each hide the comment without touching the other's flag,
// and the record itself is never deleted.
type Comment struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID             primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"user_id"` // author, immutable
	Content             string             `bson:"content" json:"content"`
	ArchivedByOwner     bool               `bson:"archived_by_owner" json:"-"`
	ArchivedByOrganizer bool               `bson:"archived_by_organizer" json:"-"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}
