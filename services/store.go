package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// The store interfaces below are the Relationship Store boundary. Every
// mutation that carries an invariant (capacity, pending-edge uniqueness,
// ownership) is a single conditional update: the store evaluates the
// precondition atomically with the write and reports whether it matched.
// Lookups return (nil, nil) when the document is absent.

// UserStore persists User documents and their social-graph sets.
type UserStore interface {
	// CreateUser inserts the user; a false return means the email is taken.
	CreateUser(ctx context.Context, u *models.User) (bool, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (bool, error)

	// AddSentRequest records receiver in the sender's sent set iff the pair
	// is in state None as seen from the sender document (not friends, no
	// pending edge in either direction).
	AddSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error)
	// AddReceivedRequest is the mirror write on the receiver document, with
	// the symmetric precondition.
	AddReceivedRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error)
	// PullSentRequest removes peer from the user's sent set iff present.
	PullSentRequest(ctx context.Context, userID, peerID primitive.ObjectID) (bool, error)
	// PullReceivedRequest removes peer from the user's received set iff present.
	PullReceivedRequest(ctx context.Context, userID, peerID primitive.ObjectID) (bool, error)
	// AcceptOnReceiver atomically clears the pending edge and adds the
	// friendship on the receiver document, iff the pending edge exists.
	// This is the write that linearizes concurrent accepts.
	AcceptOnReceiver(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error)
	// AcceptOnSender mirrors the accept on the sender document. Idempotent.
	AcceptOnSender(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error)
	// PullFriend removes friend from the user's friends set iff present.
	PullFriend(ctx context.Context, userID, friendID primitive.ObjectID) (bool, error)

	// AddRegisteredEvent / PullRegisteredEvent mirror event registration on
	// the user document. Both are idempotent set operations.
	AddRegisteredEvent(ctx context.Context, userID, eventID primitive.ObjectID) error
	PullRegisteredEvent(ctx context.Context, userID, eventID primitive.ObjectID) error

	SetBanned(ctx context.Context, userID primitive.ObjectID, banned bool) (bool, error)
	// ArchiveUser soft-deletes the account and defaces its email so the
	// address can be reused while references stay resolvable.
	ArchiveUser(ctx context.Context, userID primitive.ObjectID, defacedEmail string) (bool, error)

	// ListActiveUsers returns non-banned, non-archived users excluding the
	// given ids, for friend suggestions.
	ListActiveUsers(ctx context.Context, exclude []primitive.ObjectID) ([]models.User, error)
}

// EventStore persists Event documents.
type EventStore interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) (bool, error)
	ArchiveEvent(ctx context.Context, id primitive.ObjectID) (bool, error)

	// RegisterParticipant adds the user to registered_users iff the event is
	// live, starts after now, the user is not already registered and the set
	// is below capacity — all evaluated atomically with the push. A false
	// return means some precondition failed; the caller re-reads to classify.
	RegisterParticipant(ctx context.Context, eventID, userID primitive.ObjectID, now time.Time) (bool, error)
	// UnregisterParticipant pulls the user iff registered.
	UnregisterParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error)

	// ListUpcoming returns non-archived scheduled events starting after now,
	// newest first.
	ListUpcoming(ctx context.Context, now time.Time) ([]models.Event, error)
}

// RatingStore persists Rating documents, unique per (event, user).
type RatingStore interface {
	// CreateRating inserts the rating; a false return means a rating for the
	// same (event, user) pair already exists.
	CreateRating(ctx context.Context, r *models.Rating) (bool, error)
	DeleteRating(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error)
	// AverageForEvent returns the arithmetic mean of all scores for the
	// event, 0 when no ratings exist.
	AverageForEvent(ctx context.Context, eventID primitive.ObjectID) (float64, error)
}

// CommentStore persists Comment documents with dual-authority archival bits.
type CommentStore interface {
	CreateComment(ctx context.Context, cm *models.Comment) error
	GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// UpdateContent edits the comment iff userID is its author.
	UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string) (bool, error)
	// SetArchivedByOwner flags the comment iff userID is its author.
	SetArchivedByOwner(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	SetArchivedByOrganizer(ctx context.Context, id primitive.ObjectID) (bool, error)
	// ListVisibleByEvent returns comments with neither archival bit set.
	ListVisibleByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Comment, error)
}
