package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func seedUser(t *testing.T, st *memstore.Store, role string) *models.User {
	t.Helper()
	u := &models.User{
		Name:           "user-" + primitive.NewObjectID().Hex()[:6],
		Email:          primitive.NewObjectID().Hex() + "@example.com",
		HashedPassword: "x",
		Role:           role,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	inserted, err := st.CreateUser(context.Background(), u)
	if err != nil || !inserted {
		t.Fatalf("seed user: inserted=%v err=%v", inserted, err)
	}
	return u
}

func seedEvent(t *testing.T, st *memstore.Store, organizer primitive.ObjectID, capacity int, start, end time.Time) *models.Event {
	t.Helper()
	now := time.Now()
	e := &models.Event{
		Organizer:       organizer,
		Title:           "event-" + primitive.NewObjectID().Hex()[:6],
		StartDate:       start,
		EndDate:         end,
		MaxParticipants: capacity,
		RegisteredUsers: []primitive.ObjectID{},
		Status:          models.EventStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := st.CreateEvent(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
