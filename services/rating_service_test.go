package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
)

// ratedEventFixture seeds an event that ended at end with one registered
// participant.
func ratedEventFixture(t *testing.T, st *memstore.Store, start, end time.Time) (*models.Event, *models.User) {
	t.Helper()
	organizer := seedUser(t, st, models.RoleOrganizer)
	p := seedUser(t, st, models.RoleParticipant)
	e := seedEvent(t, st, organizer.ID, 5, start, end)

	matched, err := st.RegisterParticipant(context.Background(), e.ID, p.ID, start.Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, matched)
	return e, p
}

func TestCreateRating_EndDateBoundary(t *testing.T) {
	st := memstore.New()
	svc := NewRatingService(st, st, newNoopLogger())

	end := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	e, p := ratedEventFixture(t, st, end.Add(-2*time.Hour), end)

	// One second before the event ends: not yet ratable.
	svc.now = fixedClock(end.Add(-time.Second))
	_, err := svc.CreateRating(context.Background(), e.ID, p.ID, 5)
	assert.ErrorIs(t, err, ErrForbidden)

	// One second after: ratable, and the average reflects the score.
	svc.now = fixedClock(end.Add(time.Second))
	r, err := svc.CreateRating(context.Background(), e.ID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Score)

	avg, err := svc.EventAverageRating(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestCreateRating_Validation(t *testing.T) {
	st := memstore.New()
	svc := NewRatingService(st, st, newNoopLogger())

	end := time.Now().Add(-time.Hour)
	e, p := ratedEventFixture(t, st, end.Add(-2*time.Hour), end)

	for _, score := range []int{0, 6, -1} {
		_, err := svc.CreateRating(context.Background(), e.ID, p.ID, score)
		assert.ErrorIs(t, err, ErrInvalidInput, "score %d", score)
	}

	_, err := svc.CreateRating(context.Background(), primitive.NewObjectID(), p.ID, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	outsider := seedUser(t, st, models.RoleParticipant)
	_, err = svc.CreateRating(context.Background(), e.ID, outsider.ID, 3)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateRating_DuplicateConcurrent(t *testing.T) {
	st := memstore.New()
	svc := NewRatingService(st, st, newNoopLogger())

	end := time.Now().Add(-time.Hour)
	e, p := ratedEventFixture(t, st, end.Add(-2*time.Hour), end)

	const attempts = 8
	var wg sync.WaitGroup
	var successCount, conflictCount int64
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.CreateRating(context.Background(), e.ID, p.ID, 4)
			switch {
			case err == nil:
				atomic.AddInt64(&successCount, 1)
			case assert.ErrorIs(t, err, ErrConflict):
				atomic.AddInt64(&conflictCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount)
	assert.Equal(t, int64(attempts-1), conflictCount)
}

func TestEventAverageRating(t *testing.T) {
	st := memstore.New()
	svc := NewRatingService(st, st, newNoopLogger())

	end := time.Now().Add(-time.Hour)
	organizer := seedUser(t, st, models.RoleOrganizer)
	e := seedEvent(t, st, organizer.ID, 5, end.Add(-2*time.Hour), end)

	// No ratings: explicit zero, not an error.
	avg, err := svc.EventAverageRating(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	for _, score := range []int{2, 4} {
		p := seedUser(t, st, models.RoleParticipant)
		matched, regErr := st.RegisterParticipant(context.Background(), e.ID, p.ID, end.Add(-3*time.Hour))
		require.NoError(t, regErr)
		require.True(t, matched)
		_, err = svc.CreateRating(context.Background(), e.ID, p.ID, score)
		require.NoError(t, err)
	}

	avg, err = svc.EventAverageRating(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)

	_, err = svc.EventAverageRating(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelRating(t *testing.T) {
	st := memstore.New()
	svc := NewRatingService(st, st, newNoopLogger())

	end := time.Now().Add(-time.Hour)
	e, p := ratedEventFixture(t, st, end.Add(-2*time.Hour), end)

	_, err := svc.CreateRating(context.Background(), e.ID, p.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.CancelRating(context.Background(), e.ID, p.ID))

	err = svc.CancelRating(context.Background(), e.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	avg, err := svc.EventAverageRating(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}
