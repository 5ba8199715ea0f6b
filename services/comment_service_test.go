package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
)

func commentFixture(t *testing.T) (*memstore.Store, *CommentService, *models.Event, *models.User, *models.User) {
	t.Helper()
	st := memstore.New()
	svc := NewCommentService(st, st, newNoopLogger())
	organizer := seedUser(t, st, models.RoleOrganizer)
	author := seedUser(t, st, models.RoleParticipant)
	e := seedEvent(t, st, organizer.ID, 5, time.Now().Add(24*time.Hour), time.Now().Add(26*time.Hour))
	return st, svc, e, organizer, author
}

func TestCreateComment(t *testing.T) {
	_, svc, e, _, author := commentFixture(t)

	cm, err := svc.CreateComment(context.Background(), e.ID, author.ID, "see you there")
	require.NoError(t, err)
	assert.Equal(t, author.ID, cm.UserID)
	assert.False(t, cm.ArchivedByOwner)
	assert.False(t, cm.ArchivedByOrganizer)

	_, err = svc.CreateComment(context.Background(), primitive.NewObjectID(), author.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateComment(context.Background(), e.ID, author.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateComment_OwnerOnly(t *testing.T) {
	_, svc, e, organizer, author := commentFixture(t)

	cm, err := svc.CreateComment(context.Background(), e.ID, author.ID, "first")
	require.NoError(t, err)

	// Not even the organizer may edit someone else's comment.
	_, err = svc.UpdateComment(context.Background(), cm.ID, organizer.ID, "edited")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateComment(context.Background(), cm.ID, author.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestDeleteAsOwner(t *testing.T) {
	st, svc, e, organizer, author := commentFixture(t)

	cm, err := svc.CreateComment(context.Background(), e.ID, author.ID, "gone soon")
	require.NoError(t, err)

	err = svc.DeleteAsOwner(context.Background(), cm.ID, organizer.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteAsOwner(context.Background(), cm.ID, author.ID))

	visible, err := svc.ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Soft delete: the record survives with only the owner bit set.
	raw, err := st.GetComment(context.Background(), cm.ID)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.True(t, raw.ArchivedByOwner)
	assert.False(t, raw.ArchivedByOrganizer)
}

func TestDeleteAsOrganizer(t *testing.T) {
	st, svc, e, organizer, author := commentFixture(t)

	cm, err := svc.CreateComment(context.Background(), e.ID, author.ID, "spam")
	require.NoError(t, err)

	// The author holds no organizer authority.
	err = svc.DeleteAsOrganizer(context.Background(), cm.ID, author.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteAsOrganizer(context.Background(), cm.ID, organizer.ID))

	visible, err := svc.ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	raw, err := st.GetComment(context.Background(), cm.ID)
	require.NoError(t, err)
	assert.False(t, raw.ArchivedByOwner)
	assert.True(t, raw.ArchivedByOrganizer)
}

func TestListByEvent_HidesEitherAuthority(t *testing.T) {
	_, svc, e, organizer, author := commentFixture(t)

	keep, err := svc.CreateComment(context.Background(), e.ID, author.ID, "stays")
	require.NoError(t, err)
	ownerHidden, err := svc.CreateComment(context.Background(), e.ID, author.ID, "owner hides")
	require.NoError(t, err)
	organizerHidden, err := svc.CreateComment(context.Background(), e.ID, author.ID, "organizer hides")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAsOwner(context.Background(), ownerHidden.ID, author.ID))
	require.NoError(t, svc.DeleteAsOrganizer(context.Background(), organizerHidden.ID, organizer.ID))

	visible, err := svc.ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, keep.ID, visible[0].ID)
}
