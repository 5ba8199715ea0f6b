package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
)

// assertPairConsistent checks the relationship invariants for a pair: friend
// membership is symmetric and no id sits in both a request set and friends.
func assertPairConsistent(t *testing.T, st *memstore.Store, aID, bID primitive.ObjectID) {
	t.Helper()
	a, err := st.GetUser(context.Background(), aID)
	require.NoError(t, err)
	b, err := st.GetUser(context.Background(), bID)
	require.NoError(t, err)

	assert.Equal(t, a.HasFriend(bID), b.HasFriend(aID), "friends must be symmetric")
	assert.Equal(t, a.HasSentRequestTo(bID), b.HasReceivedRequestFrom(aID), "pending edge must be mirrored")
	assert.Equal(t, b.HasSentRequestTo(aID), a.HasReceivedRequestFrom(bID), "pending edge must be mirrored")
	if a.HasFriend(bID) {
		assert.False(t, a.HasSentRequestTo(bID) || a.HasReceivedRequestFrom(bID))
		assert.False(t, b.HasSentRequestTo(aID) || b.HasReceivedRequestFrom(aID))
	}
}

func TestSendFriendRequest(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
	assertPairConsistent(t, st, a.ID, b.ID)

	// Duplicate in the same direction.
	err := svc.SendFriendRequest(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Crossing request while one is pending.
	err = svc.SendFriendRequest(context.Background(), b.ID, a.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSendFriendRequest_Validation(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)

	err := svc.SendFriendRequest(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.SendFriendRequest(context.Background(), a.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriendRequest_AcceptMakesFriends(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
	require.NoError(t, svc.AcceptFriendRequest(context.Background(), b.ID, a.ID))
	assertPairConsistent(t, st, a.ID, b.ID)

	ua, err := st.GetUser(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, ua.HasFriend(b.ID))
	assert.Empty(t, ua.FriendRequestsSent)

	// A second send while friends is a conflict.
	err = svc.SendFriendRequest(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFriendRequest_RoundTripCancel(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
	require.NoError(t, svc.CancelFriendRequest(context.Background(), a.ID, b.ID))

	// Back to state None on both documents.
	ua, err := st.GetUser(context.Background(), a.ID)
	require.NoError(t, err)
	ub, err := st.GetUser(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, ua.FriendRequestsSent)
	assert.Empty(t, ua.Friends)
	assert.Empty(t, ub.FriendRequestsReceived)
	assert.Empty(t, ub.Friends)

	// Cancelling again is NotFound, never a silent success.
	err = svc.CancelFriendRequest(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriendRequest_Reject(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
	require.NoError(t, svc.RejectFriendRequest(context.Background(), b.ID, a.ID))
	assertPairConsistent(t, st, a.ID, b.ID)

	// After reject the pair is None again and a new request may be sent.
	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
}

func TestAcceptFriendRequest_Missing(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	err := svc.AcceptFriendRequest(context.Background(), b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two concurrent accepts for the same pending request: exactly one wins.
func TestAcceptFriendRequest_ArchivedSender(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	sender := seedUser(t, st, models.RoleParticipant)
	receiver := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), sender.ID, receiver.ID))

	matched, err := st.ArchiveUser(context.Background(), sender.ID, "deleted+"+sender.ID.Hex()+"@gatherly.invalid")
	require.NoError(t, err)
	require.True(t, matched)

	// The stale pending edge must not turn into a friendship with a dead
	// account.
	err = svc.AcceptFriendRequest(context.Background(), receiver.ID, sender.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := st.GetUser(context.Background(), receiver.ID)
	require.NoError(t, err)
	assert.Empty(t, u.Friends)
}

func TestAcceptFriendRequest_Concurrent(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)
	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))

	const attempts = 8
	var wg sync.WaitGroup
	var successCount, notFoundCount int64
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			err := svc.AcceptFriendRequest(context.Background(), b.ID, a.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&successCount, 1)
			case assert.ErrorIs(t, err, ErrNotFound):
				atomic.AddInt64(&notFoundCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount)
	assert.Equal(t, int64(attempts-1), notFoundCount)
	assertPairConsistent(t, st, a.ID, b.ID)
}

// Crossing requests racing in both directions must leave the pair in a
// consistent state: at most one pending edge, mirrored on both documents.
func TestSendFriendRequest_CrossingConcurrent(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = svc.SendFriendRequest(context.Background(), a.ID, b.ID)
	}()
	go func() {
		defer wg.Done()
		_ = svc.SendFriendRequest(context.Background(), b.ID, a.ID)
	}()
	wg.Wait()

	assertPairConsistent(t, st, a.ID, b.ID)

	ua, err := st.GetUser(context.Background(), a.ID)
	require.NoError(t, err)
	ub, err := st.GetUser(context.Background(), b.ID)
	require.NoError(t, err)
	bothPending := ua.HasSentRequestTo(b.ID) && ub.HasSentRequestTo(a.ID)
	assert.False(t, bothPending, "at most one direction may be pending")
}

func TestRemoveFriend(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	a := seedUser(t, st, models.RoleParticipant)
	b := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.SendFriendRequest(context.Background(), a.ID, b.ID))
	require.NoError(t, svc.AcceptFriendRequest(context.Background(), b.ID, a.ID))

	require.NoError(t, svc.RemoveFriend(context.Background(), b.ID, a.ID))
	assertPairConsistent(t, st, a.ID, b.ID)

	ua, err := st.GetUser(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, ua.HasFriend(b.ID))

	err = svc.RemoveFriend(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuggestedUsers(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())

	city := primitive.NewObjectID()
	hiking := primitive.NewObjectID()

	actor := seedUser(t, st, models.RoleParticipant)
	friend := seedUser(t, st, models.RoleParticipant)
	pending := seedUser(t, st, models.RoleParticipant)
	match := seedUser(t, st, models.RoleParticipant)
	stranger := seedUser(t, st, models.RoleParticipant)

	for _, id := range []primitive.ObjectID{actor.ID, friend.ID, pending.ID, match.ID} {
		matched, err := st.UpdateProfile(context.Background(), id, models.UserPatch{
			City:      &city,
			Interests: []primitive.ObjectID{hiking},
		})
		require.NoError(t, err)
		require.True(t, matched)
	}
	_ = stranger // neither city nor interests in common

	require.NoError(t, svc.SendFriendRequest(context.Background(), actor.ID, pending.ID))
	require.NoError(t, svc.SendFriendRequest(context.Background(), actor.ID, friend.ID))
	require.NoError(t, svc.AcceptFriendRequest(context.Background(), friend.ID, actor.ID))

	suggested, err := svc.SuggestedUsers(context.Background(), actor.ID)
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, match.ID, suggested[0].ID)
}

func TestSuggestedUsers_NoCityNoInterests(t *testing.T) {
	st := memstore.New()
	svc := NewSocialService(st, newNoopLogger())
	actor := seedUser(t, st, models.RoleParticipant)
	seedUser(t, st, models.RoleParticipant)

	suggested, err := svc.SuggestedUsers(context.Background(), actor.ID)
	require.NoError(t, err)
	assert.Empty(t, suggested)
}
