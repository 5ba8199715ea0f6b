package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
)

func TestBanUser(t *testing.T) {
	st := memstore.New()
	svc := NewAdminService(st, newNoopLogger())
	admin := seedUser(t, st, models.RoleAdmin)
	target := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.BanUser(context.Background(), target.ID, admin.ID))

	u, err := st.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)
}

func TestBanUser_AdminTarget(t *testing.T) {
	st := memstore.New()
	svc := NewAdminService(st, newNoopLogger())
	admin := seedUser(t, st, models.RoleAdmin)
	other := seedUser(t, st, models.RoleAdmin)

	err := svc.BanUser(context.Background(), other.ID, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBanUser_Missing(t *testing.T) {
	st := memstore.New()
	svc := NewAdminService(st, newNoopLogger())
	admin := seedUser(t, st, models.RoleAdmin)

	err := svc.BanUser(context.Background(), primitive.NewObjectID(), admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnbanUser_Idempotent(t *testing.T) {
	st := memstore.New()
	svc := NewAdminService(st, newNoopLogger())
	admin := seedUser(t, st, models.RoleAdmin)
	target := seedUser(t, st, models.RoleParticipant)

	require.NoError(t, svc.BanUser(context.Background(), target.ID, admin.ID))
	require.NoError(t, svc.UnbanUser(context.Background(), target.ID))

	// Unbanning an already-unbanned user is a no-op, not an error.
	require.NoError(t, svc.UnbanUser(context.Background(), target.ID))

	u, err := st.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.False(t, u.IsBanned)
}
