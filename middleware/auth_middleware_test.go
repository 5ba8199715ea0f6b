package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/gatherly/gatherly-api/models"
	memstore "github.com/gatherly/gatherly-api/store/memstore"
	utils "github.com/gatherly/gatherly-api/utils"
)

const testSecret = "test-secret"

func authTestRouter(t *testing.T, st *memstore.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret, st), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func seedAccount(t *testing.T, st *memstore.Store, banned bool) *models.User {
	t.Helper()
	u := &models.User{
		Name:      "Amina",
		Email:     "amina@example.com",
		Role:      models.RoleParticipant,
		IsBanned:  banned,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	inserted, err := st.CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.True(t, inserted)
	return u
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	st := memstore.New()
	u := seedAccount(t, st, false)
	r := authTestRouter(t, st)

	token, err := utils.GenerateAccessToken(testSecret, time.Hour, u.ID.Hex(), u.Role)
	require.NoError(t, err)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), u.ID.Hex())
}

func TestAuthMiddleware_MissingOrBadToken(t *testing.T) {
	st := memstore.New()
	r := authTestRouter(t, st)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with a different secret.
	token, err := utils.GenerateAccessToken("other-secret", time.Hour, "0123456789abcdef01234567", models.RoleParticipant)
	require.NoError(t, err)
	w = doRequest(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A ban takes effect on the very next request even when the token is still
// valid, because the account is re-read on every call.
func TestAuthMiddleware_BannedAccount(t *testing.T) {
	st := memstore.New()
	u := seedAccount(t, st, false)
	r := authTestRouter(t, st)

	token, err := utils.GenerateAccessToken(testSecret, time.Hour, u.ID.Hex(), u.Role)
	require.NoError(t, err)

	w := doRequest(r, token)
	require.Equal(t, http.StatusOK, w.Code)

	matched, err := st.SetBanned(context.Background(), u.ID, true)
	require.NoError(t, err)
	require.True(t, matched)

	w = doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "account banned")
}

func TestAuthMiddleware_ArchivedAccount(t *testing.T) {
	st := memstore.New()
	u := seedAccount(t, st, false)
	r := authTestRouter(t, st)

	token, err := utils.GenerateAccessToken(testSecret, time.Hour, u.ID.Hex(), u.Role)
	require.NoError(t, err)

	matched, err := st.ArchiveUser(context.Background(), u.ID, "deleted+"+u.ID.Hex()+"@gatherly.invalid")
	require.NoError(t, err)
	require.True(t, matched)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
