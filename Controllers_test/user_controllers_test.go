package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndProfile(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/login", map[string]interface{}{
		"email":    "rina@example.com",
		"password": staffPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, resp)
	assert.Equal(t, "staff", data["user_role"])
	token, ok := data["token"].(string)
	require.True(t, ok)

	claims, err := s.tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, s.staff.ID, claims.UserID)

	w, resp = s.do(t, http.MethodGet, "/admin/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rina@example.com", dataOf(t, resp)["email"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/login", map[string]interface{}{"email": "rina@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/login", map[string]interface{}{"email": "nobody@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/login", map[string]interface{}{"email": "rina@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/admin/profile", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{"email": "rina@example.com", "password": "wrong"}

	for i := 0; i < 5; i++ {
		w, _ := s.do(t, http.MethodPost, "/login", body, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := s.do(t, http.MethodPost, "/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
