package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/david3010/game_shop/internal/models"
	"github.com/david3010/game_shop/internal/service/token"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/register", payload)

	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "test_user", created.Username)
	require.Equal(t, "test@example.com", created.Email)
	require.False(t, created.IsAdmin)
	require.NotEmpty(t, created.ID)
	require.NotContains(t, rec.Body.String(), "password")

	var stored models.User
	require.NoError(t, env.DB.First(&stored, created.ID).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []map[string]string{
		{"email": "a@b.c", "password": "password"},
		{"username": "test_user", "password": "password"},
		{"username": "test_user", "email": "a@b.c"},
	} {
		_, c := env.doJSONRequest(http.MethodPost, "/api/users/register", payload)
		requireHTTPError(t, env.A.Register(c), http.StatusBadRequest)
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/register", payload)
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c2 := env.doJSONRequest(http.MethodPost, "/api/users/register", payload)
	requireHTTPError(t, env.A.Register(c2), http.StatusConflict)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("username = ?", "test_user").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "test_user", true)

	payload := map[string]string{"username": "test_user", "password": "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/login", payload)

	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.Equal(t, true, resp["is_admin"])

	claims, err := token.ParseAccessToken(resp["access_token"].(string), testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.True(t, claims.IsAdmin)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "test_user", false)

	// wrong password on a valid username
	_, c := env.doJSONRequest(http.MethodPost, "/api/users/login", map[string]string{
		"username": "test_user", "password": "wrong",
	})
	requireHTTPError(t, env.A.Login(c), http.StatusUnauthorized)

	// unknown username
	_, c2 := env.doJSONRequest(http.MethodPost, "/api/users/login", map[string]string{
		"username": "nobody", "password": "password",
	})
	requireHTTPError(t, env.A.Login(c2), http.StatusUnauthorized)
}
