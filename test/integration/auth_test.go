package integration_test

import (
	"net/http"
	"testing"

	"carpinteria_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func TestHealth(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"database":"up"`)
}

func TestRegister_AlwaysClientRole(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "Ana@Example.com",
		"password": "super_password123",
		"name":     "Ana García",
		"role":     "admin",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var auth authBody
	helpers.DecodeJSON(t, body, &auth)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, "cliente", auth.User.Role)

	meRes, meBody := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, meRes.StatusCode)
	assert.Contains(t, meBody, "ana@example.com")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := helpers.NewTestServer(t)
	helpers.CreateUser(t, ts.DB, "cliente", "dup@test.com")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "dup@test.com",
		"password": "super_password123",
		"name":     "Otra Persona",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, body)
}

func TestRegister_Validation(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, "VALIDATION_FAILED")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := helpers.NewTestServer(t)
	helpers.CreateUser(t, ts.DB, "cliente", "login@test.com")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "login@test.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRefresh_RotatesAndLogoutRevokes(t *testing.T) {
	ts := helpers.NewTestServer(t)
	helpers.CreateUser(t, ts.DB, "cliente", "refresh@test.com")

	_, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "refresh@test.com",
		"password": helpers.DefaultPassword,
	})
	var first authBody
	helpers.DecodeJSON(t, body, &first)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var second authBody
	helpers.DecodeJSON(t, body, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// старый refresh-токен одноразовый
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/quotes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/quotes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestProfile_Update(t *testing.T) {
	ts := helpers.NewTestServer(t)
	token, _ := helpers.CreateAndLoginClient(t, ts)

	res, body := ts.SendRequest(t, http.MethodPut, "/api/v1/profile", token, map[string]interface{}{
		"phone": "+34 600 000 000",
		"city":  "Valencia",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "Valencia")
}
