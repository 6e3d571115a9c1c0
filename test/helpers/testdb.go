package helpers

import (
	"fmt"
	"net/http"
	"testing"

	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const DefaultPassword = "password123"

// CreateUser создает активного пользователя с паролем DefaultPassword
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Usuario " + string(role),
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error, "Не удалось создать пользователя %s", email)
	return user
}

// Login логинится через API и возвращает access-токен
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: %s", body)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	DecodeJSON(t, body, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// CreateAndLoginUser создает пользователя с уникальным email и логинит его
func CreateAndLoginUser(t *testing.T, ts *TestServer, role models.UserRole) (string, *models.User) {
	t.Helper()

	email := fmt.Sprintf("%s_%s@test.com", role, uuid.NewString()[:8])
	user := CreateUser(t, ts.DB, role, email)
	return Login(t, ts, email, DefaultPassword), user
}

func CreateAndLoginAdmin(t *testing.T, ts *TestServer) (string, *models.User) {
	return CreateAndLoginUser(t, ts, models.UserRoleAdmin)
}

func CreateAndLoginClient(t *testing.T, ts *TestServer) (string, *models.User) {
	return CreateAndLoginUser(t, ts, models.UserRoleClient)
}

// CreateQuoteViaAPI создает заявку от имени клиента и возвращает ее ID
func CreateQuoteViaAPI(t *testing.T, ts *TestServer, token, title string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/quotes", token, map[string]interface{}{
		"title":       title,
		"category":    "cocina",
		"material":    "roble",
		"description": "Cocina completa con isla central",
		"dimensions":  "300x60x90",
		"budget_min":  2000,
		"budget_max":  4500,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "Создание заявки: %s", body)

	var resp struct {
		ID string `json:"id"`
	}
	DecodeJSON(t, body, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}
