package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carpinteria_backend/database"
	"carpinteria_backend/internal/app"
	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/config"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Server      *httptest.Server
	DB          *gorm.DB
	Redis       *miniredis.Miniredis
	Config      *config.Config
	StoragePath string
}

// TestConfig - конфиг для тестов: sqlite в памяти, локальное хранилище во временной папке
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.Database.AutoMigrate = true
	cfg.JWT.Secret = "test-secret-for-integration"
	cfg.JWT.TTL = 15
	cfg.JWT.RefreshTTLHours = 24
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.BaseURL = "/api/v1/files"
	cfg.Upload.MaxSize = 1 << 20
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	cfg.Upload.ImageQuality = 80
	cfg.Upload.MaxPerQuote = 5
	cfg.Upload.GenerateThumbs = true
	cfg.Upload.SignedURLMinutes = 60
	cfg.FirstAdminName = "Administrador"
	return cfg
}

// NewTestServer поднимает полный роутер приложения поверх отдельной БД и miniredis.
// modify позволяет поменять конфиг до сборки (например, строгий режим статусов).
func NewTestServer(t *testing.T, modify ...func(*config.Config)) *TestServer {
	t.Helper()

	cfg := TestConfig(t)
	for _, fn := range modify {
		fn(cfg)
	}

	logger.InitWithWriter("test", io.Discard)
	auth.Configure(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	db, err := database.Open(cfg)
	require.NoError(t, err, "Не удалось открыть тестовую БД")
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	sessions, err := session.NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)

	router, err := app.SetupRouter(cfg, db, sessions)
	require.NoError(t, err)

	ts := &TestServer{
		Server:      httptest.NewServer(router),
		DB:          db,
		Redis:       mr,
		Config:      cfg,
		StoragePath: cfg.Storage.BasePath,
	}
	t.Cleanup(func() {
		ts.Server.Close()
		_ = sessions.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return ts
}

// SendRequest отправляет JSON-запрос и возвращает ответ и тело строкой
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req)
}

// SendFile отправляет multipart/form-data с одним файлом в поле "file"
func (ts *TestServer) SendFile(t *testing.T, path, token, fileName string, content []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	require.NoError(t, err, "Ошибка чтения тела ответа")
	return res, string(resBodyBytes)
}

// DecodeJSON разбирает тело ответа в out
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "Не удалось распарсить JSON: %s", body)
}
