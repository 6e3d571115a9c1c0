package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttachmentService(t *testing.T, cfg UploadConfig) (AttachmentService, *storage.LocalStorage) {
	t.Helper()

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	svc := NewAttachmentService(
		repositories.NewAttachmentRepository(),
		repositories.NewQuoteRepository(),
		store,
		cfg,
	)
	return svc, store
}

func defaultUploadConfig() UploadConfig {
	return UploadConfig{
		MaxSize:        1 << 20,
		AllowedTypes:   []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
		MaxPerQuote:    2,
		GenerateThumbs: true,
	}
}

// multipartFile собирает *multipart.FileHeader так же, как его получает gin
func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(10<<20))
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 160, G: 110, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAttachmentUpload_ImageWithThumbnail(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusPending)
	svc, store := newAttachmentService(t, defaultUploadConfig())

	resp, err := svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "../../salon.png", pngBytes(t, 640, 480)))
	require.NoError(t, err)

	assert.Equal(t, "salon.png", resp.FileName)
	assert.Equal(t, "image/png", resp.MimeType)
	assert.Contains(t, resp.URL, "/api/v1/files/quotes/"+quote.ID+"/")
	assert.Contains(t, resp.ThumbnailURL, "/thumbs/")

	var stored models.Attachment
	require.NoError(t, db.First(&stored, "id = ?", resp.ID).Error)
	for _, p := range []string{stored.Path, stored.ThumbnailPath} {
		exists, err := store.Exists(testCtx, p)
		require.NoError(t, err)
		assert.True(t, exists, p)
	}
}

func TestAttachmentUpload_Rejections(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	stranger := createUser(t, db, models.UserRoleClient, "otro@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusPending)

	cfg := defaultUploadConfig()
	cfg.MaxSize = 64 << 10
	svc, _ := newAttachmentService(t, cfg)

	// заголовок говорит png, содержимое - обычный текст
	_, err := svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "fake.png", []byte("just some text")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	_, err = svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "big.pdf", bytes.Repeat([]byte("a"), 65<<10)))
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = svc.Upload(testCtx, db, quote.ID, stranger.ID, models.UserRoleClient, multipartFile(t, "a.png", pngBytes(t, 10, 10)))
	assert.ErrorIs(t, err, apperrors.ErrQuoteAccessDenied)

	for i := 0; i < cfg.MaxPerQuote; i++ {
		_, err = svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "a.png", pngBytes(t, 10, 10)))
		require.NoError(t, err)
	}
	_, err = svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "a.png", pngBytes(t, 10, 10)))
	assert.ErrorIs(t, err, apperrors.ErrTooManyAttachments)
}

func TestAttachmentDelete(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusPending)
	svc, store := newAttachmentService(t, defaultUploadConfig())

	byAdmin, err := svc.Upload(testCtx, db, quote.ID, admin.ID, models.UserRoleAdmin, multipartFile(t, "plano.png", pngBytes(t, 50, 50)))
	require.NoError(t, err)
	byOwner, err := svc.Upload(testCtx, db, quote.ID, owner.ID, models.UserRoleClient, multipartFile(t, "foto.png", pngBytes(t, 50, 50)))
	require.NoError(t, err)

	list, err := svc.List(testCtx, db, quote.ID, owner.ID, models.UserRoleClient)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// клиент не может удалить вложение администратора
	err = svc.Delete(testCtx, db, quote.ID, byAdmin.ID, owner.ID, models.UserRoleClient)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	var stored models.Attachment
	require.NoError(t, db.First(&stored, "id = ?", byOwner.ID).Error)

	require.NoError(t, svc.Delete(testCtx, db, quote.ID, byOwner.ID, owner.ID, models.UserRoleClient))
	exists, err := store.Exists(testCtx, stored.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, svc.Delete(testCtx, db, quote.ID, byAdmin.ID, admin.ID, models.UserRoleAdmin))
	assert.ErrorIs(t, svc.Delete(testCtx, db, quote.ID, byAdmin.ID, admin.ID, models.UserRoleAdmin), apperrors.ErrAttachmentNotFound)
}
