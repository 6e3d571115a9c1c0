package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"carpinteria_backend/internal/storage"
	"carpinteria_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// FileHandler отдает файлы локального хранилища по /files/*filepath.
// Для S3/MinIO ссылки на вложения подписываются и сюда не ведут.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.GET("/*filepath", h.ServeFile)
		files.HEAD("/*filepath", h.CheckFileExists)
	}
}

// ServeFile godoc
// @Summary Файл из локального хранилища
// @Tags files
// @Produce octet-stream
// @Param filepath path string true "Путь к файлу"
// @Success 200 {file} file
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/{filepath} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	key, err := storage.CleanPath(c.Param("filepath"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), key)
	if err != nil {
		h.handleStorageError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		// расширения нет или оно неизвестно: определяем по первым байтам
		contentType, err = h.sniffContentType(c, key)
		if err != nil {
			h.handleStorageError(c, err)
			return
		}
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", "inline")

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// заголовки уже отправлены
		c.Error(err)
	}
}

// CheckFileExists godoc
// @Summary Проверить наличие файла
// @Tags files
// @Param filepath path string true "Путь к файлу"
// @Success 200
// @Failure 404
// @Router /files/{filepath} [head]
func (h *FileHandler) CheckFileExists(c *gin.Context) {
	key, err := storage.CleanPath(c.Param("filepath"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), key)
	if err != nil || !exists {
		c.Status(http.StatusNotFound)
		return
	}

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Status(http.StatusOK)
}

func (h *FileHandler) sniffContentType(c *gin.Context, key string) (string, error) {
	reader, err := h.storage.Get(c.Request.Context(), key)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

func (h *FileHandler) handleStorageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrFileNotFound) {
		apperrors.HandleError(c, apperrors.NewNotFoundError("files", "File not found"))
		return
	}
	apperrors.HandleError(c, apperrors.Wrap(err, apperrors.CodeStorageError, "files", "Failed to read file", http.StatusInternalServerError))
}
