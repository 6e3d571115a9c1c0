package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/imageprocessor"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadConfig - ограничения на вложения заявок
type UploadConfig struct {
	MaxSize        int64
	AllowedTypes   []string
	MaxPerQuote    int
	GenerateThumbs bool
	ImageQuality   int
}

type AttachmentService interface {
	Upload(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole, file *multipart.FileHeader) (*dto.AttachmentResponse, error)
	List(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole) ([]*dto.AttachmentResponse, error)
	Delete(ctx context.Context, db *gorm.DB, quoteID, attachmentID, actorID string, role models.UserRole) error
}

type attachmentService struct {
	attachmentRepo repositories.AttachmentRepository
	quoteRepo      repositories.QuoteRepository
	storage        storage.Storage
	processor      *imageprocessor.Processor
	config         UploadConfig
}

func NewAttachmentService(
	attachmentRepo repositories.AttachmentRepository,
	quoteRepo repositories.QuoteRepository,
	storage storage.Storage,
	config UploadConfig,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		quoteRepo:      quoteRepo,
		storage:        storage,
		processor:      imageprocessor.NewProcessor(config.ImageQuality),
		config:         config,
	}
}

// Upload сохраняет фото или чертеж к заявке. Тип определяется по содержимому,
// а не по заголовку клиента. Для изображений синхронно строится превью.
func (s *attachmentService) Upload(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole, file *multipart.FileHeader) (*dto.AttachmentResponse, error) {
	if s.config.MaxSize > 0 && file.Size > s.config.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	quote, err := authorizeQuote(db, s.quoteRepo, actorID, role, quoteID)
	if err != nil {
		return nil, err
	}

	if s.config.MaxPerQuote > 0 {
		count, err := s.attachmentRepo.CountByQuote(db, quote.ID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if count >= int64(s.config.MaxPerQuote) {
			return nil, apperrors.ErrTooManyAttachments
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("Cannot read uploaded file")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("detect mime type: %w", err))
	}
	mimeType := baseMime(mtype.String())
	if !s.isAllowed(mimeType) {
		return nil, apperrors.ErrInvalidFileType
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.InternalError(err)
	}

	fileID := uuid.NewString()
	dir := path.Join("quotes", quote.ID)
	attachment := &models.Attachment{
		QuoteRequestID: quote.ID,
		UploaderID:     actorID,
		FileName:       sanitizeFileName(file.Filename),
		MimeType:       mimeType,
		Size:           file.Size,
		Path:           path.Join(dir, fileID+mtype.Extension()),
	}

	if err := s.storage.Save(ctx, attachment.Path, src, mimeType); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "attachment", "Failed to store file", 500)
	}

	if s.config.GenerateThumbs && attachment.IsImage() {
		attachment.ThumbnailPath = s.saveThumbnail(ctx, src, path.Join(dir, "thumbs", fileID+".jpg"))
	}

	if err := s.attachmentRepo.Create(db, attachment); err != nil {
		removeAttachmentFiles(ctx, s.storage, []models.Attachment{*attachment})
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Attachment uploaded",
		"quote_id", quote.ID,
		"attachment_id", attachment.ID,
		"mime", mimeType,
		"size", attachment.Size,
	)
	return s.buildResponse(ctx, attachment), nil
}

func (s *attachmentService) List(ctx context.Context, db *gorm.DB, quoteID, actorID string, role models.UserRole) ([]*dto.AttachmentResponse, error) {
	if _, err := authorizeQuote(db, s.quoteRepo, actorID, role, quoteID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindByQuote(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, s.buildResponse(ctx, &attachments[i]))
	}
	return out, nil
}

// Delete - удалить вложение может загрузивший его пользователь или админ
func (s *attachmentService) Delete(ctx context.Context, db *gorm.DB, quoteID, attachmentID, actorID string, role models.UserRole) error {
	if _, err := authorizeQuote(db, s.quoteRepo, actorID, role, quoteID); err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.FindByID(db, attachmentID)
	if err != nil {
		return handleRepoError(err)
	}
	if attachment.QuoteRequestID != quoteID {
		return apperrors.ErrAttachmentNotFound
	}
	if attachment.UploaderID != actorID && !auth.IsAdmin(role) {
		return apperrors.NewForbiddenError("Only the uploader or an admin can delete this attachment")
	}

	if err := s.attachmentRepo.Delete(db, attachment.ID); err != nil {
		return handleRepoError(err)
	}

	removeAttachmentFiles(ctx, s.storage, []models.Attachment{*attachment})
	logger.CtxInfo(ctx, "Attachment deleted", "quote_id", quoteID, "attachment_id", attachmentID)
	return nil
}

func (s *attachmentService) isAllowed(mimeType string) bool {
	if len(s.config.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.config.AllowedTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

// saveThumbnail возвращает путь превью или "", если построить его не удалось
func (s *attachmentService) saveThumbnail(ctx context.Context, src multipart.File, thumbPath string) string {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		logger.CtxWithError(ctx, "Failed to rewind upload for thumbnail", err)
		return ""
	}

	thumb, err := s.processor.Thumbnail(src, imageprocessor.SizeThumbnail)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to build thumbnail", err, "path", thumbPath)
		return ""
	}

	if err := s.storage.Save(ctx, thumbPath, thumb, "image/jpeg"); err != nil {
		logger.CtxWithError(ctx, "Failed to store thumbnail", err, "path", thumbPath)
		return ""
	}
	return thumbPath
}

func (s *attachmentService) buildResponse(ctx context.Context, a *models.Attachment) *dto.AttachmentResponse {
	url, err := s.storage.GetURL(ctx, a.Path)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to build attachment url", err, "attachment_id", a.ID)
	}

	thumbURL := ""
	if a.ThumbnailPath != "" {
		if thumbURL, err = s.storage.GetURL(ctx, a.ThumbnailPath); err != nil {
			logger.CtxWithError(ctx, "Failed to build thumbnail url", err, "attachment_id", a.ID)
		}
	}
	return dto.NewAttachmentResponse(a, url, thumbURL)
}

// removeAttachmentFiles удаляет файлы из хранилища; ошибки только логируются
func removeAttachmentFiles(ctx context.Context, store storage.Storage, attachments []models.Attachment) {
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for _, a := range attachments {
		for _, p := range []string{a.Path, a.ThumbnailPath} {
			if p == "" {
				continue
			}
			if err := store.Delete(ctx, p); err != nil {
				logger.CtxWithError(ctx, "Failed to delete attachment file", err, "path", p)
			}
		}
	}
}

// baseMime отрезает параметры: "text/plain; charset=utf-8" -> "text/plain"
func baseMime(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(strings.ToLower(m))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "archivo"
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}
