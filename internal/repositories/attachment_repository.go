package repositories

import (
	"errors"

	"carpinteria_backend/internal/models"

	"gorm.io/gorm"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

type AttachmentRepository interface {
	Create(db *gorm.DB, attachment *models.Attachment) error
	FindByID(db *gorm.DB, id string) (*models.Attachment, error)
	FindByQuote(db *gorm.DB, quoteID string) ([]models.Attachment, error)
	CountByQuote(db *gorm.DB, quoteID string) (int64, error)
	Delete(db *gorm.DB, id string) error
}

type AttachmentRepositoryImpl struct{}

func NewAttachmentRepository() AttachmentRepository {
	return &AttachmentRepositoryImpl{}
}

func (r *AttachmentRepositoryImpl) Create(db *gorm.DB, attachment *models.Attachment) error {
	return db.Create(attachment).Error
}

func (r *AttachmentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := db.First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepositoryImpl) FindByQuote(db *gorm.DB, quoteID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := db.Where("quote_request_id = ?", quoteID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepositoryImpl) CountByQuote(db *gorm.DB, quoteID string) (int64, error) {
	var count int64
	err := db.Model(&models.Attachment{}).Where("quote_request_id = ?", quoteID).Count(&count).Error
	return count, err
}

func (r *AttachmentRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
