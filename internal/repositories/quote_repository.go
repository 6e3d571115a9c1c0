package repositories

import (
	"errors"
	"strings"

	"carpinteria_backend/internal/models"

	"gorm.io/gorm"
)

var ErrQuoteNotFound = errors.New("quote request not found")

type QuoteRepository interface {
	Create(db *gorm.DB, quote *models.QuoteRequest) error
	FindByID(db *gorm.DB, id string) (*models.QuoteRequest, error)
	FindByIDWithOwner(db *gorm.DB, id string) (*models.QuoteRequest, error)
	FindWithFilter(db *gorm.DB, filter QuoteFilter) ([]models.QuoteRequest, int64, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
	CountByStatus(db *gorm.DB, userID string) (map[models.QuoteStatus]int64, error)

	// Progress history
	CreateProgressUpdate(db *gorm.DB, update *models.ProgressUpdate) error
	FindProgressUpdates(db *gorm.DB, quoteID string) ([]models.ProgressUpdate, error)
}

// QuoteFilter - фильтр списка заявок. UserID пустой - все заявки (админ).
type QuoteFilter struct {
	UserID   string
	Status   models.QuoteStatus
	Category models.QuoteCategory
	Search   string
	Page     int
	PageSize int
}

type QuoteRepositoryImpl struct{}

func NewQuoteRepository() QuoteRepository {
	return &QuoteRepositoryImpl{}
}

func (r *QuoteRepositoryImpl) Create(db *gorm.DB, quote *models.QuoteRequest) error {
	return db.Create(quote).Error
}

func (r *QuoteRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := db.First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepositoryImpl) FindByIDWithOwner(db *gorm.DB, id string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := db.Preload("User").First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepositoryImpl) FindWithFilter(db *gorm.DB, filter QuoteFilter) ([]models.QuoteRequest, int64, error) {
	query := db.Model(&models.QuoteRequest{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(material) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotes []models.QuoteRequest
	err := query.Preload("User").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset(filter.Page, filter.PageSize)).
		Find(&quotes).Error

	return quotes, total, err
}

func (r *QuoteRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.QuoteRequest{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// Delete удаляет заявку вместе с историей, комментариями, вложениями и
// уведомлениями. Каскады не на всех драйверах включены, поэтому явно.
// Вызывать внутри транзакции.
func (r *QuoteRepositoryImpl) Delete(db *gorm.DB, id string) error {
	children := []interface{}{
		&models.ProgressUpdate{},
		&models.QuoteMessage{},
		&models.Attachment{},
	}
	for _, child := range children {
		if err := db.Where("quote_request_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	if err := db.Where("quote_request_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&models.QuoteRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// CountByStatus - количество заявок по статусам (userID пустой - по всем)
func (r *QuoteRepositoryImpl) CountByStatus(db *gorm.DB, userID string) (map[models.QuoteStatus]int64, error) {
	var rows []struct {
		Status models.QuoteStatus
		Count  int64
	}

	query := db.Model(&models.QuoteRequest{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.QuoteStatus]int64, len(models.QuoteStatuses))
	for _, s := range models.QuoteStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *QuoteRepositoryImpl) CreateProgressUpdate(db *gorm.DB, update *models.ProgressUpdate) error {
	return db.Create(update).Error
}

func (r *QuoteRepositoryImpl) FindProgressUpdates(db *gorm.DB, quoteID string) ([]models.ProgressUpdate, error) {
	var updates []models.ProgressUpdate
	err := db.Where("quote_request_id = ?", quoteID).
		Order("created_at ASC").
		Find(&updates).Error
	return updates, err
}
