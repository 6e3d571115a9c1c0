package services

import (
	"context"
	"strings"
	"time"

	"carpinteria_backend/internal/algorithms"
	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type QuoteService interface {
	// Client operations
	CreateQuote(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	ListMyQuotes(ctx context.Context, db *gorm.DB, userID string, query *dto.QuoteListQuery, page, pageSize int) (*dto.QuoteListResponse, error)
	GetQuote(ctx context.Context, db *gorm.DB, actorID string, role models.UserRole, quoteID string) (*dto.QuoteResponse, error)
	UpdateQuote(ctx context.Context, db *gorm.DB, userID, quoteID string, req *dto.UpdateQuoteRequest) (*dto.QuoteResponse, error)
	DeleteQuote(ctx context.Context, db *gorm.DB, userID, quoteID string) error
	GetProgressHistory(ctx context.Context, db *gorm.DB, actorID string, role models.UserRole, quoteID string) ([]*dto.ProgressResponse, error)

	// Admin operations
	ListAllQuotes(ctx context.Context, db *gorm.DB, query *dto.QuoteListQuery, page, pageSize int) (*dto.QuoteListResponse, error)
	GetStats(ctx context.Context, db *gorm.DB) (*dto.QuoteStatsResponse, error)
	AdminUpdateQuote(ctx context.Context, db *gorm.DB, quoteID string, req *dto.AdminUpdateQuoteRequest) (*dto.QuoteResponse, error)
	AdminDeleteQuote(ctx context.Context, db *gorm.DB, quoteID string) error
}

type quoteService struct {
	quoteRepo        repositories.QuoteRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	attachmentRepo   repositories.AttachmentRepository
	storage          storage.Storage
	mailer           *EmailService
}

func NewQuoteService(
	quoteRepo repositories.QuoteRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	attachmentRepo repositories.AttachmentRepository,
	storage storage.Storage,
	mailer *EmailService,
) QuoteService {
	return &quoteService{
		quoteRepo:        quoteRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		attachmentRepo:   attachmentRepo,
		storage:          storage,
		mailer:           mailer,
	}
}

// CreateQuote создает заявку в статусе pendiente с первой записью прогресса
// и уведомляет всех администраторов. Все в одной транзакции.
func (s *quoteService) CreateQuote(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if req.BudgetMax > 0 && req.BudgetMax < req.BudgetMin {
		return nil, apperrors.ErrInvalidBudgetRange
	}

	defaults, _ := algorithms.DefaultsFor(models.QuoteStatusPending)
	now := time.Now()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	client, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	quote := &models.QuoteRequest{
		UserID:             userID,
		Title:              strings.TrimSpace(req.Title),
		Category:           models.QuoteCategory(req.Category),
		Material:           req.Material,
		Description:        req.Description,
		Dimensions:         req.Dimensions,
		Location:           req.Location,
		BudgetMin:          req.BudgetMin,
		BudgetMax:          req.BudgetMax,
		DesiredDate:        req.DesiredDate,
		Status:             models.QuoteStatusPending,
		ProgressPercentage: defaults.Percentage,
		ProgressStage:      defaults.Stage,
		ProgressUpdatedAt:  &now,
	}
	if err := s.quoteRepo.Create(tx, quote); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := s.quoteRepo.CreateProgressUpdate(tx, &models.ProgressUpdate{
		QuoteRequestID: quote.ID,
		Status:         quote.Status,
		Percentage:     quote.ProgressPercentage,
		Stage:          quote.ProgressStage,
		CreatedBy:      userID,
	}); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	admins, err := s.userRepo.FindByRole(tx, models.UserRoleAdmin)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	notifications := make([]*models.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, newQuoteNotification(
			admin.ID,
			models.NotificationTypeNewQuoteRequest,
			"Nueva solicitud de presupuesto",
			client.Name+" ha enviado la solicitud \""+quote.Title+"\".",
			quote,
		))
	}
	if err := s.notificationRepo.CreateBulk(tx, notifications); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Quote request created", "quote_id", quote.ID, "user_id", userID, "admins_notified", len(admins))

	if err := s.mailer.SendNewQuoteRequest(ctx, admins, client, quote); err != nil {
		logger.CtxWithError(ctx, "Failed to send new quote email", err, "quote_id", quote.ID)
	}

	return dto.NewQuoteResponse(quote, false), nil
}

func (s *quoteService) ListMyQuotes(ctx context.Context, db *gorm.DB, userID string, query *dto.QuoteListQuery, page, pageSize int) (*dto.QuoteListResponse, error) {
	quotes, total, err := s.quoteRepo.FindWithFilter(db, repositories.QuoteFilter{
		UserID:   userID,
		Status:   models.QuoteStatus(query.Status),
		Category: models.QuoteCategory(query.Category),
		Search:   strings.TrimSpace(query.Search),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	return buildQuoteList(quotes, total, page, pageSize, false), nil
}

func (s *quoteService) GetQuote(ctx context.Context, db *gorm.DB, actorID string, role models.UserRole, quoteID string) (*dto.QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByIDWithOwner(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !auth.CanAccessQuote(role, actorID, quote.UserID) {
		return nil, apperrors.ErrQuoteAccessDenied
	}

	resp := dto.NewQuoteResponse(quote, auth.IsAdmin(role))
	if latest, err := s.latestProgress(db, quote.ID); err == nil && latest != nil {
		resp.LatestProgress = dto.NewProgressResponse(latest)
	}
	return resp, nil
}

// UpdateQuote - владелец может править заявку только в статусе pendiente
func (s *quoteService) UpdateQuote(ctx context.Context, db *gorm.DB, userID, quoteID string, req *dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	quote, err := s.ownedEditableQuote(tx, userID, quoteID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Material != nil {
		fields["material"] = *req.Material
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Dimensions != nil {
		fields["dimensions"] = *req.Dimensions
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.DesiredDate != nil {
		fields["desired_date"] = req.DesiredDate
	}

	budgetMin, budgetMax := quote.BudgetMin, quote.BudgetMax
	if req.BudgetMin != nil {
		budgetMin = *req.BudgetMin
		fields["budget_min"] = budgetMin
	}
	if req.BudgetMax != nil {
		budgetMax = *req.BudgetMax
		fields["budget_max"] = budgetMax
	}
	if budgetMax > 0 && budgetMax < budgetMin {
		return nil, apperrors.ErrInvalidBudgetRange
	}

	if len(fields) > 0 {
		if err := s.quoteRepo.UpdateFields(tx, quoteID, fields); err != nil {
			return nil, handleRepoError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.GetQuote(ctx, db, userID, models.UserRoleClient, quoteID)
}

func (s *quoteService) DeleteQuote(ctx context.Context, db *gorm.DB, userID, quoteID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.ownedEditableQuote(tx, userID, quoteID); err != nil {
		return err
	}
	return s.deleteQuoteTx(ctx, tx, quoteID)
}

func (s *quoteService) GetProgressHistory(ctx context.Context, db *gorm.DB, actorID string, role models.UserRole, quoteID string) ([]*dto.ProgressResponse, error) {
	if _, err := authorizeQuote(db, s.quoteRepo, actorID, role, quoteID); err != nil {
		return nil, err
	}

	updates, err := s.quoteRepo.FindProgressUpdates(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.ProgressResponse, 0, len(updates))
	for i := range updates {
		out = append(out, dto.NewProgressResponse(&updates[i]))
	}
	return out, nil
}

// --- Admin ---

func (s *quoteService) ListAllQuotes(ctx context.Context, db *gorm.DB, query *dto.QuoteListQuery, page, pageSize int) (*dto.QuoteListResponse, error) {
	quotes, total, err := s.quoteRepo.FindWithFilter(db, repositories.QuoteFilter{
		UserID:   query.UserID,
		Status:   models.QuoteStatus(query.Status),
		Category: models.QuoteCategory(query.Category),
		Search:   strings.TrimSpace(query.Search),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	return buildQuoteList(quotes, total, page, pageSize, true), nil
}

func (s *quoteService) GetStats(ctx context.Context, db *gorm.DB) (*dto.QuoteStatsResponse, error) {
	counts, err := s.quoteRepo.CountByStatus(db, "")
	if err != nil {
		return nil, handleRepoError(err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &dto.QuoteStatsResponse{ByStatus: counts, Total: total}, nil
}

func (s *quoteService) AdminUpdateQuote(ctx context.Context, db *gorm.DB, quoteID string, req *dto.AdminUpdateQuoteRequest) (*dto.QuoteResponse, error) {
	fields := map[string]interface{}{}
	if req.QuotedPrice != nil {
		fields["quoted_price"] = req.QuotedPrice
	}
	if req.EstimatedDelivery != nil {
		fields["estimated_delivery"] = req.EstimatedDelivery
	}
	if req.AdminNotes != nil {
		fields["admin_notes"] = *req.AdminNotes
	}

	if len(fields) > 0 {
		if err := s.quoteRepo.UpdateFields(db, quoteID, fields); err != nil {
			return nil, handleRepoError(err)
		}
	}

	quote, err := s.quoteRepo.FindByIDWithOwner(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewQuoteResponse(quote, true), nil
}

func (s *quoteService) AdminDeleteQuote(ctx context.Context, db *gorm.DB, quoteID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.quoteRepo.FindByID(tx, quoteID); err != nil {
		return handleRepoError(err)
	}
	return s.deleteQuoteTx(ctx, tx, quoteID)
}

// --- helpers ---

// deleteQuoteTx удаляет заявку, коммитит tx и после коммита убирает файлы вложений
func (s *quoteService) deleteQuoteTx(ctx context.Context, tx *gorm.DB, quoteID string) error {
	attachments, err := s.attachmentRepo.FindByQuote(tx, quoteID)
	if err != nil {
		return handleRepoError(err)
	}

	if err := s.quoteRepo.Delete(tx, quoteID); err != nil {
		return handleRepoError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Quote request deleted", "quote_id", quoteID, "attachments", len(attachments))
	removeAttachmentFiles(ctx, s.storage, attachments)
	return nil
}

func (s *quoteService) ownedEditableQuote(db *gorm.DB, userID, quoteID string) (*models.QuoteRequest, error) {
	quote, err := s.quoteRepo.FindByID(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if quote.UserID != userID {
		return nil, apperrors.ErrQuoteAccessDenied
	}
	if quote.Status != models.QuoteStatusPending {
		return nil, apperrors.ErrQuoteNotEditable
	}
	return quote, nil
}

func (s *quoteService) latestProgress(db *gorm.DB, quoteID string) (*models.ProgressUpdate, error) {
	updates, err := s.quoteRepo.FindProgressUpdates(db, quoteID)
	if err != nil || len(updates) == 0 {
		return nil, err
	}
	return &updates[len(updates)-1], nil
}

// authorizeQuote загружает заявку и проверяет доступ: админ видит все, клиент свои
func authorizeQuote(db *gorm.DB, repo repositories.QuoteRepository, actorID string, role models.UserRole, quoteID string) (*models.QuoteRequest, error) {
	quote, err := repo.FindByID(db, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !auth.CanAccessQuote(role, actorID, quote.UserID) {
		return nil, apperrors.ErrQuoteAccessDenied
	}
	return quote, nil
}

func buildQuoteList(quotes []models.QuoteRequest, total int64, page, pageSize int, adminView bool) *dto.QuoteListResponse {
	resp := &dto.QuoteListResponse{
		Quotes:   make([]*dto.QuoteResponse, 0, len(quotes)),
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}
	for i := range quotes {
		resp.Quotes = append(resp.Quotes, dto.NewQuoteResponse(&quotes[i], adminView))
	}
	return resp
}
