package services

//go:generate mockgen -source=workflow_service.go -destination=mocks/mock_workflow_service.go -package=mocks

import (
	"context"
	"errors"
	"strings"
	"time"

	"carpinteria_backend/internal/algorithms"
	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// WorkflowService - смена статуса заявки со всеми побочными записями
type WorkflowService interface {
	TransitionStatus(ctx context.Context, db *gorm.DB, quoteID, actorID string, actorRole models.UserRole, req *dto.UpdateStatusRequest) (*dto.TransitionResponse, error)
}

type workflowService struct {
	quoteRepo        repositories.QuoteRepository
	messageRepo      repositories.MessageRepository
	notificationRepo repositories.NotificationRepository
	mailer           *EmailService
	strict           bool
	now              func() time.Time
}

func NewWorkflowService(
	quoteRepo repositories.QuoteRepository,
	messageRepo repositories.MessageRepository,
	notificationRepo repositories.NotificationRepository,
	mailer *EmailService,
	strict bool,
) WorkflowService {
	return &workflowService{
		quoteRepo:        quoteRepo,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		strict:           strict,
		now:              time.Now,
	}
}

// TransitionStatus проверяет (по порядку) роль, статус, прогресс, наличие заявки
// и, в строгом режиме, допустимость перехода. Статус, поля прогресса, запись
// истории, сообщение и уведомление пишутся одной транзакцией. Письмо клиенту
// уходит после коммита, и его ошибка только логируется.
func (s *workflowService) TransitionStatus(ctx context.Context, db *gorm.DB, quoteID, actorID string, actorRole models.UserRole, req *dto.UpdateStatusRequest) (*dto.TransitionResponse, error) {
	if !auth.HasPermission(actorRole, auth.PermQuotesTransit) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	next := models.QuoteStatus(strings.TrimSpace(req.Status))
	if !next.IsValid() {
		return nil, apperrors.ErrUnknownQuoteStatus
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, apperrors.ValidationError(map[string]string{"progress": "Must be between 0 and 100"})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	quote, err := s.quoteRepo.FindByIDWithOwner(tx, quoteID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	plan, err := algorithms.PlanTransition(algorithms.TransitionInput{
		Current:          quote.Status,
		Next:             next,
		ExplicitMessage:  req.Message,
		ExplicitProgress: req.Progress,
		Strict:           s.strict,
		Now:              s.now(),
	})
	if err != nil {
		return nil, mapPlanError(err)
	}

	fields := map[string]interface{}{
		"status":              plan.Status,
		"progress_percentage": plan.Percentage,
		"progress_stage":      plan.Stage,
		"progress_updated_at": plan.UpdatedAt,
	}
	if plan.CompletedAt != nil {
		fields["completed_at"] = *plan.CompletedAt
	}
	if err := s.quoteRepo.UpdateFields(tx, quote.ID, fields); err != nil {
		return nil, handleRepoError(err)
	}

	note := ""
	if !plan.IsAutomatic {
		note = plan.MessageText
	}
	if err := s.quoteRepo.CreateProgressUpdate(tx, &models.ProgressUpdate{
		QuoteRequestID: quote.ID,
		Status:         plan.Status,
		Percentage:     plan.Percentage,
		Stage:          plan.Stage,
		Note:           note,
		CreatedBy:      actorID,
	}); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	message := &models.QuoteMessage{
		QuoteRequestID: quote.ID,
		SenderID:       actorID,
		SenderRole:     models.UserRoleAdmin,
		Text:           plan.MessageText,
		IsAutomatic:    plan.IsAutomatic,
	}
	if err := s.messageRepo.Create(tx, message); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	previous := quote.Status
	applyPlan(quote, plan)

	if req.NotifyClient {
		notification := newQuoteNotification(
			quote.UserID,
			models.NotificationTypeStatusChange,
			plan.Notification.NotificationTitle,
			plan.Notification.NotificationBody,
			quote,
		)
		if err := s.notificationRepo.Create(tx, notification); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Quote status changed",
		"quote_id", quote.ID,
		"from", previous,
		"to", plan.Status,
		"percentage", plan.Percentage,
		"automatic_message", plan.IsAutomatic,
		"notified", req.NotifyClient,
	)

	if req.NotifyClient && quote.User != nil {
		if err := s.mailer.SendStatusUpdate(ctx, quote.User, quote, plan); err != nil {
			logger.CtxWithError(ctx, "Failed to send status email", err, "quote_id", quote.ID)
		}
	}

	resp := &dto.TransitionResponse{
		Quote:   dto.NewQuoteResponse(quote, true),
		Message: dto.NewMessageDTO(message),
	}
	if s.strict {
		resp.Allowed = algorithms.AllowedTransitions(plan.Status)
	}
	return resp, nil
}

// applyPlan переносит результат перехода в загруженную модель для ответа
func applyPlan(quote *models.QuoteRequest, plan algorithms.TransitionPlan) {
	updatedAt := plan.UpdatedAt
	quote.Status = plan.Status
	quote.ProgressPercentage = plan.Percentage
	quote.ProgressStage = plan.Stage
	quote.ProgressUpdatedAt = &updatedAt
	if plan.CompletedAt != nil {
		quote.CompletedAt = plan.CompletedAt
	}
}

func mapPlanError(err error) error {
	switch {
	case errors.Is(err, algorithms.ErrUnknownStatus):
		return apperrors.ErrUnknownQuoteStatus
	case errors.Is(err, algorithms.ErrTransitionNotAllowed):
		return apperrors.ErrTransitionNotAllowed
	case errors.Is(err, algorithms.ErrInvalidPercentage):
		return apperrors.ValidationError(map[string]string{"progress": "Must be between 0 and 100"})
	default:
		return apperrors.InternalError(err)
	}
}
