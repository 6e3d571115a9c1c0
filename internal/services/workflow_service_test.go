package services

import (
	"errors"
	"testing"
	"time"

	"carpinteria_backend/internal/algorithms"
	"carpinteria_backend/internal/email"
	"carpinteria_backend/internal/email/mocks"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newWorkflow(provider email.Provider, strict bool) *workflowService {
	mailer := NewEmailService(provider, MailSettings{OnStatus: true, OnComment: true})
	svc := NewWorkflowService(
		repositories.NewQuoteRepository(),
		repositories.NewMessageRepository(),
		repositories.NewNotificationRepository(),
		mailer,
		strict,
	).(*workflowService)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestTransitionStatus_AppliesDefaults(t *testing.T) {
	for _, status := range models.QuoteStatuses {
		t.Run(string(status), func(t *testing.T) {
			db := newTestDB(t)
			admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
			client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
			quote := createQuote(t, db, client, models.QuoteStatusPending)

			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			provider.EXPECT().
				SendWithTemplate(email.TemplateStatusUpdate, gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ string, _ email.TemplateData, msg *email.Email) error {
					assert.Equal(t, []string{client.Email}, msg.To)
					return nil
				})

			svc := newWorkflow(provider, false)
			resp, err := svc.TransitionStatus(testCtx, db, quote.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
				Status:       string(status),
				NotifyClient: true,
			})
			require.NoError(t, err)

			defaults, _ := algorithms.DefaultsFor(status)
			stored := reloadQuote(t, db, quote.ID)
			assert.Equal(t, status, stored.Status)
			assert.Equal(t, defaults.Percentage, stored.ProgressPercentage)
			assert.Equal(t, defaults.Stage, stored.ProgressStage)
			require.NotNil(t, stored.ProgressUpdatedAt)
			if status == models.QuoteStatusCompleted {
				assert.NotNil(t, stored.CompletedAt)
			} else {
				assert.Nil(t, stored.CompletedAt)
			}

			require.NotNil(t, resp.Message)
			assert.Equal(t, defaults.ClientMessage, resp.Message.Text)
			assert.True(t, resp.Message.IsAutomatic)
			assert.Equal(t, models.UserRoleAdmin, resp.Message.SenderRole)
			assert.Equal(t, status, resp.Quote.Status)

			assert.EqualValues(t, 1, countRows(t, db, &models.ProgressUpdate{}, "quote_request_id = ?", quote.ID))
			assert.EqualValues(t, 1, countRows(t, db, &models.QuoteMessage{}, "quote_request_id = ?", quote.ID))

			var notifications []models.Notification
			require.NoError(t, db.Where("user_id = ?", client.ID).Find(&notifications).Error)
			require.Len(t, notifications, 1)
			assert.Equal(t, models.NotificationTypeStatusChange, notifications[0].Type)
			assert.Equal(t, defaults.NotificationTitle, notifications[0].Title)
			assert.Equal(t, defaults.NotificationBody, notifications[0].Message)
		})
	}
}

func TestTransitionStatus_ExplicitMessageAndProgress(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, client, models.QuoteStatusPending)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	progress := 60
	svc := newWorkflow(provider, false)
	resp, err := svc.TransitionStatus(testCtx, db, quote.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
		Status:   string(models.QuoteStatusAccepted),
		Message:  "  Empezamos el lunes  ",
		Progress: &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, "Empezamos el lunes", resp.Message.Text)
	assert.False(t, resp.Message.IsAutomatic)
	assert.Empty(t, resp.Allowed)

	stored := reloadQuote(t, db, quote.ID)
	assert.Equal(t, models.QuoteStatusAccepted, stored.Status)
	assert.Equal(t, 60, stored.ProgressPercentage)
	assert.Equal(t, "Presupuesto aprobado", stored.ProgressStage)

	var update models.ProgressUpdate
	require.NoError(t, db.Where("quote_request_id = ?", quote.ID).First(&update).Error)
	assert.Equal(t, "Empezamos el lunes", update.Note)
	assert.Equal(t, admin.ID, update.CreatedBy)

	// notify_client не передан: ни уведомления, ни письма
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "user_id = ?", client.ID))
}

func TestTransitionStatus_NonAdminForbidden(t *testing.T) {
	db := newTestDB(t)
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, client, models.QuoteStatusPending)

	svc := newWorkflow(mocks.NewMockProvider(gomock.NewController(t)), false)
	_, err := svc.TransitionStatus(testCtx, db, quote.ID, client.ID, models.UserRoleClient, &dto.UpdateStatusRequest{
		Status:       string(models.QuoteStatusAccepted),
		NotifyClient: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	stored := reloadQuote(t, db, quote.ID)
	assert.Equal(t, models.QuoteStatusPending, stored.Status)
	assert.EqualValues(t, 0, countRows(t, db, &models.QuoteMessage{}, "quote_request_id = ?", quote.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.ProgressUpdate{}, "quote_request_id = ?", quote.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "1 = 1"))
}

func TestTransitionStatus_Validation(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, client, models.QuoteStatusPending)

	svc := newWorkflow(mocks.NewMockProvider(gomock.NewController(t)), false)
	tooMuch := 150

	tests := []struct {
		name    string
		quoteID string
		req     *dto.UpdateStatusRequest
		wantErr error
		code    apperrors.ErrorCode
	}{
		{
			name:    "unknown status",
			quoteID: quote.ID,
			req:     &dto.UpdateStatusRequest{Status: "terminado"},
			wantErr: apperrors.ErrUnknownQuoteStatus,
		},
		{
			name:    "progress out of range",
			quoteID: quote.ID,
			req:     &dto.UpdateStatusRequest{Status: string(models.QuoteStatusAccepted), Progress: &tooMuch},
			code:    apperrors.CodeValidationFailed,
		},
		{
			name:    "missing quote",
			quoteID: "00000000-0000-0000-0000-000000000000",
			req:     &dto.UpdateStatusRequest{Status: string(models.QuoteStatusAccepted)},
			wantErr: apperrors.ErrQuoteNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TransitionStatus(testCtx, db, tt.quoteID, admin.ID, models.UserRoleAdmin, tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.code != "" {
				appErr, ok := apperrors.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, tt.code, appErr.Code)
			}
		})
	}

	assert.Equal(t, models.QuoteStatusPending, reloadQuote(t, db, quote.ID).Status)
}

func TestTransitionStatus_StrictMode(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	done := createQuote(t, db, client, models.QuoteStatusCompleted)
	pending := createQuote(t, db, client, models.QuoteStatusPending)

	svc := newWorkflow(mocks.NewMockProvider(gomock.NewController(t)), true)

	_, err := svc.TransitionStatus(testCtx, db, done.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
		Status: string(models.QuoteStatusPending),
	})
	assert.ErrorIs(t, err, apperrors.ErrTransitionNotAllowed)
	assert.Equal(t, models.QuoteStatusCompleted, reloadQuote(t, db, done.ID).Status)

	resp, err := svc.TransitionStatus(testCtx, db, pending.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
		Status: string(models.QuoteStatusAccepted),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Quote.ProgressPercentage)
	assert.ElementsMatch(t, algorithms.AllowedTransitions(models.QuoteStatusAccepted), resp.Allowed)
}

func TestTransitionStatus_PermissiveAllowsAnyJump(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	done := createQuote(t, db, client, models.QuoteStatusCompleted)

	svc := newWorkflow(mocks.NewMockProvider(gomock.NewController(t)), false)
	resp, err := svc.TransitionStatus(testCtx, db, done.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
		Status: string(models.QuoteStatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusPending, resp.Quote.Status)
	assert.Equal(t, 10, resp.Quote.ProgressPercentage)
}

func TestTransitionStatus_EmailFailureDoesNotRollback(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, client, models.QuoteStatusPending)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		SendWithTemplate(email.TemplateStatusUpdate, gomock.Any(), gomock.Any()).
		Return(errors.New("smtp: connection refused"))

	svc := newWorkflow(provider, false)
	resp, err := svc.TransitionStatus(testCtx, db, quote.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
		Status:       string(models.QuoteStatusInProgress),
		NotifyClient: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusInProgress, resp.Quote.Status)
	assert.Equal(t, models.QuoteStatusInProgress, reloadQuote(t, db, quote.ID).Status)
	assert.EqualValues(t, 1, countRows(t, db, &models.Notification{}, "user_id = ?", client.ID))
}

func TestTransitionStatus_WriteFailureRollsBack(t *testing.T) {
	cases := []struct {
		name          string
		messages      repositories.MessageRepository
		notifications repositories.NotificationRepository
	}{
		{
			name:          "message write fails",
			messages:      failingMessageRepo{repositories.NewMessageRepository()},
			notifications: repositories.NewNotificationRepository(),
		},
		{
			name:          "notification write fails",
			messages:      repositories.NewMessageRepository(),
			notifications: failingNotificationRepo{repositories.NewNotificationRepository()},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
			client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
			quote := createQuote(t, db, client, models.QuoteStatusPending)

			// письмо не должно уйти: у мока нет ожиданий
			provider := mocks.NewMockProvider(gomock.NewController(t))
			svc := NewWorkflowService(
				repositories.NewQuoteRepository(),
				tc.messages,
				tc.notifications,
				NewEmailService(provider, MailSettings{OnStatus: true}),
				false,
			)

			_, err := svc.TransitionStatus(testCtx, db, quote.ID, admin.ID, models.UserRoleAdmin, &dto.UpdateStatusRequest{
				Status:       string(models.QuoteStatusCompleted),
				NotifyClient: true,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, errDiskFull)

			stored := reloadQuote(t, db, quote.ID)
			assert.Equal(t, models.QuoteStatusPending, stored.Status)
			assert.Equal(t, 10, stored.ProgressPercentage)
			assert.Equal(t, "Solicitud recibida", stored.ProgressStage)
			assert.Nil(t, stored.ProgressUpdatedAt)
			assert.Nil(t, stored.CompletedAt)

			assert.Zero(t, countRows(t, db, &models.ProgressUpdate{}, "quote_request_id = ?", quote.ID))
			assert.Zero(t, countRows(t, db, &models.QuoteMessage{}, "quote_request_id = ?", quote.ID))
			assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", client.ID))
		})
	}
}
