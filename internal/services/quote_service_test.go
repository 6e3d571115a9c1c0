package services

import (
	"strings"
	"testing"

	"carpinteria_backend/internal/email"
	"carpinteria_backend/internal/email/mocks"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newQuoteService(t *testing.T, provider email.Provider) (QuoteService, storage.Storage) {
	t.Helper()

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	svc := NewQuoteService(
		repositories.NewQuoteRepository(),
		repositories.NewUserRepository(),
		repositories.NewNotificationRepository(),
		repositories.NewAttachmentRepository(),
		store,
		NewEmailService(provider, MailSettings{}),
	)
	return svc, store
}

func validQuoteRequest() *dto.CreateQuoteRequest {
	return &dto.CreateQuoteRequest{
		Title:       "Mesa de comedor",
		Category:    string(models.QuoteCategoryTable),
		Material:    "nogal",
		Description: "Mesa extensible para ocho personas",
		BudgetMin:   800,
		BudgetMax:   1500,
	}
}

func TestCreateQuote(t *testing.T) {
	db := newTestDB(t)
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	admin1 := createUser(t, db, models.UserRoleAdmin, "admin1@taller.es")
	admin2 := createUser(t, db, models.UserRoleAdmin, "admin2@taller.es")

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		SendWithTemplate(email.TemplateNewQuoteRequest, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ string, _ email.TemplateData, msg *email.Email) error {
			assert.ElementsMatch(t, []string{admin1.Email, admin2.Email}, msg.To)
			return nil
		})

	svc, _ := newQuoteService(t, provider)
	resp, err := svc.CreateQuote(testCtx, db, client.ID, validQuoteRequest())
	require.NoError(t, err)

	assert.Equal(t, client.ID, resp.UserID)
	assert.Equal(t, models.QuoteStatusPending, resp.Status)
	assert.Equal(t, 10, resp.ProgressPercentage)
	assert.Equal(t, "Solicitud recibida", resp.ProgressStage)

	assert.EqualValues(t, 1, countRows(t, db, &models.ProgressUpdate{}, "quote_request_id = ?", resp.ID))
	assert.EqualValues(t, 2, countRows(t, db, &models.Notification{}, "type = ?", models.NotificationTypeNewQuoteRequest))
	assert.EqualValues(t, 0, countRows(t, db, &models.Notification{}, "user_id = ?", client.ID))
}

func TestCreateQuote_InvalidBudget(t *testing.T) {
	db := newTestDB(t)
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")

	svc, _ := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))
	req := validQuoteRequest()
	req.BudgetMin, req.BudgetMax = 2000, 1000

	_, err := svc.CreateQuote(testCtx, db, client.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidBudgetRange)
	assert.EqualValues(t, 0, countRows(t, db, &models.QuoteRequest{}, "1 = 1"))
}

func TestGetQuote_Access(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	stranger := createUser(t, db, models.UserRoleClient, "otro@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusPending)
	require.NoError(t, db.Model(quote).Update("admin_notes", "cliente exigente").Error)

	svc, _ := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))

	resp, err := svc.GetQuote(testCtx, db, owner.ID, models.UserRoleClient, quote.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.AdminNotes)

	_, err = svc.GetQuote(testCtx, db, stranger.ID, models.UserRoleClient, quote.ID)
	assert.ErrorIs(t, err, apperrors.ErrQuoteAccessDenied)

	resp, err = svc.GetQuote(testCtx, db, admin.ID, models.UserRoleAdmin, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "cliente exigente", resp.AdminNotes)
	require.NotNil(t, resp.Client)
	assert.Equal(t, owner.Email, resp.Client.Email)

	_, err = svc.GetQuote(testCtx, db, admin.ID, models.UserRoleAdmin, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrQuoteNotFound)
}

func TestUpdateQuote_OnlyWhilePending(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	stranger := createUser(t, db, models.UserRoleClient, "otro@correo.es")
	pending := createQuote(t, db, owner, models.QuoteStatusPending)
	accepted := createQuote(t, db, owner, models.QuoteStatusAccepted)

	svc, _ := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))
	title := "Armario con altillo"

	resp, err := svc.UpdateQuote(testCtx, db, owner.ID, pending.ID, &dto.UpdateQuoteRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, resp.Title)

	_, err = svc.UpdateQuote(testCtx, db, owner.ID, accepted.ID, &dto.UpdateQuoteRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrQuoteNotEditable)

	_, err = svc.UpdateQuote(testCtx, db, stranger.ID, pending.ID, &dto.UpdateQuoteRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrQuoteAccessDenied)

	low := 5000.0
	_, err = svc.UpdateQuote(testCtx, db, owner.ID, pending.ID, &dto.UpdateQuoteRequest{BudgetMin: &low})
	require.NoError(t, err)

	high := 100.0
	_, err = svc.UpdateQuote(testCtx, db, owner.ID, pending.ID, &dto.UpdateQuoteRequest{BudgetMax: &high})
	assert.ErrorIs(t, err, apperrors.ErrInvalidBudgetRange)
}

func TestDeleteQuote_RemovesChildrenAndFiles(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	pending := createQuote(t, db, owner, models.QuoteStatusPending)
	accepted := createQuote(t, db, owner, models.QuoteStatusAccepted)

	svc, store := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))

	filePath := "quotes/" + pending.ID + "/plano.pdf"
	require.NoError(t, store.Save(testCtx, filePath, strings.NewReader("%PDF-1.4"), "application/pdf"))
	require.NoError(t, db.Create(&models.Attachment{
		QuoteRequestID: pending.ID,
		UploaderID:     owner.ID,
		FileName:       "plano.pdf",
		MimeType:       "application/pdf",
		Size:           8,
		Path:           filePath,
	}).Error)
	require.NoError(t, db.Create(&models.QuoteMessage{
		QuoteRequestID: pending.ID,
		SenderID:       owner.ID,
		SenderRole:     models.UserRoleClient,
		Text:           "hola",
	}).Error)

	require.NoError(t, svc.DeleteQuote(testCtx, db, owner.ID, pending.ID))

	assert.EqualValues(t, 0, countRows(t, db, &models.QuoteRequest{}, "id = ?", pending.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Attachment{}, "quote_request_id = ?", pending.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.QuoteMessage{}, "quote_request_id = ?", pending.ID))
	exists, err := store.Exists(testCtx, filePath)
	require.NoError(t, err)
	assert.False(t, exists)

	err = svc.DeleteQuote(testCtx, db, owner.ID, accepted.ID)
	assert.ErrorIs(t, err, apperrors.ErrQuoteNotEditable)
	assert.EqualValues(t, 1, countRows(t, db, &models.QuoteRequest{}, "id = ?", accepted.ID))
}

func TestListQuotes(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	other := createUser(t, db, models.UserRoleClient, "otro@correo.es")
	createQuote(t, db, owner, models.QuoteStatusPending)
	createQuote(t, db, owner, models.QuoteStatusAccepted)
	createQuote(t, db, other, models.QuoteStatusAccepted)

	svc, _ := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))

	mine, err := svc.ListMyQuotes(testCtx, db, owner.ID, &dto.QuoteListQuery{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.PageInfo.Total)
	for _, q := range mine.Quotes {
		assert.Equal(t, owner.ID, q.UserID)
	}

	all, err := svc.ListAllQuotes(testCtx, db, &dto.QuoteListQuery{Status: string(models.QuoteStatusAccepted)}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.PageInfo.Total)

	stats, err := svc.GetStats(testCtx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[models.QuoteStatusPending])
	assert.EqualValues(t, 2, stats.ByStatus[models.QuoteStatusAccepted])
	assert.EqualValues(t, 0, stats.ByStatus[models.QuoteStatusCompleted])
}

func TestAdminUpdateQuote(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusInProgress)

	svc, _ := newQuoteService(t, mocks.NewMockProvider(gomock.NewController(t)))
	price := 1250.5
	notes := "Madera de proveedor local"

	resp, err := svc.AdminUpdateQuote(testCtx, db, quote.ID, &dto.AdminUpdateQuoteRequest{QuotedPrice: &price, AdminNotes: &notes})
	require.NoError(t, err)
	require.NotNil(t, resp.QuotedPrice)
	assert.Equal(t, price, *resp.QuotedPrice)
	assert.Equal(t, notes, resp.AdminNotes)

	_, err = svc.AdminUpdateQuote(testCtx, db, "00000000-0000-0000-0000-000000000000", &dto.AdminUpdateQuoteRequest{AdminNotes: &notes})
	assert.ErrorIs(t, err, apperrors.ErrQuoteNotFound)

	require.NoError(t, svc.AdminDeleteQuote(testCtx, db, quote.ID))
	assert.ErrorIs(t, svc.AdminDeleteQuote(testCtx, db, quote.ID), apperrors.ErrQuoteNotFound)
}
