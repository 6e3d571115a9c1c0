package services

import (
	"testing"

	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotifications(t *testing.T, db *gorm.DB, quote *models.QuoteRequest, userID string, types ...string) []*models.Notification {
	t.Helper()

	out := make([]*models.Notification, 0, len(types))
	for _, typ := range types {
		n := newQuoteNotification(userID, typ, "Título", "Cuerpo", quote)
		require.NoError(t, db.Create(n).Error)
		out = append(out, n)
	}
	return out
}

func TestNotificationService(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository())
	owner := createUser(t, db, models.UserRoleClient, "cliente@correo.es")
	other := createUser(t, db, models.UserRoleClient, "otro@correo.es")
	quote := createQuote(t, db, owner, models.QuoteStatusPending)

	mine := seedNotifications(t, db, quote, owner.ID,
		models.NotificationTypeStatusChange,
		models.NotificationTypeNewComment,
		models.NotificationTypeNewComment,
	)
	theirs := seedNotifications(t, db, quote, other.ID, models.NotificationTypeStatusChange)

	list, err := svc.GetUserNotifications(testCtx, db, owner.ID, &dto.NotificationQuery{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, quote.ID, list.Notifications[0].Data["quote_request_id"])

	list, err = svc.GetUserNotifications(testCtx, db, owner.ID, &dto.NotificationQuery{Type: models.NotificationTypeNewComment}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	require.NoError(t, svc.MarkAsRead(testCtx, db, owner.ID, mine[0].ID))
	count, err := svc.GetUnreadCount(testCtx, db, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	list, err = svc.GetUserNotifications(testCtx, db, owner.ID, &dto.NotificationQuery{UnreadOnly: true}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	assert.ErrorIs(t, svc.MarkAsRead(testCtx, db, owner.ID, theirs[0].ID), apperrors.ErrNotificationAccessDenied)
	assert.ErrorIs(t, svc.DeleteNotification(testCtx, db, owner.ID, theirs[0].ID), apperrors.ErrNotificationAccessDenied)
	assert.ErrorIs(t, svc.MarkAsRead(testCtx, db, owner.ID, "00000000-0000-0000-0000-000000000000"), apperrors.ErrNotificationNotFound)

	require.NoError(t, svc.MarkAllAsRead(testCtx, db, owner.ID))
	count, err = svc.GetUnreadCount(testCtx, db, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// чужие не затронуты
	count, err = svc.GetUnreadCount(testCtx, db, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.DeleteNotification(testCtx, db, owner.ID, mine[1].ID))
	list, err = svc.GetUserNotifications(testCtx, db, owner.ID, &dto.NotificationQuery{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
}
