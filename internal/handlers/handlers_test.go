package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/internal/services/mocks"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/internal/validator"
	"carpinteria_backend/pkg/apperrors"
	"carpinteria_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	adminID  = "5a0f3c1e-7d55-4d8e-9a51-0e4c3b2a1f00"
	clientID = "8c2d9e4f-1b3a-4c5d-8e6f-7a8b9c0d1e2f"
	quoteID  = "0e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("test", io.Discard)
	os.Exit(m.Run())
}

func newTestGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

// newRouter подставляет вызывающего вместо AuthMiddleware
func newRouter(t *testing.T, userID string, role models.UserRole) *gin.Engine {
	t.Helper()

	db := newTestGormDB(t)
	router := gin.New()
	router.Use(middleware.DBMiddleware(db))
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(contextkeys.UserIDKey, userID)
			c.Set(contextkeys.RoleKey, role)
		}
		c.Next()
	})
	return router
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error.Code
}

func TestAdminQuoteHandler_UpdateStatus(t *testing.T) {
	progress := 45

	tests := []struct {
		name       string
		quoteID    string
		body       interface{}
		setupMock  func(m *mocks.MockWorkflowService)
		wantStatus int
		wantCode   string
	}{
		{
			name:    "success passes actor and request through",
			quoteID: quoteID,
			body:    map[string]interface{}{"status": "en_proceso", "progress": progress, "notify_client": true},
			setupMock: func(m *mocks.MockWorkflowService) {
				m.EXPECT().
					TransitionStatus(gomock.Any(), gomock.Any(), quoteID, adminID, models.UserRoleAdmin, gomock.Any()).
					DoAndReturn(func(_, _ any, _, _ string, _ models.UserRole, req *dto.UpdateStatusRequest) (*dto.TransitionResponse, error) {
						assert.Equal(t, "en_proceso", req.Status)
						require.NotNil(t, req.Progress)
						assert.Equal(t, progress, *req.Progress)
						assert.True(t, req.NotifyClient)
						return &dto.TransitionResponse{
							Quote: &dto.QuoteResponse{ID: quoteID, Status: models.QuoteStatusInProgress, ProgressPercentage: progress},
						}, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing status fails validation",
			quoteID:    quoteID,
			body:       map[string]interface{}{"message": "hola"},
			setupMock:  func(m *mocks.MockWorkflowService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.CodeValidationFailed),
		},
		{
			name:       "progress over 100 fails validation",
			quoteID:    quoteID,
			body:       map[string]interface{}{"status": "aceptado", "progress": 101},
			setupMock:  func(m *mocks.MockWorkflowService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.CodeValidationFailed),
		},
		{
			name:       "quote id must be a uuid",
			quoteID:    "42",
			body:       map[string]interface{}{"status": "aceptado"},
			setupMock:  func(m *mocks.MockWorkflowService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "service app error is returned as is",
			quoteID: quoteID,
			body:    map[string]interface{}{"status": "pendiente"},
			setupMock: func(m *mocks.MockWorkflowService) {
				m.EXPECT().
					TransitionStatus(gomock.Any(), gomock.Any(), quoteID, adminID, models.UserRoleAdmin, gomock.Any()).
					Return(nil, apperrors.ErrTransitionNotAllowed)
			},
			wantStatus: http.StatusConflict,
			wantCode:   string(apperrors.CodeInvalidStatus),
		},
		{
			name:    "unexpected error becomes 500",
			quoteID: quoteID,
			body:    map[string]interface{}{"status": "aceptado"},
			setupMock: func(m *mocks.MockWorkflowService) {
				m.EXPECT().
					TransitionStatus(gomock.Any(), gomock.Any(), quoteID, adminID, models.UserRoleAdmin, gomock.Any()).
					Return(nil, errors.New("disk on fire"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(apperrors.CodeInternalError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			workflow := mocks.NewMockWorkflowService(ctrl)
			tt.setupMock(workflow)

			h := NewAdminQuoteHandler(NewBaseHandler(validator.New()), nil, workflow)
			router := newRouter(t, adminID, models.UserRoleAdmin)
			router.PUT("/admin/quotes/:quoteId/status", h.UpdateStatus)

			w := doJSON(router, http.MethodPut, "/admin/quotes/"+tt.quoteID+"/status", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
		})
	}
}

func TestAdminQuoteHandler_UpdateStatus_NoActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	workflow := mocks.NewMockWorkflowService(ctrl)

	h := NewAdminQuoteHandler(NewBaseHandler(validator.New()), nil, workflow)
	router := newRouter(t, "", "")
	router.PUT("/admin/quotes/:quoteId/status", h.UpdateStatus)

	w := doJSON(router, http.MethodPut, "/admin/quotes/"+quoteID+"/status", map[string]string{"status": "aceptado"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationHandler(t *testing.T) {
	notificationID := uuid.NewString()

	t.Run("list passes filters and pagination", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockNotificationService(ctrl)
		svc.EXPECT().
			GetUserNotifications(gomock.Any(), gomock.Any(), clientID, &dto.NotificationQuery{UnreadOnly: true, Type: "new_comment"}, 2, 5).
			Return(&dto.NotificationListResponse{
				Notifications: []*dto.NotificationResponse{{ID: notificationID, Type: "new_comment"}},
				PageInfo:      dto.NewPageInfo(6, 2, 5),
			}, nil)

		h := NewNotificationHandler(NewBaseHandler(validator.New()), svc)
		router := newRouter(t, clientID, models.UserRoleClient)
		router.GET("/notifications", h.GetUserNotifications)

		w := doJSON(router, http.MethodGet, "/notifications?unread_only=true&type=new_comment&page=2&page_size=5", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), notificationID)
		assert.Contains(t, w.Body.String(), `"total_pages":2`)
	})

	t.Run("unknown type is rejected before the service", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockNotificationService(ctrl)

		h := NewNotificationHandler(NewBaseHandler(validator.New()), svc)
		router := newRouter(t, clientID, models.UserRoleClient)
		router.GET("/notifications", h.GetUserNotifications)

		w := doJSON(router, http.MethodGet, "/notifications?type=spam", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unread count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockNotificationService(ctrl)
		svc.EXPECT().GetUnreadCount(gomock.Any(), gomock.Any(), clientID).Return(int64(7), nil)

		h := NewNotificationHandler(NewBaseHandler(validator.New()), svc)
		router := newRouter(t, clientID, models.UserRoleClient)
		router.GET("/notifications/unread-count", h.GetUnreadCount)

		w := doJSON(router, http.MethodGet, "/notifications/unread-count", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"unread_count":7}`, w.Body.String())
	})

	t.Run("mark as read maps access denied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockNotificationService(ctrl)
		svc.EXPECT().MarkAsRead(gomock.Any(), gomock.Any(), clientID, notificationID).Return(apperrors.ErrNotificationAccessDenied)

		h := NewNotificationHandler(NewBaseHandler(validator.New()), svc)
		router := newRouter(t, clientID, models.UserRoleClient)
		router.PUT("/notifications/:notificationId/read", h.MarkAsRead)

		w := doJSON(router, http.MethodPut, "/notifications/"+notificationID+"/read", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockNotificationService(ctrl)
		svc.EXPECT().DeleteNotification(gomock.Any(), gomock.Any(), clientID, notificationID).Return(nil)

		h := NewNotificationHandler(NewBaseHandler(validator.New()), svc)
		router := newRouter(t, clientID, models.UserRoleClient)
		router.DELETE("/notifications/:notificationId", h.DeleteNotification)

		w := doJSON(router, http.MethodDelete, "/notifications/"+notificationID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFileHandler_ServeFile(t *testing.T) {
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "quotes/q1/plano.pdf", bytes.NewReader([]byte("%PDF-1.4 fake")), "application/pdf"))
	require.NoError(t, store.Save(context.Background(), "quotes/q1/sin-extension", bytes.NewReader([]byte("%PDF-1.4 fake")), "application/pdf"))

	h := NewFileHandler(NewBaseHandler(validator.New()), store)
	router := gin.New()
	h.RegisterRoutes(router.Group(""))

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantContent string
	}{
		{"by extension", http.MethodGet, "/files/quotes/q1/plano.pdf", http.StatusOK, "application/pdf"},
		{"sniffed without extension", http.MethodGet, "/files/quotes/q1/sin-extension", http.StatusOK, "application/pdf"},
		{"missing file", http.MethodGet, "/files/quotes/q1/nada.pdf", http.StatusNotFound, ""},
		{"head existing", http.MethodHead, "/files/quotes/q1/plano.pdf", http.StatusOK, "application/pdf"},
		{"head missing", http.MethodHead, "/files/quotes/q1/nada.pdf", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, tt.method, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantContent != "" {
				assert.Equal(t, tt.wantContent, w.Header().Get("Content-Type"))
			}
		})
	}

	w := doJSON(router, http.MethodGet, "/files/quotes/q1/plano.pdf", nil)
	assert.Equal(t, "%PDF-1.4 fake", w.Body.String())
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", 1, 20},
		{"?page=3&page_size=10", 3, 10},
		{"?page=-1&page_size=0", 1, 20},
		{"?page=abc&page_size=500", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			page, pageSize := ParsePagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}
