package middleware

import (
	"errors"
	"strings"

	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/pkg/apperrors"
	"carpinteria_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware - проверка JWT. Роль и статус берутся из БД, а не из токена:
// понижение или блокировка пользователя действуют сразу.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			abort(c, apperrors.ErrInvalidToken)
			return
		}

		dbVal, _ := c.Get(string(contextkeys.DBContextKey))
		db, ok := dbVal.(*gorm.DB)
		if !ok || db == nil {
			abort(c, apperrors.InternalError(errors.New("database not found in context")))
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abort(c, apperrors.ErrInvalidToken)
				return
			}
			abort(c, apperrors.DatabaseError(err))
			return
		}
		if user.Status == models.UserStatusSuspended {
			abort(c, apperrors.ErrUserSuspended)
			return
		}

		c.Set(contextkeys.UserIDKey, user.ID)
		c.Set(contextkeys.RoleKey, user.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RoleMiddleware - middleware ограничения по ролям
func RoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			abort(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !allowed[role] {
			abort(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

// GetUserRole извлекает роль из контекста
func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	roleVal, exists := c.Get(contextkeys.RoleKey)
	if !exists {
		return "", false
	}

	switch role := roleVal.(type) {
	case models.UserRole:
		return role, true
	case string:
		return models.UserRole(role), true
	default:
		return "", false
	}
}

// abort отдает ошибку в общем формате и прерывает цепочку
func abort(c *gin.Context, err *apperrors.AppError) {
	apperrors.HandleError(c, err)
}
