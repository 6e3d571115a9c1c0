package routes

import (
	"net/http"

	"carpinteria_backend/internal/handlers"
	"carpinteria_backend/pkg/contextkeys"

	_ "carpinteria_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	ginRouter.GET("/health", healthCheck)
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.FileHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.QuoteHandler.RegisterRoutes(api)
		appHandlers.CommentHandler.RegisterRoutes(api)
		appHandlers.AttachmentHandler.RegisterRoutes(api)
		appHandlers.AdminQuoteHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
	}
}

// healthCheck - проверка живости для балансировщика, пингует БД
func healthCheck(c *gin.Context) {
	dbVal, ok := c.Get(string(contextkeys.DBContextKey))
	db, isDB := dbVal.(*gorm.DB)
	if !ok || !isDB {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "missing"})
		return
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
