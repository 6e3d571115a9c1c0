package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"carpinteria_backend/database"
	"carpinteria_backend/internal/auth"
	"carpinteria_backend/internal/config"
	"carpinteria_backend/internal/email"
	"carpinteria_backend/internal/handlers"
	"carpinteria_backend/internal/logger"
	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/routes"
	"carpinteria_backend/internal/services"
	"carpinteria_backend/internal/session"
	"carpinteria_backend/internal/storage"
	"carpinteria_backend/internal/validator"
	"carpinteria_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Bootstrap - общая для всех команд инициализация: логгер, JWT, БД
func Bootstrap(cfg *config.Config) (*gorm.DB, error) {
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	apperrors.SetDebug(cfg.Server.Env != "production")
	auth.Configure(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		logger.Info("Database migrated")
	}
	return db, nil
}

// Run поднимает HTTP сервер и ждет SIGINT/SIGTERM
func Run(cfg *config.Config) error {
	db, err := Bootstrap(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := SeedFirstAdmin(ctx, db, cfg.FirstAdminEmail, cfg.FirstAdminPassword, cfg.FirstAdminName); err != nil {
		// без администратора back office недоступен - сервер не запускаем
		return fmt.Errorf("failed to seed first admin user: %w", err)
	}

	sessions, err := session.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer sessions.Close()
	if err := sessions.Ping(ctx); err != nil {
		return fmt.Errorf("redis unavailable: %w", err)
	}
	logger.Info("Redis connected")

	ginRouter, err := SetupRouter(cfg, db, sessions)
	if err != nil {
		return err
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SetupRouter собирает хранилище, сервисы, хэндлеры и маршруты
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, sessions services.SessionStore) (*gin.Engine, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
		SignedTTL:  time.Duration(cfg.Upload.SignedURLMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	emailProvider, err := newEmailProvider(cfg)
	if err != nil {
		return nil, err
	}

	serviceContainer := initializeServices(cfg, sessions, storageInstance, emailProvider)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, nil
}

// newEmailProvider - SMTP, если почта включена, иначе письма только пишутся в лог
func newEmailProvider(cfg *config.Config) (email.Provider, error) {
	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	if !cfg.Email.Enabled {
		logger.Warn("Email disabled, outgoing mail is only logged")
		return email.NewLogProvider(templates), nil
	}

	smtpConfig := email.DefaultConfig()
	smtpConfig.Host = cfg.Email.SMTPHost
	smtpConfig.Port = cfg.Email.SMTPPort
	smtpConfig.Username = cfg.Email.SMTPUsername
	smtpConfig.Password = cfg.Email.SMTPPassword
	smtpConfig.FromEmail = cfg.Email.FromEmail
	smtpConfig.FromName = cfg.Email.FromName

	provider := email.NewSMTPProvider(smtpConfig, templates)
	if err := provider.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return provider, nil
}

func initializeServices(cfg *config.Config, sessions services.SessionStore, storageInstance storage.Storage, emailProvider email.Provider) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	quoteRepo := repositories.NewQuoteRepository()
	messageRepo := repositories.NewMessageRepository()
	notificationRepo := repositories.NewNotificationRepository()
	attachmentRepo := repositories.NewAttachmentRepository()

	mailer := services.NewEmailService(emailProvider, services.MailSettings{
		OnStatus:  cfg.Workflow.EmailOnStatus,
		OnComment: cfg.Workflow.EmailOnComment,
		PortalURL: cfg.Email.PortalURL,
	})

	uploadConfig := services.UploadConfig{
		MaxSize:        cfg.Upload.MaxSize,
		AllowedTypes:   cfg.Upload.AllowedTypes,
		MaxPerQuote:    cfg.Upload.MaxPerQuote,
		GenerateThumbs: cfg.Upload.GenerateThumbs,
		ImageQuality:   cfg.Upload.ImageQuality,
	}

	refreshTTL := time.Duration(cfg.JWT.RefreshTTLHours) * time.Hour

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, sessions, refreshTTL),
		UserService:         services.NewUserService(userRepo),
		QuoteService:        services.NewQuoteService(quoteRepo, userRepo, notificationRepo, attachmentRepo, storageInstance, mailer),
		WorkflowService:     services.NewWorkflowService(quoteRepo, messageRepo, notificationRepo, mailer, cfg.Workflow.StrictTransitions),
		CommentService:      services.NewCommentService(quoteRepo, messageRepo, userRepo, notificationRepo, mailer),
		NotificationService: services.NewNotificationService(notificationRepo),
		AttachmentService:   services.NewAttachmentService(attachmentRepo, quoteRepo, storageInstance, uploadConfig),
		EmailService:        mailer,
		EmailProvider:       emailProvider,
		Storage:             storageInstance,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService),
		QuoteHandler:        handlers.NewQuoteHandler(baseHandler, services.QuoteService),
		AdminQuoteHandler:   handlers.NewAdminQuoteHandler(baseHandler, services.QuoteService, services.WorkflowService),
		CommentHandler:      handlers.NewCommentHandler(baseHandler, services.CommentService),
		AttachmentHandler:   handlers.NewAttachmentHandler(baseHandler, services.AttachmentService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		FileHandler:         handlers.NewFileHandler(baseHandler, services.Storage),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize + 1<<20
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// SeedFirstAdmin создает администратора, если пользователя с таким email еще нет.
// Возвращает true, если админ был создан.
func SeedFirstAdmin(ctx context.Context, db *gorm.DB, adminEmail, adminPassword, adminName string) (bool, error) {
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return false, nil
	}
	if err := auth.ValidatePassword(adminPassword); err != nil {
		return false, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail, "role", adminUser.Role)
		return false, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         adminName,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := tx.Create(newAdmin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user in database: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	logger.Info("Successfully created first admin user", "email", adminEmail)
	return true, nil
}
