package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	QuoteHandler        *QuoteHandler
	AdminQuoteHandler   *AdminQuoteHandler
	CommentHandler      *CommentHandler
	AttachmentHandler   *AttachmentHandler
	NotificationHandler *NotificationHandler
	FileHandler         *FileHandler
}
