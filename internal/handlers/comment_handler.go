package handlers

import (
	"net/http"

	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/services"
	"carpinteria_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CommentHandler - лента сообщений по заявке
type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    base,
		commentService: commentService,
	}
}

func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/quotes/:quoteId/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.GET("", h.ListComments)
		messages.POST("", h.AddComment)
	}
}

// AddComment godoc
// @Summary Комментарий к заявке
// @Description Комментарий клиента уведомляет всех администраторов, комментарий администратора - владельца заявки
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param request body dto.CreateCommentRequest true "Текст"
// @Success 201 {object} dto.CommentResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/messages [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), h.GetDB(c), quoteID, actorID, role, req.Text)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments godoc
// @Summary Лента сообщений заявки
// @Description Комментарии и автоматические сообщения о смене статуса, по времени
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} map[string][]dto.MessageDTO
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/messages [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	messages, err := h.commentService.ListComments(c.Request.Context(), h.GetDB(c), quoteID, actorID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
