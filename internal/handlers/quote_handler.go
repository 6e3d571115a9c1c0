package handlers

import (
	"net/http"

	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/services"
	"carpinteria_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// QuoteHandler - клиентский портал заявок
type QuoteHandler struct {
	*BaseHandler
	quoteService services.QuoteService
}

func NewQuoteHandler(base *BaseHandler, quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler:  base,
		quoteService: quoteService,
	}
}

func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	quotes := r.Group("/quotes")
	quotes.Use(middleware.AuthMiddleware())
	{
		quotes.POST("", h.CreateQuote)
		quotes.GET("", h.ListMyQuotes)
		quotes.GET("/:quoteId", h.GetQuote)
		quotes.PUT("/:quoteId", h.UpdateQuote)
		quotes.DELETE("/:quoteId", h.DeleteQuote)
		quotes.GET("/:quoteId/progress", h.GetProgressHistory)
	}
}

// CreateQuote godoc
// @Summary Новая заявка на изготовление
// @Description Заявка создается в статусе pendiente (10%), администраторы получают уведомление
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuoteRequest true "Заявка"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateQuoteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// ListMyQuotes godoc
// @Summary Мои заявки
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param status query string false "Статус"
// @Param category query string false "Категория"
// @Param search query string false "Поиск"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.QuoteListResponse
// @Router /quotes [get]
func (h *QuoteHandler) ListMyQuotes(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.QuoteListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	quotes, err := h.quoteService.ListMyQuotes(c.Request.Context(), h.GetDB(c), userID, &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quotes)
}

// GetQuote godoc
// @Summary Заявка по ID
// @Description Клиент видит только свои заявки, администратор - любые
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} dto.QuoteResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), h.GetDB(c), actorID, role, quoteID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateQuote godoc
// @Summary Изменить свою заявку
// @Description Только пока заявка в статусе pendiente
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param request body dto.UpdateQuoteRequest true "Изменяемые поля"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Заявка уже в работе"
// @Router /quotes/{quoteId} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), h.GetDB(c), userID, quoteID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// DeleteQuote godoc
// @Summary Удалить свою заявку
// @Description Только пока заявка в статусе pendiente
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Заявка уже в работе"
// @Router /quotes/{quoteId} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), h.GetDB(c), userID, quoteID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Quote request deleted"})
}

// GetProgressHistory godoc
// @Summary История прогресса заявки
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} map[string][]dto.ProgressResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/progress [get]
func (h *QuoteHandler) GetProgressHistory(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	history, err := h.quoteService.GetProgressHistory(c.Request.Context(), h.GetDB(c), actorID, role, quoteID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": history})
}
