package handlers

import (
	"net/http"

	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/services"
	"carpinteria_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminQuoteHandler - back office: все заявки, статистика и смена статуса
type AdminQuoteHandler struct {
	*BaseHandler
	quoteService    services.QuoteService
	workflowService services.WorkflowService
}

func NewAdminQuoteHandler(base *BaseHandler, quoteService services.QuoteService, workflowService services.WorkflowService) *AdminQuoteHandler {
	return &AdminQuoteHandler{
		BaseHandler:     base,
		quoteService:    quoteService,
		workflowService: workflowService,
	}
}

func (h *AdminQuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin/quotes")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("", h.ListQuotes)
		admin.GET("/stats", h.GetStats)
		admin.PUT("/:quoteId", h.UpdateQuote)
		admin.DELETE("/:quoteId", h.DeleteQuote)
		admin.PUT("/:quoteId/status", h.UpdateStatus)
	}
}

// ListQuotes godoc
// @Summary Все заявки
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Статус"
// @Param category query string false "Категория"
// @Param search query string false "Поиск по названию, описанию и материалу"
// @Param user_id query string false "Владелец"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.QuoteListResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /admin/quotes [get]
func (h *AdminQuoteHandler) ListQuotes(c *gin.Context) {
	var query dto.QuoteListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	quotes, err := h.quoteService.ListAllQuotes(c.Request.Context(), h.GetDB(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quotes)
}

// GetStats godoc
// @Summary Количество заявок по статусам
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QuoteStatsResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /admin/quotes/stats [get]
func (h *AdminQuoteHandler) GetStats(c *gin.Context) {
	stats, err := h.quoteService.GetStats(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateQuote godoc
// @Summary Цена, срок и заметки администратора
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param request body dto.AdminUpdateQuoteRequest true "Поля администратора"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/quotes/{quoteId} [put]
func (h *AdminQuoteHandler) UpdateQuote(c *gin.Context) {
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	var req dto.AdminUpdateQuoteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	quote, err := h.quoteService.AdminUpdateQuote(c.Request.Context(), h.GetDB(c), quoteID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// DeleteQuote godoc
// @Summary Удалить любую заявку
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/quotes/{quoteId} [delete]
func (h *AdminQuoteHandler) DeleteQuote(c *gin.Context) {
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	if err := h.quoteService.AdminDeleteQuote(c.Request.Context(), h.GetDB(c), quoteID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Quote request deleted"})
}

// UpdateStatus godoc
// @Summary Сменить статус заявки
// @Description Выставляет прогресс и этап по умолчанию, пишет сообщение в ленту
// @Description и, если notify_client=true, уведомляет клиента (и шлет письмо)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param request body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} apperrors.ErrorResponse "Неизвестный статус"
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Переход запрещен (строгий режим)"
// @Router /admin/quotes/{quoteId}/status [put]
func (h *AdminQuoteHandler) UpdateStatus(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.workflowService.TransitionStatus(c.Request.Context(), h.GetDB(c), quoteID, actorID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
