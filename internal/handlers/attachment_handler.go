package handlers

import (
	"net/http"

	"carpinteria_backend/internal/middleware"
	"carpinteria_backend/internal/services"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	*BaseHandler
	attachmentService services.AttachmentService
}

func NewAttachmentHandler(base *BaseHandler, attachmentService services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		BaseHandler:       base,
		attachmentService: attachmentService,
	}
}

func (h *AttachmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	attachments := r.Group("/quotes/:quoteId/attachments")
	attachments.Use(middleware.AuthMiddleware())
	{
		attachments.GET("", h.ListAttachments)
		attachments.POST("", h.UploadAttachment)
		attachments.DELETE("/:attachmentId", h.DeleteAttachment)
	}
}

// UploadAttachment godoc
// @Summary Загрузить фото или план к заявке
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param file formData file true "Файл"
// @Success 201 {object} dto.AttachmentResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File is required"))
		return
	}

	attachment, err := h.attachmentService.Upload(c.Request.Context(), h.GetDB(c), quoteID, actorID, role, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// ListAttachments godoc
// @Summary Вложения заявки
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Success 200 {object} map[string][]dto.AttachmentResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/attachments [get]
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(c.Request.Context(), h.GetDB(c), quoteID, actorID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// DeleteAttachment godoc
// @Summary Удалить вложение
// @Description Удалить может автор загрузки или администратор
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param quoteId path string true "ID заявки"
// @Param attachmentId path string true "ID вложения"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /quotes/{quoteId}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	actorID, role, ok := h.GetActor(c)
	if !ok {
		return
	}
	quoteID, ok := ParseParamID(c, "quoteId")
	if !ok {
		return
	}
	attachmentID, ok := ParseParamID(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), h.GetDB(c), quoteID, attachmentID, actorID, role); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Attachment deleted"})
}
