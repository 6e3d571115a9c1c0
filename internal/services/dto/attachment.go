package dto

import (
	"time"

	"carpinteria_backend/internal/models"
)

type AttachmentResponse struct {
	ID             string    `json:"id"`
	QuoteRequestID string    `json:"quote_request_id"`
	UploaderID     string    `json:"uploader_id"`
	FileName       string    `json:"file_name"`
	MimeType       string    `json:"mime_type"`
	Size           int64     `json:"size"`
	URL            string    `json:"url"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewAttachmentResponse(a *models.Attachment, url, thumbURL string) *AttachmentResponse {
	return &AttachmentResponse{
		ID:             a.ID,
		QuoteRequestID: a.QuoteRequestID,
		UploaderID:     a.UploaderID,
		FileName:       a.FileName,
		MimeType:       a.MimeType,
		Size:           a.Size,
		URL:            url,
		ThumbnailURL:   thumbURL,
		CreatedAt:      a.CreatedAt,
	}
}
