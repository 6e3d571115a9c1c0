package models

// Attachment - фото или чертеж, приложенный к заявке
type Attachment struct {
	BaseModel
	QuoteRequestID string `gorm:"type:varchar(36);not null;index" json:"quote_request_id"`
	UploaderID     string `gorm:"type:varchar(36);not null" json:"uploader_id"`
	FileName       string `gorm:"type:varchar(255);not null" json:"file_name"`
	MimeType       string `gorm:"type:varchar(100);not null" json:"mime_type"`
	Size           int64  `json:"size"`
	Path           string `gorm:"type:varchar(500);not null" json:"-"`
	ThumbnailPath  string `gorm:"type:varchar(500)" json:"-"`
}

func (a *Attachment) IsImage() bool {
	switch a.MimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
