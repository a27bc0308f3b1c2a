package model

import (
	"path/filepath"
	"strings"
	"time"
)

// AllowedFileExtensions lists the receipt formats accepted on upload.
var AllowedFileExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// genericContentType is sent by clients that do not know the file type.
const genericContentType = "application/octet-stream"

// FileAttachment is a file picked in the new bill form.
type FileAttachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extension returns the lower-cased extension without the dot.
func (f FileAttachment) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// IsAllowed reports whether the extension is an accepted image format and the
// declared MIME type, when present and specific, agrees with it.
func (f FileAttachment) IsAllowed() bool {
	want, ok := AllowedFileExtensions[f.Extension()]
	if !ok {
		return false
	}
	if f.ContentType == "" {
		return true
	}
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	return mime == want || mime == genericContentType
}

// StoredFile is a receipt persisted for a bill.
type StoredFile struct {
	ID          string    `json:"id"`
	BillID      string    `json:"bill_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
