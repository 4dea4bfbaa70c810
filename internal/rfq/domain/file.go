package domain

import "time"

type FileStatus string

const (
	FileUploading  FileStatus = "uploading"
	FileProcessing FileStatus = "processing"
	FileCompleted  FileStatus = "completed"
	FileFailed     FileStatus = "failed"
)

// File is a document attached to a project's RFQ (drawings, specs, quote images).
type File struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	OrgID       string     `json:"org_id" gorm:"index;not null"`
	ProjectID   string     `json:"project_id" gorm:"index;not null"`
	Filename    string     `json:"filename"`
	URL         string     `json:"url"`
	StorageKey  string     `json:"-"`
	ContentType string     `json:"content_type,omitempty"`
	Size        int64      `json:"size"`
	Status      FileStatus `json:"status"`
	OCRText     string     `json:"ocr_text,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (f File) EntityID() string { return f.ID }

// Parsed reports whether text has been extracted from the file.
func (f File) Parsed() bool { return f.OCRText != "" }

type FilePatch struct {
	Status  *FileStatus `json:"status,omitempty"`
	OCRText *string     `json:"ocr_text,omitempty"`
}

func (p FilePatch) Apply(f *File) {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.OCRText != nil {
		f.OCRText = *p.OCRText
	}
}
