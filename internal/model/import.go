package model

import (
	"time"

	"gorm.io/gorm"
)

// ImportStatus is the lifecycle state of a CSV import batch
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportBatch tracks a single CSV user-import upload
type ImportBatch struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Filename      string         `json:"filename" gorm:"type:varchar(255)"`
	Status        ImportStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	TotalRows     int            `json:"total_rows" gorm:"default:0"`
	ProcessedRows int            `json:"processed_rows" gorm:"default:0"`
	FailedRows    int            `json:"failed_rows" gorm:"default:0"`
	CreatedBy     uint           `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// ImportError records a single rejected row within an import batch
type ImportError struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BatchID   uint      `json:"batch_id" gorm:"index;not null"`
	RowNumber int       `json:"row_number"`
	RawLine   string    `json:"raw_line" gorm:"type:text"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Batch ImportBatch `json:"-" gorm:"foreignKey:BatchID"`
}
