package entity

import (
	"time"
)

// JobAttachment 任务附件（文件存储在MinIO，此处只记录元数据）
type JobAttachment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	JobID     string    `json:"job_id" gorm:"size:36;not null;index"`
	FileName  string    `json:"file_name" gorm:"size:256;not null"`
	ObjectKey string    `json:"object_key" gorm:"size:512;not null"`
	FileSize  int64     `json:"file_size" gorm:"not null"`
	MimeType  string    `json:"mime_type" gorm:"size:128"`
	CreatedBy string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (JobAttachment) TableName() string {
	return "mes_job_attachments"
}
