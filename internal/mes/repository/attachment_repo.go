package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(att *entity.JobAttachment) error {
	return r.db.Create(att).Error
}

func (r *AttachmentRepository) GetByID(id string) (*entity.JobAttachment, error) {
	var att entity.JobAttachment
	err := r.db.Where("id = ?", id).First(&att).Error
	return &att, err
}

func (r *AttachmentRepository) ListByJob(jobID string) ([]entity.JobAttachment, error) {
	var atts []entity.JobAttachment
	err := r.db.Where("job_id = ?", jobID).Order("created_at DESC").Find(&atts).Error
	return atts, err
}
