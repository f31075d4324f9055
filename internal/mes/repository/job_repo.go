package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *entity.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id string) (*entity.Job, error) {
	var job entity.Job
	err := r.db.Preload("BOMItems").
		Where("id = ? AND deleted_at IS NULL", id).First(&job).Error
	return &job, err
}

func (r *JobRepository) Update(job *entity.Job) error {
	return r.db.Save(job).Error
}

type JobListParams struct {
	Status         string
	CurrentStageID string
	Keyword        string
	Page           int
	Size           int
}

func (r *JobRepository) List(params JobListParams) ([]entity.Job, int64, error) {
	query := r.db.Model(&entity.Job{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CurrentStageID != "" {
		query = query.Where("current_stage_id = ?", params.CurrentStageID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("job_code ILIKE ? OR product_name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var jobs []entity.Job
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&jobs).Error
	return jobs, total, err
}

// DB 返回底层db用于事务
func (r *JobRepository) DB() *gorm.DB {
	return r.db
}
