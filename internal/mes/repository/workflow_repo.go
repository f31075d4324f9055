package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(wf *entity.Workflow) error {
	return r.db.Create(wf).Error
}

func (r *WorkflowRepository) GetByID(id string) (*entity.Workflow, error) {
	var wf entity.Workflow
	err := r.db.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ? AND deleted_at IS NULL", id).First(&wf).Error
	return &wf, err
}

func (r *WorkflowRepository) List() ([]entity.Workflow, error) {
	var wfs []entity.Workflow
	err := r.db.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("deleted_at IS NULL").Order("created_at ASC").Find(&wfs).Error
	return wfs, err
}

// AllStages 返回所有工艺路线的全部工序，供按工序ID跨路线查找使用
func (r *WorkflowRepository) AllStages() ([]entity.WorkflowStage, error) {
	var stages []entity.WorkflowStage
	err := r.db.Order("workflow_id ASC, sort_order ASC").Find(&stages).Error
	return stages, err
}
