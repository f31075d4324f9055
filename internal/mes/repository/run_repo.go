package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *entity.ProductionRun) error {
	return r.db.Create(run).Error
}

func (r *RunRepository) BatchCreate(runs []entity.ProductionRun) error {
	return r.db.Create(&runs).Error
}

// ListByJob 返回某任务的全部报工记录，按报工时间升序。
// 计算引擎要求每次调用传入完整、新鲜的记录快照，这里不做任何缓存。
func (r *RunRepository) ListByJob(jobID string) ([]entity.ProductionRun, error) {
	var runs []entity.ProductionRun
	err := r.db.Where("job_id = ?", jobID).
		Order("reported_at ASC, created_at ASC").Find(&runs).Error
	return runs, err
}

func (r *RunRepository) ListByJobAndStage(jobID, stageID string) ([]entity.ProductionRun, error) {
	var runs []entity.ProductionRun
	err := r.db.Where("job_id = ? AND stage_id = ?", jobID, stageID).
		Order("reported_at ASC, created_at ASC").Find(&runs).Error
	return runs, err
}

func (r *RunRepository) GetByID(id string) (*entity.ProductionRun, error) {
	var run entity.ProductionRun
	err := r.db.Where("id = ?", id).First(&run).Error
	return &run, err
}
