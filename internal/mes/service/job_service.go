package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/calc"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobService 生产任务服务。工序推进的规则判断（是否允许进入下道工序）
// 在这里实现，计算引擎只负责给出数量、阈值和分配结果。
type JobService struct {
	jobRepo *repository.JobRepository
	runRepo *repository.RunRepository
	wfRepo  *repository.WorkflowRepository
	logger  *zap.Logger
}

func NewJobService(jobRepo *repository.JobRepository, runRepo *repository.RunRepository, wfRepo *repository.WorkflowRepository, logger *zap.Logger) *JobService {
	return &JobService{jobRepo: jobRepo, runRepo: runRepo, wfRepo: wfRepo, logger: logger}
}

// CreateJobRequest 创建生产任务请求
type CreateJobRequest struct {
	ProductName        string  `json:"product_name" binding:"required"`
	OrderedQty         float64 `json:"ordered_qty" binding:"required,gt=0"`
	OrderedUOM         string  `json:"ordered_uom"`
	NumberUp           float64 `json:"number_up"`
	PcsPerBox          float64 `json:"pcs_per_box"`
	PlannedBoxes       float64 `json:"planned_boxes"`
	PlannedOutputQty   float64 `json:"planned_output_qty"`
	WorkflowID         string  `json:"workflow_id" binding:"required"`
	RequireStageOutput bool    `json:"require_stage_output"`
	Notes              string  `json:"notes"`

	BOMItems []CreateBOMItemRequest `json:"bom_items"`
}

// CreateBOMItemRequest 任务用料行
type CreateBOMItemRequest struct {
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name" binding:"required"`
	RequiredQty  float64 `json:"required_qty" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
}

// Create 创建生产任务，计划工序取自工艺路线的工序顺序
func (s *JobService) Create(req CreateJobRequest, userID string) (*entity.Job, error) {
	wf, err := s.wfRepo.GetByID(req.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("工艺路线不存在: %w", err)
	}
	if len(wf.Stages) == 0 {
		return nil, fmt.Errorf("工艺路线[%s]没有定义工序", wf.Name)
	}

	now := time.Now()
	code := fmt.Sprintf("JOB-%s%04d", now.Format("20060102"), now.UnixNano()%10000)

	orderedUOM := req.OrderedUOM
	if orderedUOM == "" {
		orderedUOM = "pcs"
	}

	var stageIDs entity.StringList
	for _, st := range wf.Stages {
		stageIDs = append(stageIDs, st.ID)
	}

	job := &entity.Job{
		ID:                 uuid.New().String(),
		JobCode:            code,
		ProductName:        req.ProductName,
		OrderedQty:         req.OrderedQty,
		OrderedUOM:         orderedUOM,
		NumberUp:           req.NumberUp,
		PcsPerBox:          req.PcsPerBox,
		PlannedBoxes:       req.PlannedBoxes,
		PlannedOutputQty:   req.PlannedOutputQty,
		PlannedStageIDs:    stageIDs,
		RequireStageOutput: req.RequireStageOutput,
		Status:             entity.JobStatusCreated,
		Notes:              req.Notes,
		CreatedBy:          userID,
	}
	for _, item := range req.BOMItems {
		unit := item.Unit
		if unit == "" {
			unit = "pcs"
		}
		job.BOMItems = append(job.BOMItems, entity.JobBOMItem{
			ID:           uuid.New().String(),
			JobID:        job.ID,
			MaterialCode: item.MaterialCode,
			MaterialName: item.MaterialName,
			RequiredQty:  item.RequiredQty,
			Unit:         unit,
		})
	}

	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("创建生产任务失败: %w", err)
	}
	s.logger.Info("job created",
		zap.String("job_id", job.ID),
		zap.String("job_code", job.JobCode),
		zap.Int("stages", len(stageIDs)),
	)
	return job, nil
}

func (s *JobService) GetByID(id string) (*entity.Job, error) {
	return s.jobRepo.GetByID(id)
}

func (s *JobService) List(params repository.JobListParams) ([]entity.Job, int64, error) {
	return s.jobRepo.List(params)
}

// Release 下达任务：当前工序置为首道计划工序
func (s *JobService) Release(id string) (*entity.Job, error) {
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if job.Status != entity.JobStatusCreated {
		return nil, fmt.Errorf("任务状态[%s]不允许下达", job.Status)
	}
	if len(job.PlannedStageIDs) == 0 {
		return nil, fmt.Errorf("任务没有计划工序")
	}

	job.CurrentStageID = job.PlannedStageIDs[0]
	job.Status = entity.JobStatusReleased
	if err := s.jobRepo.Update(job); err != nil {
		return nil, fmt.Errorf("下达任务失败: %w", err)
	}
	return job, nil
}

// Advance 推进到下道工序。RequireStageOutput 开启时，当前工序产出未达
// 完工下限则拒绝推进；末道工序推进即任务完工。
func (s *JobService) Advance(id string) (*entity.Job, error) {
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if job.CurrentStageID == "" {
		return nil, fmt.Errorf("任务尚未下达")
	}

	if job.RequireStageOutput {
		runs, err := s.runRepo.ListByJob(job.ID)
		if err != nil {
			return nil, fmt.Errorf("读取报工记录失败: %w", err)
		}
		stages, err := s.wfRepo.AllStages()
		if err != nil {
			return nil, fmt.Errorf("读取工序定义失败: %w", err)
		}
		summary := calc.CurrentStageSummary(job, runs, stages)
		if summary == nil {
			return nil, fmt.Errorf("当前工序[%s]无法计算进度", job.CurrentStageID)
		}
		if summary.State(summary.Produced) == calc.StateIncomplete {
			return nil, fmt.Errorf("当前工序产出%.0f%s未达完工下限%.0f，不允许进入下道工序",
				summary.Produced, summary.UOM, summary.CompletionThreshold)
		}
	}

	next := s.nextStageID(job)
	if next == "" {
		// 末道工序：任务完工
		job.CurrentStageID = ""
		job.Status = entity.JobStatusCompleted
	} else {
		job.CurrentStageID = next
		job.Status = entity.JobStatusInProgress
	}
	if err := s.jobRepo.Update(job); err != nil {
		return nil, fmt.Errorf("推进工序失败: %w", err)
	}
	s.logger.Info("job advanced",
		zap.String("job_id", job.ID),
		zap.String("current_stage", job.CurrentStageID),
		zap.String("status", job.Status),
	)
	return job, nil
}

func (s *JobService) nextStageID(job *entity.Job) string {
	for i, id := range job.PlannedStageIDs {
		if id == job.CurrentStageID && i+1 < len(job.PlannedStageIDs) {
			return job.PlannedStageIDs[i+1]
		}
	}
	return ""
}
