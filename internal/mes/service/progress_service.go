package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/calc"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// ProgressService 进度查询服务。引擎是纯函数，这里只负责在每次查询时
// 取最新的任务、报工和工序数据喂给它。
type ProgressService struct {
	jobRepo *repository.JobRepository
	runRepo *repository.RunRepository
	wfRepo  *repository.WorkflowRepository
}

func NewProgressService(jobRepo *repository.JobRepository, runRepo *repository.RunRepository, wfRepo *repository.WorkflowRepository) *ProgressService {
	return &ProgressService{jobRepo: jobRepo, runRepo: runRepo, wfRepo: wfRepo}
}

// StageProgress 全部计划工序的进度
func (s *ProgressService) StageProgress(jobID string) ([]calc.StageProgress, error) {
	job, runs, stages, err := s.load(jobID)
	if err != nil {
		return nil, err
	}
	return calc.AllStageProgress(job, runs, stages), nil
}

// CurrentStageSummary 当前工序汇总，任务未下达或工序未知时返回nil
func (s *ProgressService) CurrentStageSummary(jobID string) (*calc.StageSummary, error) {
	job, runs, stages, err := s.load(jobID)
	if err != nil {
		return nil, err
	}
	return calc.CurrentStageSummary(job, runs, stages), nil
}

func (s *ProgressService) load(jobID string) (*entity.Job, []entity.ProductionRun, []entity.WorkflowStage, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("任务不存在: %w", err)
	}
	runs, err := s.runRepo.ListByJob(jobID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("读取报工记录失败: %w", err)
	}
	stages, err := s.wfRepo.AllStages()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("读取工序定义失败: %w", err)
	}
	return job, runs, stages, nil
}
