package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
)

// WorkflowService 工艺路线服务
type WorkflowService struct {
	wfRepo *repository.WorkflowRepository
}

func NewWorkflowService(wfRepo *repository.WorkflowRepository) *WorkflowService {
	return &WorkflowService{wfRepo: wfRepo}
}

// CreateWorkflowRequest 创建工艺路线请求
type CreateWorkflowRequest struct {
	Name   string               `json:"name" binding:"required"`
	Notes  string               `json:"notes"`
	Stages []CreateStageRequest `json:"stages" binding:"required,min=1,dive"`
}

// CreateStageRequest 工序定义
type CreateStageRequest struct {
	Name       string `json:"name" binding:"required"`
	InputUnit  string `json:"input_unit"`
	OutputUnit string `json:"output_unit"`
}

// Create 创建工艺路线及其有序工序
func (s *WorkflowService) Create(req CreateWorkflowRequest, userID string) (*entity.Workflow, error) {
	now := time.Now()
	wf := &entity.Workflow{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Notes:     req.Notes,
		CreatedBy: userID,
		CreatedAt: now,
	}
	for i, st := range req.Stages {
		inputUnit := st.InputUnit
		if inputUnit == "" {
			inputUnit = "sheets"
		}
		outputUnit := st.OutputUnit
		if outputUnit == "" {
			outputUnit = "sheets"
		}
		wf.Stages = append(wf.Stages, entity.WorkflowStage{
			ID:         uuid.New().String(),
			WorkflowID: wf.ID,
			Name:       st.Name,
			InputUnit:  inputUnit,
			OutputUnit: outputUnit,
			SortOrder:  i + 1,
			CreatedAt:  now,
		})
	}

	if err := s.wfRepo.Create(wf); err != nil {
		return nil, fmt.Errorf("创建工艺路线失败: %w", err)
	}
	return wf, nil
}

func (s *WorkflowService) GetByID(id string) (*entity.Workflow, error) {
	return s.wfRepo.GetByID(id)
}

func (s *WorkflowService) List() ([]entity.Workflow, error) {
	return s.wfRepo.List()
}
