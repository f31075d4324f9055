package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/calc"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 扫码防重窗口。防重完全在服务层做，计算引擎保持无副作用。
const scanDedupTTL = 24 * time.Hour

// RunService 报工服务。引擎的分配结果只是建议值：本服务在同一次调用内
// 先重新读取最新报工快照再落账，把建议和提交之间的窗口压到最小（见GetByID
// 后的快照读取）；并发重复分配由这层的先查后写缓解，引擎本身不做版本控制。
type RunService struct {
	jobRepo *repository.JobRepository
	runRepo *repository.RunRepository
	wfRepo  *repository.WorkflowRepository
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewRunService(jobRepo *repository.JobRepository, runRepo *repository.RunRepository, wfRepo *repository.WorkflowRepository, rdb *redis.Client, logger *zap.Logger) *RunService {
	return &RunService{jobRepo: jobRepo, runRepo: runRepo, wfRepo: wfRepo, rdb: rdb, logger: logger}
}

// RecordOutputRequest 产出报工请求
type RecordOutputRequest struct {
	// StageID 报工工序，空则取任务当前工序
	StageID string  `json:"stage_id"`
	Qty     float64 `json:"qty" binding:"required,gt=0"`
	// QtyInInputUnit 为true时 Qty 按工序投入单位填报（如扫码清点大张数），
	// 落账前经工序换算闭包折算为产出单位
	QtyInInputUnit bool    `json:"qty_in_input_unit"`
	QtyScrap       float64 `json:"qty_scrap"`
	// Lot 批次标签，仅首道工序使用；有上道工序时批次由FIFO分配决定
	Lot      string `json:"lot"`
	ScanCode string `json:"scan_code"`
}

// RecordOutput 记录产出报工。
// 落账前做两道检查：
//  1. 完工预判——把候选数量换算后加到已产出上，超出容差上限则拒绝；
//  2. 有上道工序时按FIFO把消耗分配到转入批次，余量不足则拒绝并报出缺口。
//
// 成功时按分配结果逐批次落账（每个批次一条记录）。
func (s *RunService) RecordOutput(ctx context.Context, jobID string, req RecordOutputRequest, userID string) ([]entity.ProductionRun, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}

	stageID := req.StageID
	if stageID == "" {
		stageID = job.CurrentStageID
	}
	if stageID == "" {
		return nil, fmt.Errorf("任务尚未下达，无法报工")
	}

	if err := s.checkScanDedup(ctx, jobID, req.ScanCode); err != nil {
		return nil, err
	}

	// 提交前重新取最新快照，分配结果也基于这份快照
	runs, err := s.runRepo.ListByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("读取报工记录失败: %w", err)
	}
	stages, err := s.wfRepo.AllStages()
	if err != nil {
		return nil, fmt.Errorf("读取工序定义失败: %w", err)
	}

	progress := calc.StageProgressFor(job, stageID, runs, stages)
	if progress == nil {
		return nil, fmt.Errorf("工序[%s]不在任何工艺路线中，无法计算进度", stageID)
	}
	stage := calc.FindStage(stages, stageID)
	inUOM := calc.ParseUOM(stage.InputUnit)
	outUOM := calc.ParseUOM(stage.OutputUnit)

	qtyOut := req.Qty
	if req.QtyInInputUnit {
		qtyOut = calc.ToOutputUnit(req.Qty, inUOM, outUOM, job.NumberUp)
	}

	// 完工预判：候选数量入账后不允许超出容差上限
	band := calc.Thresholds(progress.Planned)
	if band.State(progress.Planned, progress.Produced+qtyOut) == calc.StateOverLimit {
		return nil, fmt.Errorf("本次报工%.0f%s将使工序产出达到%.0f，超出完工上限%.0f，已拒绝",
			qtyOut, progress.UOM, progress.Produced+qtyOut, band.UpperBound(progress.Planned))
	}

	now := time.Now()
	newRun := func(lot string, qty float64) entity.ProductionRun {
		return entity.ProductionRun{
			ID:         uuid.New().String(),
			JobID:      jobID,
			StageID:    stageID,
			QtyGood:    qty,
			Lot:        lot,
			ReportedBy: userID,
			ReportedAt: now,
		}
	}

	var created []entity.ProductionRun
	prevID := calc.PreviousStageID(job, stageID)
	if prevID == "" {
		// 首道工序：没有转入批次，按操作员填写的批次直接落账
		run := newRun(req.Lot, qtyOut)
		run.QtyScrap = req.QtyScrap
		run.ScanCode = req.ScanCode
		created = append(created, run)
	} else {
		// 消耗按投入单位分配到转入批次
		needed := calc.ToInputUnit(qtyOut, inUOM, outUOM, job.NumberUp)
		result := calc.AllocateFIFO(needed, runs, stageID, prevID, nil)
		if result.Shortage > 0 {
			return nil, fmt.Errorf("转入余量不足：还需%.0f%s，缺口%.0f%s，请先从上道工序转入",
				needed, stage.InputUnit, result.Shortage, stage.InputUnit)
		}
		for _, alloc := range result.Allocations {
			run := newRun(alloc.Lot, calc.ToOutputUnit(alloc.Qty, inUOM, outUOM, job.NumberUp))
			created = append(created, run)
		}
		// 报废和扫码标识记在第一条上
		created[0].QtyScrap = req.QtyScrap
		created[0].ScanCode = req.ScanCode
	}

	if err := s.runRepo.BatchCreate(created); err != nil {
		return nil, fmt.Errorf("报工落账失败: %w", err)
	}
	s.logger.Info("output recorded",
		zap.String("job_id", jobID),
		zap.String("stage_id", stageID),
		zap.Float64("qty", qtyOut),
		zap.Int("lots", len(created)),
	)
	return created, nil
}

// TransferToCurrent 把上道工序尚未转序的产出转入当前工序。
// 按批次分组，每个批次生成一条转序记录，来源记录ID完整保留，
// 数量取来源记录数量之和；同一来源记录不会被二次转序。
func (s *RunService) TransferToCurrent(ctx context.Context, jobID, userID string) ([]entity.ProductionRun, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if job.CurrentStageID == "" {
		return nil, fmt.Errorf("任务尚未下达")
	}
	prevID := calc.PreviousStageID(job, job.CurrentStageID)
	if prevID == "" {
		return nil, fmt.Errorf("当前为首道工序，没有可转入的上道工序")
	}

	runs, err := s.runRepo.ListByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("读取报工记录失败: %w", err)
	}

	// 已被任何转序记录引用过的来源不再转
	referenced := make(map[string]bool)
	for _, r := range runs {
		for _, id := range r.SourceRunIDs {
			referenced[id] = true
		}
	}

	prevOutput := calc.PartitionRuns(runs, prevID).Production
	type lotGroup struct {
		qty     float64
		sources entity.StringList
	}
	groups := make(map[string]*lotGroup)
	var lotOrder []string
	for _, r := range prevOutput {
		if referenced[r.ID] {
			continue
		}
		g, ok := groups[r.Lot]
		if !ok {
			g = &lotGroup{}
			groups[r.Lot] = g
			lotOrder = append(lotOrder, r.Lot)
		}
		g.qty += r.QtyGood
		g.sources = append(g.sources, r.ID)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("上道工序没有可转序的产出")
	}

	now := time.Now()
	var created []entity.ProductionRun
	for _, lot := range lotOrder {
		g := groups[lot]
		created = append(created, entity.ProductionRun{
			ID:           uuid.New().String(),
			JobID:        jobID,
			StageID:      job.CurrentStageID,
			QtyGood:      g.qty,
			Lot:          lot,
			SourceRunIDs: g.sources,
			ReportedBy:   userID,
			ReportedAt:   now,
		})
	}

	if err := s.runRepo.BatchCreate(created); err != nil {
		return nil, fmt.Errorf("转序落账失败: %w", err)
	}
	s.logger.Info("wip transferred",
		zap.String("job_id", jobID),
		zap.String("from_stage", prevID),
		zap.String("to_stage", job.CurrentStageID),
		zap.Int("lots", len(created)),
	)
	return created, nil
}

// LotStocks 当前工序各批次的转入/消耗/余量，每次按最新报工重算
func (s *RunService) LotStocks(jobID string) ([]calc.LotStock, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if job.CurrentStageID == "" {
		return nil, fmt.Errorf("任务尚未下达")
	}
	prevID := calc.PreviousStageID(job, job.CurrentStageID)
	if prevID == "" {
		return nil, nil
	}
	runs, err := s.runRepo.ListByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("读取报工记录失败: %w", err)
	}
	return calc.LotStocks(runs, job.CurrentStageID, prevID, nil), nil
}

func (s *RunService) ListByJob(jobID string) ([]entity.ProductionRun, error) {
	return s.runRepo.ListByJob(jobID)
}

// checkScanDedup 扫码防重：SETNX占位，占位失败视为重复扫码
func (s *RunService) checkScanDedup(ctx context.Context, jobID, scanCode string) error {
	if scanCode == "" || s.rdb == nil {
		return nil
	}
	key := fmt.Sprintf("mes:scan:%s:%s", jobID, scanCode)
	ok, err := s.rdb.SetNX(ctx, key, 1, scanDedupTTL).Result()
	if err != nil {
		// redis不可用时放行，防重是尽力而为的保护
		s.logger.Warn("scan dedup unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return fmt.Errorf("扫码[%s]已提交过，请勿重复报工", scanCode)
	}
	return nil
}
