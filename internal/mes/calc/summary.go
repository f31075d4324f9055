package calc

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// StageSummary 当前工序汇总：进度 + 转入数量 + 完工容差阈值。
// 调用方在落账一条新报工前，可把候选数量经 ConvertToOutputUOM 换算后
// 加到 Produced 上，再用 State 预判落账后的完工状态。
type StageSummary struct {
	StageProgress

	// TransferredIn 从上道工序转入的数量（按来源记录数量合计）
	TransferredIn float64 `json:"transferred_in"`

	Band                     Band    `json:"band"`
	CompletionThreshold      float64 `json:"completion_threshold"`
	CompletionThresholdUpper float64 `json:"completion_threshold_upper"`

	// ConvertToOutputUOM 绑定了当前工序投入/产出单位和拼版数的换算闭包
	ConvertToOutputUOM func(qty float64) float64 `json:"-"`
}

// State 判定某产出数量相对当前工序容差带的完工状态
func (s *StageSummary) State(produced float64) CompletionState {
	return s.Band.State(s.Planned, produced)
}

// CurrentStageSummary 计算当前工序汇总，任务未下达或工序未知时返回nil。
func CurrentStageSummary(job *entity.Job, runs []entity.ProductionRun, stages []entity.WorkflowStage) *StageSummary {
	if job.CurrentStageID == "" {
		return nil
	}
	progress := StageProgressFor(job, job.CurrentStageID, runs, stages)
	if progress == nil {
		return nil
	}
	stage := FindStage(stages, job.CurrentStageID)

	var transferredIn float64
	if prevID := PreviousStageID(job, job.CurrentStageID); prevID != "" {
		part := PartitionRuns(runs, job.CurrentStageID)
		sources := SourceRunsForTransfers(part.Transfer, runs, prevID)
		transferredIn = SumGood(sources)
	}

	band := Thresholds(progress.Planned)

	inUOM := ParseUOM(stage.InputUnit)
	outUOM := ParseUOM(stage.OutputUnit)
	numberUp := job.NumberUp

	return &StageSummary{
		StageProgress:            *progress,
		TransferredIn:            transferredIn,
		Band:                     band,
		CompletionThreshold:      band.LowerBound(progress.Planned),
		CompletionThresholdUpper: band.UpperBound(progress.Planned),
		ConvertToOutputUOM: func(qty float64) float64 {
			return ToOutputUnit(qty, inUOM, outUOM, numberUp)
		},
	}
}
