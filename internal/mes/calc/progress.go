package calc

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// StageProgress 单工序进度
type StageProgress struct {
	StageID    string  `json:"stage_id"`
	StageName  string  `json:"stage_name"`
	Produced   float64 `json:"produced"`
	Planned    float64 `json:"planned"`
	Percentage float64 `json:"percentage"`
	UOM        string  `json:"uom"`
	IsCurrent  bool    `json:"is_current"`
}

// FindStage 在全部已知工序中查找，找不到返回nil
func FindStage(stages []entity.WorkflowStage, stageID string) *entity.WorkflowStage {
	for i := range stages {
		if stages[i].ID == stageID {
			return &stages[i]
		}
	}
	return nil
}

// PreviousStageID 返回计划工序列表中 stageID 的上一道工序，
// stageID 为首道工序或不在列表中时返回空串。
func PreviousStageID(job *entity.Job, stageID string) string {
	for i, id := range job.PlannedStageIDs {
		if id == stageID {
			if i == 0 {
				return ""
			}
			return job.PlannedStageIDs[i-1]
		}
	}
	return ""
}

// plannedForStage 推导某工序的计划数量及其单位。
// 产出单位为包装单位时：优先 计划箱数×每箱支数；否则退回
// （显式计划产出 或 订单数量）× 拼版数（拼版数未设置则不换算）。
// 注意：退回分支即使未发生真实的包装换算，单位也一律按包装单位上报，
// 这是沿用已有数据口径，刻意保留。
// 其余工序：扫描用料清单中大张类单位的行取其需求量，否则退回
// 显式计划产出或订单数量，单位按 sheets 上报。
func plannedForStage(job *entity.Job, stage *entity.WorkflowStage) (float64, string) {
	out := ParseUOM(stage.OutputUnit)

	base := job.PlannedOutputQty
	if base <= 0 {
		base = job.OrderedQty
	}

	if out.IsPackaging() {
		if job.PlannedBoxes > 0 && job.PcsPerBox > 0 {
			return job.PlannedBoxes * job.PcsPerBox, stage.OutputUnit
		}
		if job.NumberUp > 0 {
			return base * job.NumberUp, stage.OutputUnit
		}
		return base, stage.OutputUnit
	}

	for _, item := range job.BOMItems {
		if ParseUOM(item.Unit).IsSheet() {
			return item.RequiredQty, UOMLabelSheets
		}
	}
	return base, UOMLabelSheets
}

// StageProgressFor 计算某工序的进度，工序在已知工艺路线中不存在时返回nil。
// 只合计真实产出记录，转序记录不计入产出。
func StageProgressFor(job *entity.Job, stageID string, runs []entity.ProductionRun, stages []entity.WorkflowStage) *StageProgress {
	stage := FindStage(stages, stageID)
	if stage == nil {
		return nil
	}

	part := PartitionRuns(runs, stageID)
	produced := SumGood(part.Production)

	planned, uom := plannedForStage(job, stage)

	var pct float64
	if planned > 0 {
		pct = produced / planned * 100
		if pct > 100 {
			pct = 100
		}
	}

	return &StageProgress{
		StageID:    stageID,
		StageName:  stage.Name,
		Produced:   produced,
		Planned:    planned,
		Percentage: pct,
		UOM:        uom,
		IsCurrent:  job.CurrentStageID == stageID,
	}
}

// AllStageProgress 按计划工序顺序计算全部工序进度，未知工序跳过
func AllStageProgress(job *entity.Job, runs []entity.ProductionRun, stages []entity.WorkflowStage) []StageProgress {
	var result []StageProgress
	for _, stageID := range job.PlannedStageIDs {
		if p := StageProgressFor(job, stageID, runs, stages); p != nil {
			result = append(result, *p)
		}
	}
	return result
}
