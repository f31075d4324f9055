package calc

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// Partition 某一工序的报工分类结果
type Partition struct {
	// Production 真实产出记录（无来源记录引用）
	Production []entity.ProductionRun
	// Transfer 转序记录（引用了上道工序的来源记录）
	Transfer []entity.ProductionRun
}

// PartitionRuns 把报工列表按工序拆分为真实产出和转序两类。
// 不属于该工序的记录被忽略；两类记录合计覆盖该工序全部记录，互不重叠。
func PartitionRuns(runs []entity.ProductionRun, stageID string) Partition {
	var p Partition
	for _, r := range runs {
		if r.StageID != stageID {
			continue
		}
		if r.IsTransfer() {
			p.Transfer = append(p.Transfer, r)
		} else {
			p.Production = append(p.Production, r)
		}
	}
	return p
}

// SourceRunsForTransfers 收集转序记录引用的全部来源记录ID，返回 allRuns 中
// 属于上道工序且ID命中的记录。转入数量以来源记录自身的数量为准，避免转序
// 记录被单独改动后产生偏差；同一来源记录被多条转序记录引用时只返回一次。
func SourceRunsForTransfers(transferRuns, allRuns []entity.ProductionRun, prevStageID string) []entity.ProductionRun {
	ids := make(map[string]bool)
	for _, t := range transferRuns {
		for _, id := range t.SourceRunIDs {
			ids[id] = true
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var sources []entity.ProductionRun
	seen := make(map[string]bool)
	for _, r := range allRuns {
		if r.StageID != prevStageID || !ids[r.ID] || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		sources = append(sources, r)
	}
	return sources
}

// SumGood 合计真实产出数量，数量缺失按0处理
func SumGood(runs []entity.ProductionRun) float64 {
	var total float64
	for _, r := range runs {
		total += r.QtyGood
	}
	return total
}
