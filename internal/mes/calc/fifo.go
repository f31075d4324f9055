package calc

import (
	"sort"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// LotStock 某工序某批次的在制品账面（每次调用按最新报工列表重算，从不落库）
type LotStock struct {
	Lot string `json:"lot"`
	// TransferredAt 该批次最早一笔转入的时间，FIFO排序键
	TransferredAt time.Time `json:"transferred_at"`
	Transferred   float64   `json:"transferred"`
	Consumed      float64   `json:"consumed"`
	Remaining     float64   `json:"remaining"`
}

// LotAllocation 一笔按批次的分配
type LotAllocation struct {
	Lot string  `json:"lot"`
	Qty float64 `json:"qty"`
}

// AllocationResult FIFO分配结果。
// Shortage > 0 表示转入余量不足：缺口为 Shortage，且不产生任何分配，
// 调用方必须拒绝落账并向操作员提示缺口数量。
type AllocationResult struct {
	Allocations []LotAllocation `json:"allocations"`
	Shortage    float64         `json:"shortage"`
}

// LotStocks 计算某工序各批次的转入、消耗与余量。
// 转入按来源记录（上道工序）分批次合计；消耗按本工序真实产出记录
// 自身的批次标签合计，extraConsumed 为调用方尚未落账的额外消耗。
// 特例：整个工序只转入过一个批次时，本工序全部真实产出（含额外消耗）
// 不论批次标签一律记到该批次头上——操作员在无歧义时经常漏填或错填
// 批次，这是刻意的简化而非缺陷。余量为负时归零。
func LotStocks(runs []entity.ProductionRun, stageID, prevStageID string, extraConsumed map[string]float64) []LotStock {
	part := PartitionRuns(runs, stageID)
	sources := SourceRunsForTransfers(part.Transfer, runs, prevStageID)

	byLot := make(map[string]*LotStock)
	for _, src := range sources {
		stock, ok := byLot[src.Lot]
		if !ok {
			stock = &LotStock{Lot: src.Lot, TransferredAt: src.ReportedAt}
			byLot[src.Lot] = stock
		}
		stock.Transferred += src.QtyGood
		if src.ReportedAt.Before(stock.TransferredAt) {
			stock.TransferredAt = src.ReportedAt
		}
	}

	singleLot := ""
	if len(byLot) == 1 {
		for lot := range byLot {
			singleLot = lot
		}
	}

	consume := func(lot string, qty float64) {
		if singleLot != "" {
			lot = singleLot
		}
		if stock, ok := byLot[lot]; ok {
			stock.Consumed += qty
		}
	}
	for _, r := range part.Production {
		consume(r.Lot, r.QtyGood)
	}
	for lot, qty := range extraConsumed {
		consume(lot, qty)
	}

	stocks := make([]LotStock, 0, len(byLot))
	for _, stock := range byLot {
		stock.Remaining = stock.Transferred - stock.Consumed
		if stock.Remaining < 0 {
			stock.Remaining = 0
		}
		stocks = append(stocks, *stock)
	}

	// 最早转入在前；时间相同按批次标签定序，保证结果确定
	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].TransferredAt.Equal(stocks[j].TransferredAt) {
			return stocks[i].Lot < stocks[j].Lot
		}
		return stocks[i].TransferredAt.Before(stocks[j].TransferredAt)
	})
	return stocks
}

// AllocateFIFO 把投入单位的需求数量按FIFO分配到各批次余量上。
// 成功时分配数量之和恰等于 needed；余量合计不足时返回缺口且零分配。
func AllocateFIFO(needed float64, runs []entity.ProductionRun, stageID, prevStageID string, extraConsumed map[string]float64) AllocationResult {
	stocks := LotStocks(runs, stageID, prevStageID, extraConsumed)

	outstanding := needed
	var allocations []LotAllocation
	for _, stock := range stocks {
		if outstanding <= 0 {
			break
		}
		take := stock.Remaining
		if take > outstanding {
			take = outstanding
		}
		if take <= 0 {
			continue
		}
		allocations = append(allocations, LotAllocation{Lot: stock.Lot, Qty: take})
		outstanding -= take
	}

	if outstanding > 0 {
		return AllocationResult{Shortage: outstanding}
	}
	return AllocationResult{Allocations: allocations}
}
