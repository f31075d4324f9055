package entity

import (
	"time"
)

// ProductionRun 报工记录（不可变事件）
// SourceRunIDs 非空时该记录为转序记录：数量表示从上道工序转入本工序的在制品，
// 不计入本工序的实际产出。
type ProductionRun struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	JobID   string `json:"job_id" gorm:"size:36;not null;index"`
	StageID string `json:"stage_id" gorm:"size:36;not null;index"`

	QtyGood  float64 `json:"qty_good" gorm:"type:decimal(12,4);not null;default:0"`
	QtyScrap float64 `json:"qty_scrap" gorm:"type:decimal(12,4);default:0"`

	// Lot 批次标签，操作员填写，可为空
	Lot string `json:"lot" gorm:"size:64;index"`
	// SourceRunIDs 来源报工记录ID列表，非空即为转序记录
	SourceRunIDs StringList `json:"source_run_ids" gorm:"type:jsonb"`
	// ScanCode 扫码标识，用于防重复提交，可为空
	ScanCode string `json:"scan_code" gorm:"size:128"`

	ReportedBy string    `json:"reported_by" gorm:"size:64;not null"`
	ReportedAt time.Time `json:"reported_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProductionRun) TableName() string {
	return "mes_production_runs"
}

// IsTransfer 是否为转序记录
func (r *ProductionRun) IsTransfer() bool {
	return len(r.SourceRunIDs) > 0
}
