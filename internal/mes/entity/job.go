package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus 生产任务状态
const (
	JobStatusCreated    = "CREATED"
	JobStatusReleased   = "RELEASED"
	JobStatusInProgress = "IN_PROGRESS"
	JobStatusCompleted  = "COMPLETED"
	JobStatusClosed     = "CLOSED"
)

// StringList jsonb字符串数组类型
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("StringList: type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, l)
}

// Job 生产任务（一张生产订单在多道工序间流转）
type Job struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	JobCode     string `json:"job_code" gorm:"size:50;not null;uniqueIndex"`
	ProductName string `json:"product_name" gorm:"size:128"`

	OrderedQty float64 `json:"ordered_qty" gorm:"type:decimal(12,4);not null"`
	OrderedUOM string  `json:"ordered_uom" gorm:"size:20;not null;default:pcs"`

	// NumberUp 拼版数：1个投入单位（大张）可产出多少个产出单位
	NumberUp float64 `json:"number_up" gorm:"type:decimal(12,4);default:0"`
	// 包装参数：终道工序产出单位为包装单位时使用
	PcsPerBox    float64 `json:"pcs_per_box" gorm:"type:decimal(12,4);default:0"`
	PlannedBoxes float64 `json:"planned_boxes" gorm:"type:decimal(12,4);default:0"`
	// PlannedOutputQty 显式计划产出数量，0表示未设置
	PlannedOutputQty float64 `json:"planned_output_qty" gorm:"type:decimal(12,4);default:0"`

	// PlannedStageIDs 计划工序ID有序列表
	PlannedStageIDs StringList `json:"planned_stage_ids" gorm:"type:jsonb"`
	// CurrentStageID 当前工序，空表示任务尚未下达
	CurrentStageID string `json:"current_stage_id" gorm:"size:36;index"`
	// RequireStageOutput 进入下道工序是否必须有报工记录
	RequireStageOutput bool `json:"require_stage_output" gorm:"default:false"`

	Status    string     `json:"status" gorm:"size:20;not null;default:CREATED"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	BOMItems []JobBOMItem `json:"bom_items,omitempty" gorm:"foreignKey:JobID"`
}

func (Job) TableName() string {
	return "mes_jobs"
}

// JobBOMItem 任务用料清单行
type JobBOMItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	JobID        string    `json:"job_id" gorm:"size:36;not null;index"`
	MaterialCode string    `json:"material_code" gorm:"size:64"`
	MaterialName string    `json:"material_name" gorm:"size:128"`
	RequiredQty  float64   `json:"required_qty" gorm:"type:decimal(12,4);not null"`
	Unit         string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	CreatedAt    time.Time `json:"created_at"`
}

func (JobBOMItem) TableName() string {
	return "mes_job_bom_items"
}
