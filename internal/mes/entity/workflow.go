package entity

import (
	"time"
)

// Workflow 工艺路线：一组有序工序的模板
type Workflow struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Stages []WorkflowStage `json:"stages,omitempty" gorm:"foreignKey:WorkflowID"`
}

func (Workflow) TableName() string {
	return "mes_workflows"
}

// WorkflowStage 工序定义：投入/产出单位由工序决定（如大张进、彩盒出）
type WorkflowStage struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	WorkflowID string    `json:"workflow_id" gorm:"size:36;not null;index"`
	Name       string    `json:"name" gorm:"size:128;not null"`
	InputUnit  string    `json:"input_unit" gorm:"size:20;not null;default:sheets"`
	OutputUnit string    `json:"output_unit" gorm:"size:20;not null;default:sheets"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

func (WorkflowStage) TableName() string {
	return "mes_workflow_stages"
}
