package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有MES表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 工艺路线
		&Workflow{},
		&WorkflowStage{},

		// 生产任务
		&Job{},
		&JobBOMItem{},

		// 报工
		&ProductionRun{},

		// 附件
		&JobAttachment{},
	)
}
