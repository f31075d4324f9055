package repository

import "gorm.io/gorm"

// Repositories MES 仓库集合
type Repositories struct {
	Workflow   *WorkflowRepository
	Job        *JobRepository
	Run        *RunRepository
	Attachment *AttachmentRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Workflow:   NewWorkflowRepository(db),
		Job:        NewJobRepository(db),
		Run:        NewRunRepository(db),
		Attachment: NewAttachmentRepository(db),
	}
}
