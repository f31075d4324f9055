package service

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services MES 服务集合
type Services struct {
	Workflow   *WorkflowService
	Job        *JobService
	Run        *RunService
	Progress   *ProgressService
	Report     *ReportService
	Attachment *AttachmentService
}

func NewServices(repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, bucket string, logger *zap.Logger) *Services {
	progress := NewProgressService(repos.Job, repos.Run, repos.Workflow)
	return &Services{
		Workflow:   NewWorkflowService(repos.Workflow),
		Job:        NewJobService(repos.Job, repos.Run, repos.Workflow, logger),
		Run:        NewRunService(repos.Job, repos.Run, repos.Workflow, rdb, logger),
		Progress:   progress,
		Report:     NewReportService(repos.Job, repos.Run, repos.Workflow),
		Attachment: NewAttachmentService(repos.Attachment, minioClient, bucket),
	}
}
