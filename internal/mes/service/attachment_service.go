package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// AttachmentService 任务附件服务（施工单、刀模图等文件存MinIO）
type AttachmentService struct {
	attRepo     *repository.AttachmentRepository
	minioClient *minio.Client
	bucketName  string
}

func NewAttachmentService(attRepo *repository.AttachmentRepository, minioClient *minio.Client, bucketName string) *AttachmentService {
	return &AttachmentService{attRepo: attRepo, minioClient: minioClient, bucketName: bucketName}
}

// Upload 上传任务附件
func (s *AttachmentService) Upload(ctx context.Context, jobID, userID string, reader io.Reader, fileName string, fileSize int64, contentType string) (*entity.JobAttachment, error) {
	objectKey := fmt.Sprintf("jobs/%s/%s/%s%s",
		jobID, time.Now().Format("200601"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectKey, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("上传文件失败: %w", err)
		}
	}

	att := &entity.JobAttachment{
		ID:        uuid.New().String(),
		JobID:     jobID,
		FileName:  fileName,
		ObjectKey: objectKey,
		FileSize:  fileSize,
		MimeType:  contentType,
		CreatedBy: userID,
	}
	if err := s.attRepo.Create(att); err != nil {
		return nil, fmt.Errorf("保存附件记录失败: %w", err)
	}
	return att, nil
}

// List 任务附件列表
func (s *AttachmentService) List(jobID string) ([]entity.JobAttachment, error) {
	return s.attRepo.ListByJob(jobID)
}

// DownloadURL 生成附件的预签名下载链接，1小时有效
func (s *AttachmentService) DownloadURL(ctx context.Context, attachmentID string) (string, error) {
	att, err := s.attRepo.GetByID(attachmentID)
	if err != nil {
		return "", fmt.Errorf("附件不存在: %w", err)
	}
	if s.minioClient == nil {
		return "", fmt.Errorf("文件存储未配置")
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf(`attachment; filename="%s"`, att.FileName))
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, att.ObjectKey, time.Hour, reqParams)
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}
