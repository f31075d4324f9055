package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// 单个附件大小上限 50MB
const maxAttachmentSize = 50 << 20

type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload POST /jobs/:id/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件")
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		BadRequest(c, "文件超过50MB限制")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer file.Close()

	att, err := h.svc.Upload(c.Request.Context(), c.Param("id"), GetUserID(c),
		file, fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, att)
}

// List GET /jobs/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	atts, err := h.svc.List(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": atts})
}

// DownloadURL GET /attachments/:attachmentId/url
func (h *AttachmentHandler) DownloadURL(c *gin.Context) {
	u, err := h.svc.DownloadURL(c.Request.Context(), c.Param("attachmentId"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"url": u})
}
