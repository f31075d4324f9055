package handler

import (
	"fmt"
	"net/url"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ExportJob GET /jobs/:id/export
func (h *ReportHandler) ExportJob(c *gin.Context) {
	f, fileName, err := h.svc.ExportJob(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(fileName)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "导出失败: "+err.Error())
	}
}
