package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	svc         *service.JobService
	progressSvc *service.ProgressService
}

func NewJobHandler(svc *service.JobService, progressSvc *service.ProgressService) *JobHandler {
	return &JobHandler{svc: svc, progressSvc: progressSvc}
}

// Create POST /jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req service.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	job, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, job)
}

// Get GET /jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "任务不存在")
		return
	}
	Success(c, job)
}

// List GET /jobs
func (h *JobHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	params := repository.JobListParams{
		Status:         c.Query("status"),
		CurrentStageID: c.Query("stage_id"),
		Keyword:        c.Query("keyword"),
		Page:           page,
		Size:           size,
	}
	jobs, total, err := h.svc.List(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": jobs, "total": total, "page": page, "size": size})
}

// Release POST /jobs/:id/release
func (h *JobHandler) Release(c *gin.Context) {
	job, err := h.svc.Release(c.Param("id"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, job)
}

// Advance POST /jobs/:id/advance
func (h *JobHandler) Advance(c *gin.Context) {
	job, err := h.svc.Advance(c.Param("id"))
	if err != nil {
		Conflict(c, err.Error())
		return
	}
	Success(c, job)
}

// Progress GET /jobs/:id/progress
func (h *JobHandler) Progress(c *gin.Context) {
	progress, err := h.progressSvc.StageProgress(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"stages": progress})
}

// Summary GET /jobs/:id/summary
func (h *JobHandler) Summary(c *gin.Context) {
	summary, err := h.progressSvc.CurrentStageSummary(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	if summary == nil {
		NotFound(c, "任务尚未下达或当前工序未知，无法计算汇总")
		return
	}
	Success(c, summary)
}
