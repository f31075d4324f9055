package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type RunHandler struct {
	svc *service.RunService
}

func NewRunHandler(svc *service.RunService) *RunHandler {
	return &RunHandler{svc: svc}
}

// RecordOutput POST /jobs/:id/runs/output
func (h *RunHandler) RecordOutput(c *gin.Context) {
	var req service.RecordOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	runs, err := h.svc.RecordOutput(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		// 超限、缺口、重复扫码都属于业务拒绝，带明细返回给操作员
		Conflict(c, err.Error())
		return
	}
	Success(c, gin.H{"runs": runs})
}

// Transfer POST /jobs/:id/runs/transfer
func (h *RunHandler) Transfer(c *gin.Context) {
	runs, err := h.svc.TransferToCurrent(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Conflict(c, err.Error())
		return
	}
	Success(c, gin.H{"runs": runs})
}

// List GET /jobs/:id/runs
func (h *RunHandler) List(c *gin.Context) {
	runs, err := h.svc.ListByJob(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": runs})
}

// LotStocks GET /jobs/:id/lots
func (h *RunHandler) LotStocks(c *gin.Context) {
	stocks, err := h.svc.LotStocks(c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, gin.H{"lots": stocks})
}
