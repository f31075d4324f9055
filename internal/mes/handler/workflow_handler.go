package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	svc *service.WorkflowService
}

func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// Create POST /workflows
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req service.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	wf, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, wf)
}

// Get GET /workflows/:id
func (h *WorkflowHandler) Get(c *gin.Context) {
	wf, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "工艺路线不存在")
		return
	}
	Success(c, wf)
}

// List GET /workflows
func (h *WorkflowHandler) List(c *gin.Context) {
	wfs, err := h.svc.List()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": wfs})
}
