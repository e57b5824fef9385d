package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/service"
)

type AgentHandler struct {
	agents *service.AgentService
}

func NewAgentHandler(agents *service.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

func (h *AgentHandler) View(c *gin.Context) {
	ok(c, h.agents.View())
}

func (h *AgentHandler) Activate(c *gin.Context) {
	if err := h.agents.Activate(c.Request.Context()); err != nil {
		fail(c, err, h.agents.View())
		return
	}
	ok(c, h.agents.View())
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req struct {
		Name   string             `json:"name"`
		Config models.AgentConfig `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	agent, err := h.agents.Create(c.Request.Context(), req.Name, req.Config)
	if err != nil {
		fail(c, err, h.agents.View())
		return
	}
	ok(c, agent)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.agents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, h.agents.View())
		return
	}
	ok(c, h.agents.View())
}

type SkillHandler struct {
	skills *service.SkillService
}

func NewSkillHandler(skills *service.SkillService) *SkillHandler {
	return &SkillHandler{skills: skills}
}

func (h *SkillHandler) View(c *gin.Context) {
	ok(c, h.skills.View())
}

func (h *SkillHandler) Activate(c *gin.Context) {
	if err := h.skills.Activate(c.Request.Context()); err != nil {
		fail(c, err, h.skills.View())
		return
	}
	ok(c, h.skills.View())
}

// Register takes the form fields; triggers is the raw comma separated input.
func (h *SkillHandler) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Triggers    string `json:"triggers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	skill, err := h.skills.Register(c.Request.Context(), req.Name, req.Description, req.Triggers)
	if err != nil {
		fail(c, err, h.skills.View())
		return
	}
	ok(c, skill)
}

func (h *SkillHandler) Toggle(c *gin.Context) {
	skill, err := h.skills.Toggle(c.Param("id"))
	if err != nil {
		fail(c, err, nil)
		return
	}
	ok(c, skill)
}

func (h *SkillHandler) Delete(c *gin.Context) {
	if err := h.skills.Delete(c.Param("id")); err != nil {
		fail(c, err, nil)
		return
	}
	ok(c, h.skills.View())
}

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) View(c *gin.Context) {
	ok(c, h.dashboard.View())
}

// Refresh always answers 200: a failed probe is reported through the view.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	_ = h.dashboard.Refresh(c.Request.Context())
	ok(c, h.dashboard.View())
}
