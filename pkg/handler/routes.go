package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/service"
)

// RegisterConsoleRoutes mounts every view of console under g (normally
// /console).
func RegisterConsoleRoutes(g *gin.RouterGroup, console *service.Console, emitter *event.Emitter) {
	chatHandler := NewChatHandler(console.Chat)
	taskHandler := NewTaskHandler(console.Tasks, emitter)
	knowledgeHandler := NewKnowledgeHandler(console.Knowledge)
	agentHandler := NewAgentHandler(console.Agents)
	skillHandler := NewSkillHandler(console.Skills)
	dashboardHandler := NewDashboardHandler(console.Dashboard)

	// /console/chat
	chatGroup := g.Group("/chat")
	{
		chatGroup.GET("", chatHandler.View)
		chatGroup.POST("/activate", chatHandler.Activate)
		chatGroup.POST("/conversations", chatHandler.NewConversation)
		chatGroup.POST("/conversations/:id/switch", chatHandler.Switch)
		chatGroup.DELETE("/conversations/:id", chatHandler.Delete)
		chatGroup.PUT("/input", chatHandler.SetInput)
		chatGroup.POST("/send", chatHandler.Send)
		chatGroup.POST("/suggestion", chatHandler.Suggestion)
	}

	// /console/tasks
	tasksGroup := g.Group("/tasks")
	{
		tasksGroup.GET("", taskHandler.View)
		tasksGroup.GET("/watch", taskHandler.Watch)
		tasksGroup.POST("/activate", taskHandler.Activate)
		tasksGroup.PUT("/filter", taskHandler.SetFilter)
		tasksGroup.POST("", taskHandler.Create)
		tasksGroup.POST("/drop", taskHandler.Drop)
		tasksGroup.PUT("/:id", taskHandler.Update)
		tasksGroup.PUT("/:id/status", taskHandler.ChangeStatus)
		tasksGroup.DELETE("/:id", taskHandler.Delete)
	}

	// /console/knowledge
	knowledgeGroup := g.Group("/knowledge")
	{
		knowledgeGroup.GET("", knowledgeHandler.View)
		knowledgeGroup.POST("/activate", knowledgeHandler.Activate)
		knowledgeGroup.PUT("/search", knowledgeHandler.SetSearch)
		knowledgeGroup.POST("/memory/open/:filename", knowledgeHandler.OpenMemoryFile)
		knowledgeGroup.PUT("/memory", knowledgeHandler.EditMemoryFile)
		knowledgeGroup.POST("/memory/save", knowledgeHandler.SaveMemoryFile)
		knowledgeGroup.POST("/documents", knowledgeHandler.Upload)
		knowledgeGroup.POST("/documents/:id/toggle", knowledgeHandler.ToggleDocument)
		knowledgeGroup.DELETE("/documents/:id", knowledgeHandler.DeleteDocument)
	}

	// /console/agents
	agentsGroup := g.Group("/agents")
	{
		agentsGroup.GET("", agentHandler.View)
		agentsGroup.POST("/activate", agentHandler.Activate)
		agentsGroup.POST("", agentHandler.Create)
		agentsGroup.DELETE("/:id", agentHandler.Delete)
	}

	// /console/skills
	skillsGroup := g.Group("/skills")
	{
		skillsGroup.GET("", skillHandler.View)
		skillsGroup.POST("/activate", skillHandler.Activate)
		skillsGroup.POST("", skillHandler.Register)
		skillsGroup.PUT("/:id/toggle", skillHandler.Toggle)
		skillsGroup.DELETE("/:id", skillHandler.Delete)
	}

	// /console/dashboard
	dashboardGroup := g.Group("/dashboard")
	{
		dashboardGroup.GET("", dashboardHandler.View)
		dashboardGroup.POST("/refresh", dashboardHandler.Refresh)
	}

	// /console/events/ws
	g.GET("/events/ws", event.NewWSHandler(emitter).Handle)
}
