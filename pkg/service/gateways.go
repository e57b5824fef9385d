package service

import (
	"context"

	"github.com/openpaw/pawdeck/pkg/models"
)

// The interfaces below are the slices of *gateway.Client each controller
// needs.

type ChatGateway interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) (models.Conversation, error)
	CreateConversation(ctx context.Context) (models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	SendChat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

type TaskGateway interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, p models.TaskPayload) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch any) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type KnowledgeGateway interface {
	ListDocuments(ctx context.Context) ([]models.Document, error)
	UploadDocument(ctx context.Context, up models.DocumentUpload) (models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListMemoryFiles(ctx context.Context) ([]string, error)
	GetMemoryFile(ctx context.Context, filename string) (models.MemoryFile, error)
	SaveMemoryFile(ctx context.Context, file models.MemoryFile) error
}

type AgentGateway interface {
	ListAgents(ctx context.Context) ([]models.Agent, error)
	CreateAgent(ctx context.Context, name string, cfg models.AgentConfig) (models.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
}

type SkillGateway interface {
	ListSkills(ctx context.Context) ([]models.Skill, error)
	RegisterSkill(ctx context.Context, m models.SkillManifest) (models.Skill, error)
}

type DashboardGateway interface {
	Health(ctx context.Context) (models.HealthResponse, error)
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}
