package gateway

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/openpaw/pawdeck/pkg/models"
)

// Health returns the raw status string of GET /api/health.
func (c *Client) Health(ctx context.Context) (models.HealthResponse, error) {
	var out models.HealthResponse
	err := c.call(ctx, "health", http.MethodGet, "/api/health", nil, &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	err := c.call(ctx, "dashboard.stats", http.MethodGet, "/api/dashboard/stats", nil, &out)
	return out, err
}

// Chat

func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	return c.Conversations.List(ctx)
}

func (c *Client) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	return c.Conversations.Get(ctx, id)
}

func (c *Client) CreateConversation(ctx context.Context) (models.Conversation, error) {
	return c.Conversations.Create(ctx, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.Conversations.Remove(ctx, id)
}

func (c *Client) SendChat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	var out models.ChatResponse
	err := c.call(ctx, "chat.send", http.MethodPost, "/api/chat", jsonBody(req), &out)
	return out, err
}

// Tasks

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	return c.Tasks.List(ctx)
}

func (c *Client) CreateTask(ctx context.Context, p models.TaskPayload) (models.Task, error) {
	return c.Tasks.Create(ctx, p)
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch any) (models.Task, error) {
	return c.Tasks.Update(ctx, id, patch)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.Tasks.Remove(ctx, id)
}

// Knowledge

func (c *Client) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	if err := c.call(ctx, "knowledge.list", http.MethodGet, "/api/knowledge", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Document{}
	}
	return out, nil
}

// UploadDocument posts title, content and type as multipart form fields.
func (c *Client) UploadDocument(ctx context.Context, up models.DocumentUpload) (models.Document, error) {
	typ := up.Type
	if typ == "" {
		typ = models.DocumentTypeMarkdown
	}
	var out models.Document
	err := c.call(ctx, "knowledge.upload", http.MethodPost, "/api/knowledge/upload", func(r *resty.Request) {
		r.SetMultipartFormData(map[string]string{
			"title":   up.Title,
			"content": up.Content,
			"type":    string(typ),
		})
	}, &out)
	return out, err
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.call(ctx, "knowledge.delete", http.MethodDelete, "/api/knowledge/{id}", pathID(id), nil)
}

func (c *Client) ListMemoryFiles(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.call(ctx, "memory.list", http.MethodGet, "/api/knowledge/persistent", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (c *Client) GetMemoryFile(ctx context.Context, filename string) (models.MemoryFile, error) {
	var out models.MemoryFile
	err := c.call(ctx, "memory.get", http.MethodGet, "/api/knowledge/persistent/{filename}", func(r *resty.Request) {
		r.SetPathParam("filename", filename)
	}, &out)
	return out, err
}

func (c *Client) SaveMemoryFile(ctx context.Context, file models.MemoryFile) error {
	return c.call(ctx, "memory.save", http.MethodPut, "/api/knowledge/persistent/{filename}", func(r *resty.Request) {
		r.SetPathParam("filename", file.Filename)
		jsonBody(file)(r)
	}, nil)
}

// Skills

func (c *Client) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var out []models.Skill
	if err := c.call(ctx, "skills.list", http.MethodGet, "/api/skills", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Skill{}
	}
	return out, nil
}

func (c *Client) RegisterSkill(ctx context.Context, m models.SkillManifest) (models.Skill, error) {
	var out models.Skill
	err := c.call(ctx, "skills.register", http.MethodPost, "/api/skills/register", jsonBody(m), &out)
	return out, err
}

// Agents

func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return c.Agents.List(ctx)
}

// CreateAgent passes name as a query parameter and the config as the body.
func (c *Client) CreateAgent(ctx context.Context, name string, cfg models.AgentConfig) (models.Agent, error) {
	var out models.Agent
	err := c.call(ctx, "agents.create", http.MethodPost, "/api/agents", func(r *resty.Request) {
		r.SetQueryParam("name", name)
		jsonBody(cfg)(r)
	}, &out)
	return out, err
}

func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.Agents.Remove(ctx, id)
}
