package service

import (
	"context"
	"sync"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
)

func serverErr(status int, msg string) error {
	return &gateway.Error{Kind: gateway.KindServer, Op: "test", Status: status, Message: msg}
}

func networkErr() error {
	return &gateway.Error{Kind: gateway.KindNetwork, Op: "test", Message: "Network error: connection refused"}
}

func newTestStore() (*store.Store, *event.Emitter) {
	e := event.NewEmitter()
	return store.New(e), e
}

type fakeChatGateway struct {
	ListFn   func(ctx context.Context) ([]models.Conversation, error)
	GetFn    func(ctx context.Context, id string) (models.Conversation, error)
	CreateFn func(ctx context.Context) (models.Conversation, error)
	DeleteFn func(ctx context.Context, id string) error
	SendFn   func(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)

	created int
	sent    []models.ChatRequest
}

func (f *fakeChatGateway) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []models.Conversation{}, nil
}

func (f *fakeChatGateway) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	return models.Conversation{ID: id, Messages: []models.Message{}}, nil
}

func (f *fakeChatGateway) CreateConversation(ctx context.Context) (models.Conversation, error) {
	f.created++
	if f.CreateFn != nil {
		return f.CreateFn(ctx)
	}
	return models.Conversation{ID: "new-" + string(rune('0'+f.created)), Messages: []models.Message{}}, nil
}

func (f *fakeChatGateway) DeleteConversation(ctx context.Context, id string) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

func (f *fakeChatGateway) SendChat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	f.sent = append(f.sent, req)
	if f.SendFn != nil {
		return f.SendFn(ctx, req)
	}
	return models.ChatResponse{ConversationID: req.ConversationID}, nil
}

type fakeTaskGateway struct {
	ListFn   func(ctx context.Context) ([]models.Task, error)
	CreateFn func(ctx context.Context, p models.TaskPayload) (models.Task, error)
	UpdateFn func(ctx context.Context, id string, patch any) (models.Task, error)
	DeleteFn func(ctx context.Context, id string) error

	mu      sync.Mutex
	lists   int
	updates []any
	creates int
}

func (f *fakeTaskGateway) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeTaskGateway) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []models.Task{}, nil
}

func (f *fakeTaskGateway) CreateTask(ctx context.Context, p models.TaskPayload) (models.Task, error) {
	f.mu.Lock()
	f.creates++
	f.mu.Unlock()
	if f.CreateFn != nil {
		return f.CreateFn(ctx, p)
	}
	return models.Task{ID: "created", Title: p.Title, Status: models.TaskStatusPending}, nil
}

func (f *fakeTaskGateway) UpdateTask(ctx context.Context, id string, patch any) (models.Task, error) {
	f.mu.Lock()
	f.updates = append(f.updates, patch)
	f.mu.Unlock()
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, patch)
	}
	return models.Task{ID: id}, nil
}

func (f *fakeTaskGateway) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

type fakeKnowledgeGateway struct {
	ListDocsFn  func(ctx context.Context) ([]models.Document, error)
	UploadFn    func(ctx context.Context, up models.DocumentUpload) (models.Document, error)
	DeleteDocFn func(ctx context.Context, id string) error
	ListFilesFn func(ctx context.Context) ([]string, error)
	GetFileFn   func(ctx context.Context, filename string) (models.MemoryFile, error)
	SaveFileFn  func(ctx context.Context, file models.MemoryFile) error

	saved []models.MemoryFile
}

func (f *fakeKnowledgeGateway) ListDocuments(ctx context.Context) ([]models.Document, error) {
	if f.ListDocsFn != nil {
		return f.ListDocsFn(ctx)
	}
	return []models.Document{}, nil
}

func (f *fakeKnowledgeGateway) UploadDocument(ctx context.Context, up models.DocumentUpload) (models.Document, error) {
	if f.UploadFn != nil {
		return f.UploadFn(ctx, up)
	}
	return models.Document{ID: "doc", Title: up.Title, Content: up.Content, Type: up.Type}, nil
}

func (f *fakeKnowledgeGateway) DeleteDocument(ctx context.Context, id string) error {
	if f.DeleteDocFn != nil {
		return f.DeleteDocFn(ctx, id)
	}
	return nil
}

func (f *fakeKnowledgeGateway) ListMemoryFiles(ctx context.Context) ([]string, error) {
	if f.ListFilesFn != nil {
		return f.ListFilesFn(ctx)
	}
	return []string{"SOUL.md", "USER.md"}, nil
}

func (f *fakeKnowledgeGateway) GetMemoryFile(ctx context.Context, filename string) (models.MemoryFile, error) {
	if f.GetFileFn != nil {
		return f.GetFileFn(ctx, filename)
	}
	return models.MemoryFile{Filename: filename, Content: "# " + filename}, nil
}

func (f *fakeKnowledgeGateway) SaveMemoryFile(ctx context.Context, file models.MemoryFile) error {
	f.saved = append(f.saved, file)
	if f.SaveFileFn != nil {
		return f.SaveFileFn(ctx, file)
	}
	return nil
}

type fakeAgentGateway struct {
	ListFn   func(ctx context.Context) ([]models.Agent, error)
	CreateFn func(ctx context.Context, name string, cfg models.AgentConfig) (models.Agent, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (f *fakeAgentGateway) ListAgents(ctx context.Context) ([]models.Agent, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []models.Agent{}, nil
}

func (f *fakeAgentGateway) CreateAgent(ctx context.Context, name string, cfg models.AgentConfig) (models.Agent, error) {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, name, cfg)
	}
	return models.Agent{ID: "a-" + name, Name: name, Config: cfg}, nil
}

func (f *fakeAgentGateway) DeleteAgent(ctx context.Context, id string) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

type fakeSkillGateway struct {
	ListFn     func(ctx context.Context) ([]models.Skill, error)
	RegisterFn func(ctx context.Context, m models.SkillManifest) (models.Skill, error)

	registered []models.SkillManifest
}

func (f *fakeSkillGateway) ListSkills(ctx context.Context) ([]models.Skill, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []models.Skill{}, nil
}

func (f *fakeSkillGateway) RegisterSkill(ctx context.Context, m models.SkillManifest) (models.Skill, error) {
	f.registered = append(f.registered, m)
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, m)
	}
	return models.Skill{ID: "s-" + m.Name, Manifest: m, Status: models.SkillStatusActive}, nil
}

type fakeDashboardGateway struct {
	HealthFn func(ctx context.Context) (models.HealthResponse, error)
	StatsFn  func(ctx context.Context) (models.DashboardStats, error)
}

func (f *fakeDashboardGateway) Health(ctx context.Context) (models.HealthResponse, error) {
	if f.HealthFn != nil {
		return f.HealthFn(ctx)
	}
	return models.HealthResponse{Status: "ok"}, nil
}

func (f *fakeDashboardGateway) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	if f.StatsFn != nil {
		return f.StatsFn(ctx)
	}
	return models.DashboardStats{}, nil
}
