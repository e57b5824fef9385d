// Package backendtest is an in-memory implementation of the OpenPaw backend
// REST contract for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openpaw/pawdeck/pkg/models"
)

type failure struct {
	status int
	body   any
}

// Backend holds the remote state. Every exported method is safe for
// concurrent use.
type Backend struct {
	mu sync.Mutex

	conversations []*models.Conversation // most recent first
	tasks         []models.Task          // most recent first
	documents     []models.Document
	memoryOrder   []string
	memory        map[string]string
	skills        []models.Skill
	agents        []models.Agent
	health        string

	failures map[string]failure
	requests []string
	now      func() time.Time
}

func New() *Backend {
	return &Backend{
		memoryOrder: []string{"SOUL.md", "USER.md", "MEMORY.md"},
		memory: map[string]string{
			"SOUL.md":   "# Soul\n",
			"USER.md":   "# User\n",
			"MEMORY.md": "# Memory\n",
		},
		health:   "ok",
		failures: map[string]failure{},
		now:      time.Now,
	}
}

// NewServer starts the backend on an httptest server closed at test cleanup.
func NewServer(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

// Fail makes route answer with status and body until Recover is called.
// route is "METHOD /path/:param" as registered, e.g. "PUT /api/tasks/:id".
func (b *Backend) Fail(route string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, body: body}
}

func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

func (b *Backend) SetHealth(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.health = status
}

// Requests returns the routes served so far, in order.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Count returns how many times route was hit.
func (b *Backend) Count(route string) int {
	n := 0
	for _, r := range b.Requests() {
		if r == route {
			n++
		}
	}
	return n
}

func (b *Backend) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(b.record)

	api := r.Group("/api")
	api.GET("/health", b.getHealth)
	api.GET("/dashboard/stats", b.getStats)

	api.GET("/chat/conversations", b.listConversations)
	api.POST("/chat/conversations", b.createConversation)
	api.GET("/chat/conversations/:id", b.getConversation)
	api.DELETE("/chat/conversations/:id", b.deleteConversation)
	api.POST("/chat", b.chat)

	api.GET("/tasks", b.listTasks)
	api.POST("/tasks", b.createTask)
	api.GET("/tasks/:id", b.getTask)
	api.PUT("/tasks/:id", b.updateTask)
	api.DELETE("/tasks/:id", b.deleteTask)

	api.GET("/knowledge", b.listDocuments)
	api.POST("/knowledge/upload", b.uploadDocument)
	api.DELETE("/knowledge/:id", b.deleteDocument)
	api.GET("/knowledge/persistent", b.listMemoryFiles)
	api.GET("/knowledge/persistent/:filename", b.getMemoryFile)
	api.PUT("/knowledge/persistent/:filename", b.saveMemoryFile)

	api.GET("/skills", b.listSkills)
	api.POST("/skills/register", b.registerSkill)

	api.GET("/agents", b.listAgents)
	api.POST("/agents", b.createAgent)
	api.DELETE("/agents/:id", b.deleteAgent)
	return r
}

func (b *Backend) record(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()
	b.mu.Lock()
	b.requests = append(b.requests, route)
	f, failing := b.failures[route]
	b.mu.Unlock()

	if failing {
		if f.body == nil {
			c.AbortWithStatus(f.status)
			return
		}
		c.AbortWithStatusJSON(f.status, f.body)
		return
	}
	c.Next()
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": what + " not found"})
}

func (b *Backend) stamp() models.Timestamp { return models.NewTimestamp(b.now()) }

func (b *Backend) getHealth(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": b.health})
}

func (b *Backend) getStats(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := models.DashboardStats{
		ConversationsCount: len(b.conversations),
		SkillsCount:        len(b.skills),
		DocsCount:          len(b.documents),
		TasksCount:         len(b.tasks),
	}
	for _, t := range b.tasks {
		switch t.Status {
		case models.TaskStatusPending:
			stats.TasksPending++
		case models.TaskStatusCompleted:
			stats.TasksCompleted++
		}
	}
	c.JSON(http.StatusOK, stats)
}

// Chat

func (b *Backend) findConversation(id string) (*models.Conversation, int) {
	for i, conv := range b.conversations {
		if conv.ID == id {
			return conv, i
		}
	}
	return nil, -1
}

func cloneConversation(conv *models.Conversation) models.Conversation {
	out := models.Conversation{ID: conv.ID, Messages: make([]models.Message, len(conv.Messages))}
	copy(out.Messages, conv.Messages)
	return out
}

// SeedConversation adds a conversation with the given message contents,
// alternating user and assistant roles, and returns its id.
func (b *Backend) SeedConversation(contents ...string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv := &models.Conversation{ID: uuid.NewString(), Messages: []models.Message{}}
	for i, content := range contents {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		conv.Messages = append(conv.Messages, models.Message{
			ID: uuid.NewString(), Role: role, Content: content, CreatedAt: b.stamp(),
		})
	}
	b.conversations = append([]*models.Conversation{conv}, b.conversations...)
	return conv.ID
}

// Conversation returns a copy of the stored conversation.
func (b *Backend) Conversation(id string) (models.Conversation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, _ := b.findConversation(id)
	if conv == nil {
		return models.Conversation{}, false
	}
	return cloneConversation(conv), true
}

func (b *Backend) listConversations(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Conversation, 0, len(b.conversations))
	for _, conv := range b.conversations {
		out = append(out, cloneConversation(conv))
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) createConversation(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv := &models.Conversation{ID: uuid.NewString(), Messages: []models.Message{}}
	b.conversations = append([]*models.Conversation{conv}, b.conversations...)
	c.JSON(http.StatusOK, cloneConversation(conv))
}

func (b *Backend) getConversation(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, _ := b.findConversation(c.Param("id"))
	if conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Conversation %s not found", c.Param("id"))})
		return
	}
	c.JSON(http.StatusOK, cloneConversation(conv))
}

func (b *Backend) deleteConversation(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, i := b.findConversation(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Conversation %s not found", c.Param("id"))})
		return
	}
	b.conversations = append(b.conversations[:i], b.conversations[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}

func (b *Backend) chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": err.Error()}}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var conv *models.Conversation
	if req.ConversationID != "" {
		conv, _ = b.findConversation(req.ConversationID)
		if conv == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status_code": http.StatusInternalServerError,
				"message":     "Conversation not found",
				"detail":      fmt.Sprintf("Conversation %s does not exist", req.ConversationID),
			})
			return
		}
	} else {
		conv = &models.Conversation{ID: uuid.NewString(), Messages: []models.Message{}}
		b.conversations = append([]*models.Conversation{conv}, b.conversations...)
	}

	reply := "echo: " + req.Message
	user := models.Message{ID: uuid.NewString(), Role: models.RoleUser, Content: req.Message, CreatedAt: b.stamp()}
	assistant := models.Message{ID: uuid.NewString(), Role: models.RoleAssistant, Content: reply, CreatedAt: b.stamp()}
	conv.Messages = append(conv.Messages, user, assistant)

	recent := conv.Messages
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	c.JSON(http.StatusOK, models.ChatResponse{
		ConversationID: conv.ID,
		AgentID:        "default",
		Message:        assistant,
		Reply:          reply,
		Messages:       append([]models.Message(nil), recent...),
	})
}

// Tasks

// SeedTask stores t, filling id and timestamps when empty, and returns it.
func (b *Backend) SeedTask(t models.Task) models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	if t.TaskType == "" {
		t.TaskType = models.TaskTypeOneTime
	}
	if t.Recurrence == "" {
		t.Recurrence = t.TaskType
	}
	t.CreatedAt = b.stamp()
	t.UpdatedAt = t.CreatedAt
	b.tasks = append([]models.Task{t}, b.tasks...)
	return t
}

// Task returns the stored task.
func (b *Backend) Task(id string) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (b *Backend) listTasks(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Task{}, b.tasks...))
}

func (b *Backend) getTask(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == c.Param("id") {
			c.JSON(http.StatusOK, t)
			return
		}
	}
	notFound(c, "Task")
}

func (b *Backend) createTask(c *gin.Context) {
	var p models.TaskPayload
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Title) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "title is required"}}})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.stamp()
	t := models.Task{
		ID:            uuid.NewString(),
		Title:         p.Title,
		Description:   p.Description,
		Status:        models.TaskStatusPending,
		TaskType:      p.TaskType,
		ScheduledTime: p.ScheduledTime,
		ScheduledDate: p.ScheduledDate,
		Recurrence:    p.Recurrence,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.tasks = append([]models.Task{t}, b.tasks...)
	c.JSON(http.StatusOK, t)
}

func (b *Backend) updateTask(c *gin.Context) {
	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID != c.Param("id") {
			continue
		}
		t := b.tasks[i]
		if err := applyTaskPatch(&t, patch); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		t.UpdatedAt = b.stamp()
		b.tasks[i] = t
		c.JSON(http.StatusOK, t)
		return
	}
	notFound(c, "Task")
}

func applyTaskPatch(t *models.Task, patch map[string]json.RawMessage) error {
	fields := map[string]any{
		"title":          &t.Title,
		"description":    &t.Description,
		"status":         &t.Status,
		"task_type":      &t.TaskType,
		"scheduled_time": &t.ScheduledTime,
		"scheduled_date": &t.ScheduledDate,
		"recurrence":     &t.Recurrence,
	}
	for key, raw := range patch {
		dst, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	return nil
}

func (b *Backend) deleteTask(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.tasks {
		if t.ID == c.Param("id") {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": t.ID})
			return
		}
	}
	notFound(c, "Task")
}

// Knowledge

func (b *Backend) listDocuments(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Document{}, b.documents...))
}

func (b *Backend) uploadDocument(c *gin.Context) {
	title := c.PostForm("title")
	content, hasContent := c.GetPostForm("content")
	if title == "" || !hasContent {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "title and content are required"}}})
		return
	}
	typ := models.DocumentType(c.DefaultPostForm("type", string(models.DocumentTypeMarkdown)))

	b.mu.Lock()
	defer b.mu.Unlock()
	doc := models.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Type:      typ,
		Chunks:    len(content)/models.ChunkSize + 1,
		CreatedAt: b.stamp(),
	}
	b.documents = append(b.documents, doc)
	c.JSON(http.StatusOK, doc)
}

func (b *Backend) deleteDocument(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.documents {
		if d.ID == c.Param("id") {
			b.documents = append(b.documents[:i], b.documents[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "success"})
			return
		}
	}
	notFound(c, "Document")
}

// MemoryFile returns the stored content of filename.
func (b *Backend) MemoryFile(filename string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.memory[filename]
	return content, ok
}

func (b *Backend) listMemoryFiles(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]string{}, b.memoryOrder...))
}

func (b *Backend) getMemoryFile(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := c.Param("filename")
	content, ok := b.memory[name]
	if !ok {
		notFound(c, "File")
		return
	}
	c.JSON(http.StatusOK, models.MemoryFile{Filename: name, Content: content})
}

func (b *Backend) saveMemoryFile(c *gin.Context) {
	var file models.MemoryFile
	if err := c.ShouldBindJSON(&file); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name := c.Param("filename")
	if _, ok := b.memory[name]; !ok {
		notFound(c, "File")
		return
	}
	b.memory[name] = file.Content
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Skills

func (b *Backend) listSkills(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Skill{}, b.skills...))
}

// SeedSkill stores a skill with the given manifest name.
func (b *Backend) SeedSkill(name string) models.Skill {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.newSkill(models.SkillManifest{Name: name, Version: models.DefaultSkillVersion, Triggers: []string{}})
	b.skills = append(b.skills, s)
	return s
}

func (b *Backend) newSkill(m models.SkillManifest) models.Skill {
	now := b.stamp()
	return models.Skill{
		ID:        uuid.NewString(),
		Manifest:  m,
		Status:    models.SkillStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *Backend) registerSkill(c *gin.Context) {
	var m models.SkillManifest
	if err := c.ShouldBindJSON(&m); err != nil || strings.TrimSpace(m.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "name is required"}}})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.newSkill(m)
	b.skills = append(b.skills, s)
	c.JSON(http.StatusOK, s)
}

// Agents

func (b *Backend) listAgents(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Agent{}, b.agents...))
}

func (b *Backend) createAgent(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "field required: name"}}})
		return
	}
	var cfg models.AgentConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.stamp()
	a := models.Agent{
		ID:            uuid.NewString(),
		Name:          name,
		Config:        cfg,
		State:         models.AgentStateIdle,
		Skills:        []string{},
		MemoryEnabled: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.agents = append(b.agents, a)
	c.JSON(http.StatusOK, a)
}

func (b *Backend) deleteAgent(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, a := range b.agents {
		if a.ID == c.Param("id") {
			b.agents = append(b.agents[:i], b.agents[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	notFound(c, "Agent")
}
