package event

const (
	StoreChanged              = "store.changed"
	ConversationsChanged      = "chat.conversationsChanged"
	ActiveConversationChanged = "chat.activeChanged"
	MessagesReplaced          = "chat.messagesReplaced"
	TasksChanged              = "tasks.changed"
	TaskStatusChanged         = "tasks.statusChanged"
	DocumentsChanged          = "knowledge.documentsChanged"
	MemoryFileSaved           = "knowledge.memorySaved"
	SaveStatusChanged         = "knowledge.saveStatusChanged"
	AgentsChanged             = "agents.changed"
	SkillsChanged             = "skills.changed"
	DashboardChanged          = "dashboard.changed"
	MutationFailed            = "sync.mutationFailed"
	MutationRolledBack        = "sync.mutationRolledBack"
)

// StoreChangedEvent is emitted on every store write.
type StoreChangedEvent struct {
	Kind    string `json:"kind"`
	Version uint64 `json:"version"`
}

func (e StoreChangedEvent) EventName() string { return StoreChanged }

type ConversationsChangedEvent struct{}

func (e ConversationsChangedEvent) EventName() string { return ConversationsChanged }

type ActiveConversationChangedEvent struct {
	ConversationID string `json:"conversationId"`
}

func (e ActiveConversationChangedEvent) EventName() string { return ActiveConversationChanged }

// MessagesReplacedEvent is emitted when a conversation's history was replaced
// by the server's list.
type MessagesReplacedEvent struct {
	ConversationID string `json:"conversationId"`
	Count          int    `json:"count"`
}

func (e MessagesReplacedEvent) EventName() string { return MessagesReplaced }

type TasksChangedEvent struct {
	ResourceVersion uint64 `json:"resourceVersion"`
}

func (e TasksChangedEvent) EventName() string { return TasksChanged }

type TaskStatusChangedEvent struct {
	TaskID string `json:"taskId"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (e TaskStatusChangedEvent) EventName() string { return TaskStatusChanged }

type DocumentsChangedEvent struct{}

func (e DocumentsChangedEvent) EventName() string { return DocumentsChanged }

type MemoryFileSavedEvent struct {
	Filename string `json:"filename"`
}

func (e MemoryFileSavedEvent) EventName() string { return MemoryFileSaved }

type SaveStatusChangedEvent struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

func (e SaveStatusChangedEvent) EventName() string { return SaveStatusChanged }

type AgentsChangedEvent struct{}

func (e AgentsChangedEvent) EventName() string { return AgentsChanged }

type SkillsChangedEvent struct{}

func (e SkillsChangedEvent) EventName() string { return SkillsChanged }

type DashboardChangedEvent struct {
	Backend string `json:"backend"`
}

func (e DashboardChangedEvent) EventName() string { return DashboardChanged }

// MutationFailedEvent carries the message that was put in the view's error slot.
type MutationFailedEvent struct {
	View    string `json:"view"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

func (e MutationFailedEvent) EventName() string { return MutationFailed }

type MutationRolledBackEvent struct {
	View      string `json:"view"`
	EntityID  string `json:"entityId"`
	RequestID string `json:"requestId"`
}

func (e MutationRolledBackEvent) EventName() string { return MutationRolledBack }
