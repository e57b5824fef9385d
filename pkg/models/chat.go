// Chat types shared by the gateway, the store and the console API
package models

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultConversationTitle is shown for conversations without messages.
const DefaultConversationTitle = "New Chat"

// Message is immutable once created and belongs to exactly one conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	ToolUsed  string    `json:"tool_used,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// Conversation is the backend's ConversationResponse: an id plus the full,
// chronologically ordered message history.
type Conversation struct {
	ID       string    `json:"conversation_id"`
	Messages []Message `json:"messages"`
}

// Key identifies the conversation inside the store.
func (c Conversation) Key() string { return c.ID }

// ConversationSummary is the sidebar projection of a conversation.
type ConversationSummary struct {
	ID           string `json:"id"`
	Preview      string `json:"preview"`
	MessageCount int    `json:"message_count"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ChatResponse carries the whole canonical history after the exchange.
type ChatResponse struct {
	ConversationID string    `json:"conversation_id"`
	AgentID        string    `json:"agent_id"`
	Message        Message   `json:"message"`
	Reply          string    `json:"reply"`
	Messages       []Message `json:"messages"`
}

// ChatView is what the console exposes for the chat page.
type ChatView struct {
	Conversations        []ConversationSummary `json:"conversations"`
	ActiveConversationID string                `json:"active_conversation_id,omitempty"`
	Messages             []Message             `json:"messages"`
	Input                string                `json:"input"`
	Loading              bool                  `json:"loading"`
	Error                string                `json:"error,omitempty"`
}
