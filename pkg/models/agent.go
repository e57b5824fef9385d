package models

type AgentState string

const (
	AgentStateIdle      AgentState = "idle"
	AgentStateThinking  AgentState = "thinking"
	AgentStateExecuting AgentState = "executing"
	AgentStateError     AgentState = "error"
)

type AgentConfig struct {
	ModelName    string  `json:"model_name"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`
}

// DefaultAgentConfig prefills the create form.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		ModelName:    "llama-3.3-70b-versatile",
		Temperature:  0.7,
		MaxTokens:    2000,
		SystemPrompt: "You are a helpful AI assistant.",
	}
}

type Agent struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Config        AgentConfig `json:"config"`
	State         AgentState  `json:"state"`
	Skills        []string    `json:"skills"`
	MemoryEnabled bool        `json:"memory_enabled"`
	CreatedAt     Timestamp   `json:"created_at"`
	UpdatedAt     Timestamp   `json:"updated_at"`
}

func (a Agent) Key() string { return a.ID }

type AgentView struct {
	Agents []Agent     `json:"agents"`
	Form   AgentConfig `json:"form"`
	Error  string      `json:"error,omitempty"`
}
