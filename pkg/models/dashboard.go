package models

// DashboardStats is the body of GET /api/dashboard/stats. The task counters
// are optional on older backends.
type DashboardStats struct {
	ConversationsCount int `json:"conversations_count"`
	SkillsCount        int `json:"skills_count"`
	DocsCount          int `json:"docs_count"`
	TasksCount         int `json:"tasks_count,omitempty"`
	TasksPending       int `json:"tasks_pending,omitempty"`
	TasksCompleted     int `json:"tasks_completed,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

const (
	BackendOnline   = "Online"
	BackendDegraded = "Degraded"
	BackendOffline  = "Offline"
)

type DashboardView struct {
	Backend        string         `json:"backend"`
	VectorDBOnline bool           `json:"vector_db_online"`
	Stats          DashboardStats `json:"stats"`
	Error          string         `json:"error,omitempty"`
}
