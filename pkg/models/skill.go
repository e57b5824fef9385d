package models

type SkillStatus string

const (
	SkillStatusActive   SkillStatus = "active"
	SkillStatusInactive SkillStatus = "inactive"
	SkillStatusError    SkillStatus = "error"
)

// DefaultSkillVersion is sent for every registration.
const DefaultSkillVersion = "1.0.0"

type SkillManifest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Triggers    []string `json:"triggers"`
	CronCapable bool     `json:"cron_capable"`
}

type Skill struct {
	ID             string        `json:"id"`
	Manifest       SkillManifest `json:"manifest"`
	Status         SkillStatus   `json:"status"`
	ExecutionCount int           `json:"execution_count"`
	LastExecuted   *Timestamp    `json:"last_executed"`
	CreatedAt      Timestamp     `json:"created_at"`
	UpdatedAt      Timestamp     `json:"updated_at"`
}

func (s Skill) Key() string { return s.ID }

type SkillView struct {
	BuiltIn []Skill `json:"built_in"`
	Custom  []Skill `json:"custom"`
	Error   string  `json:"error,omitempty"`
}
