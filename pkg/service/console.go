package service

import (
	"time"

	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/store"
)

// Console bundles one controller per view over a shared store.
type Console struct {
	Store     *store.Store
	Chat      *ChatService
	Tasks     *TaskService
	Knowledge *KnowledgeService
	Agents    *AgentService
	Skills    *SkillService
	Dashboard *DashboardService
}

func NewConsole(client *gateway.Client, st *store.Store, saveStatusReset time.Duration, opts Options) *Console {
	return &Console{
		Store:     st,
		Chat:      NewChatService(client, st, opts),
		Tasks:     NewTaskService(client, st, opts),
		Knowledge: NewKnowledgeService(client, st, saveStatusReset, opts),
		Agents:    NewAgentService(client, st, opts),
		Skills:    NewSkillService(client, st, opts),
		Dashboard: NewDashboardService(client, opts),
	}
}

// Close tears down every view.
func (c *Console) Close() {
	c.Chat.Close()
	c.Tasks.Close()
	c.Knowledge.Close()
	c.Agents.Close()
	c.Skills.Close()
	c.Dashboard.Close()
}
