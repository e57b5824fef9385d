package service

import (
	"context"
	"strings"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
)

type AgentService struct {
	viewBase
	gw    AgentGateway
	store *store.Store
}

func NewAgentService(gw AgentGateway, st *store.Store, opts Options) *AgentService {
	s := &AgentService{gw: gw, store: st}
	s.init("agents", opts)
	return s
}

func (s *AgentService) Activate(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *AgentService) Load(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	agents, err := s.gw.ListAgents(ctx)
	if err != nil {
		s.logger.Warn("list agents failed", "error", err)
		return err
	}
	s.store.Agents.Replace(agents)
	s.emit(event.AgentsChangedEvent{})
	return nil
}

// Create registers a new agent. The zero config is replaced by the form
// defaults.
func (s *AgentService) Create(ctx context.Context, name string, cfg models.AgentConfig) (models.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.fail("create", "Name is required", ErrNameRequired)
		return models.Agent{}, ErrNameRequired
	}
	if cfg == (models.AgentConfig{}) {
		cfg = models.DefaultAgentConfig()
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	agent, err := s.gw.CreateAgent(ctx, name, cfg)
	if err != nil {
		s.failErr("create", err)
		return models.Agent{}, err
	}
	s.store.Agents.Put(agent)
	s.succeed("create")
	s.emit(event.AgentsChangedEvent{})
	return agent, nil
}

func (s *AgentService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	if err := s.gw.DeleteAgent(ctx, id); err != nil {
		s.failErr("delete", err)
		return err
	}
	s.store.Agents.Remove(id)
	s.succeed("delete")
	s.emit(event.AgentsChangedEvent{})
	return nil
}

func (s *AgentService) View() models.AgentView {
	return models.AgentView{
		Agents: s.store.Agents.List(),
		Form:   models.DefaultAgentConfig(),
		Error:  s.LastError(),
	}
}

func (s *AgentService) Close() {
	s.endLifetime()
	s.store.Clear(store.KindAgents)
}
