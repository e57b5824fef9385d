package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/views"
)

// SkillService drives the skills page. The backend only lists and registers
// skills; Toggle and Delete change local state only.
type SkillService struct {
	viewBase
	gw    SkillGateway
	store *store.Store
}

func NewSkillService(gw SkillGateway, st *store.Store, opts Options) *SkillService {
	s := &SkillService{gw: gw, store: st}
	s.init("skills", opts)
	return s
}

func (s *SkillService) Activate(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *SkillService) Load(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	skills, err := s.gw.ListSkills(ctx)
	if err != nil {
		s.logger.Warn("list skills failed", "error", err)
		return err
	}
	s.store.Skills.Replace(skills)
	s.emit(event.SkillsChangedEvent{})
	return nil
}

// Register posts a manifest built from the form. triggersCSV is split on
// commas with blanks dropped.
func (s *SkillService) Register(ctx context.Context, name, description, triggersCSV string) (models.Skill, error) {
	if strings.TrimSpace(name) == "" {
		s.fail("register", "Name is required", ErrNameRequired)
		return models.Skill{}, ErrNameRequired
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	manifest := models.SkillManifest{
		Name:        name,
		Description: description,
		Version:     models.DefaultSkillVersion,
		Triggers:    views.ParseTriggers(triggersCSV),
	}
	skill, err := s.gw.RegisterSkill(ctx, manifest)
	if err != nil {
		s.failErr("register", err)
		return models.Skill{}, err
	}
	s.store.Skills.Put(skill)
	s.succeed("register")
	s.emit(event.SkillsChangedEvent{})
	return skill, nil
}

// Toggle flips a skill between active and inactive locally.
func (s *SkillService) Toggle(id string) (models.Skill, error) {
	skill, ok := s.store.Skills.Update(id, func(sk models.Skill) models.Skill {
		if sk.Status == models.SkillStatusActive {
			sk.Status = models.SkillStatusInactive
		} else {
			sk.Status = models.SkillStatusActive
		}
		return sk
	})
	if !ok {
		return models.Skill{}, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	s.emit(event.SkillsChangedEvent{})
	return skill, nil
}

// Delete drops a skill from the local list.
func (s *SkillService) Delete(id string) error {
	if !s.store.Skills.Remove(id) {
		return fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	s.emit(event.SkillsChangedEvent{})
	return nil
}

func (s *SkillService) Partition() (builtin, custom []models.Skill) {
	return views.PartitionSkills(s.store.Skills.List())
}

func (s *SkillService) View() models.SkillView {
	builtin, custom := s.Partition()
	return models.SkillView{BuiltIn: builtin, Custom: custom, Error: s.LastError()}
}

func (s *SkillService) Close() {
	s.endLifetime()
	s.store.Clear(store.KindSkills)
}
