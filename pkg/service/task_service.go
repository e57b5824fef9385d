package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/views"
)

// listKey sequences whole-list reloads.
const listKey = "*"

// TaskService drives the tasks view. Status changes are optimistic: the
// local task changes first and the list reload that follows a successful
// update is only applied if no newer request for that task was issued.
type TaskService struct {
	viewBase
	gw      TaskGateway
	store   *store.Store
	journal *Journal[models.Task]
	loads   *Sequencer

	mu      sync.RWMutex
	filter  string
	search  string
	mode    models.ViewMode
	loading bool
}

func NewTaskService(gw TaskGateway, st *store.Store, opts Options) *TaskService {
	s := &TaskService{
		gw:      gw,
		store:   st,
		journal: NewJournal[models.Task](),
		loads:   NewSequencer(),
		filter:  models.FilterAll,
		mode:    models.ViewModeList,
	}
	s.init("tasks", opts)
	return s
}

func (s *TaskService) Activate(ctx context.Context) error {
	return s.Load(ctx)
}

// Load refreshes the task list. A failed load keeps the current list and does
// not touch the error slot.
func (s *TaskService) Load(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	s.setLoading(true)
	defer s.setLoading(false)

	_, err := s.reload(ctx, nil)
	return err
}

// reload fetches the list and applies it if it is still the newest list
// request and, when guard is set, the newest request for that task. Tasks
// with an unsettled optimistic change keep their local version.
func (s *TaskService) reload(ctx context.Context, guard *Entry[models.Task]) (bool, error) {
	n := s.loads.Next(listKey)
	tasks, err := s.gw.ListTasks(ctx)
	if err != nil {
		s.logger.Warn("list tasks failed", "error", err)
		return false, err
	}
	if !s.loads.IsLatest(listKey, n) || (guard != nil && !s.journal.IsLatest(*guard)) {
		s.stale("reload")
		return false, nil
	}
	for i, t := range tasks {
		if !s.journal.InFlight(t.ID) {
			continue
		}
		if local, ok := s.store.Tasks.Get(t.ID); ok {
			tasks[i] = local
		}
	}
	v := s.store.Tasks.Replace(tasks)
	s.emit(event.TasksChangedEvent{ResourceVersion: v})
	return true, nil
}

func (s *TaskService) setLoading(b bool) {
	s.mu.Lock()
	s.loading = b
	s.mu.Unlock()
}

// SetFilter accepts "all" or one of the four statuses.
func (s *TaskService) SetFilter(filter string) error {
	if filter == "" {
		filter = models.FilterAll
	}
	if filter != models.FilterAll && !models.TaskStatus(filter).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return nil
}

func (s *TaskService) SetSearch(query string) {
	s.mu.Lock()
	s.search = query
	s.mu.Unlock()
}

func (s *TaskService) SetViewMode(mode models.ViewMode) error {
	if mode != models.ViewModeList && mode != models.ViewModeBoard {
		return fmt.Errorf("%w: view mode %q", ErrInvalidFilter, mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// Filtered is the list after the status filter and the search query.
func (s *TaskService) Filtered() []models.Task {
	s.mu.RLock()
	filter, search := s.filter, s.search
	s.mu.RUnlock()
	return views.FilterTasks(s.store.Tasks.List(), filter, search)
}

// Board groups the filtered list into status columns.
func (s *TaskService) Board() models.Board {
	return views.GroupBoard(s.Filtered())
}

// StatCount counts over the unfiltered list.
func (s *TaskService) StatCount(status string) int {
	return views.StatCount(s.store.Tasks.List(), status)
}

// Create validates the title, posts the form and adds the task only after
// the backend accepted it.
func (s *TaskService) Create(ctx context.Context, form models.TaskForm) (models.Task, error) {
	if strings.TrimSpace(form.Title) == "" {
		s.fail("create", "Title is required", ErrTitleRequired)
		return models.Task{}, ErrTitleRequired
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	created, err := s.gw.CreateTask(ctx, form.Payload())
	if err != nil {
		s.failErr("create", err)
		return models.Task{}, err
	}
	s.store.Tasks.Prepend(created)
	s.succeed("create")
	_, _ = s.reload(ctx, nil)
	return created, nil
}

// Update sends the whole edit form. A task deleted while the edit was in
// flight stays deleted.
func (s *TaskService) Update(ctx context.Context, id string, form models.TaskForm) (models.Task, error) {
	if strings.TrimSpace(form.Title) == "" {
		s.fail("update", "Title is required", ErrTitleRequired)
		return models.Task{}, ErrTitleRequired
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	updated, err := s.gw.UpdateTask(ctx, id, form.Payload())
	if err != nil {
		s.failErr("update", err)
		return models.Task{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	if _, ok := s.store.Tasks.Update(id, func(models.Task) models.Task { return updated }); !ok {
		s.stale("update")
		return updated, nil
	}
	s.succeed("update")
	_, _ = s.reload(ctx, nil)
	return updated, nil
}

// ChangeStatus sets the status locally, then persists it. A failure leaves
// the local status in place unless rollback is enabled and this is still the
// newest change of the task.
func (s *TaskService) ChangeStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	before, ok := s.store.Tasks.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	entry := s.journal.Begin(id, before)
	s.store.Tasks.Update(id, func(t models.Task) models.Task {
		t.Status = status
		return t
	})
	s.emit(event.TaskStatusChangedEvent{TaskID: id, From: string(before.Status), To: string(status)})

	_, err := s.gw.UpdateTask(ctx, id, models.TaskStatusPatch{Status: status})
	s.journal.Resolve(entry.RequestID)
	if err != nil {
		s.failErr("change_status", err)
		if s.rollback {
			s.restore(entry)
		}
		return err
	}
	s.succeed("change_status")
	_, _ = s.reload(ctx, &entry)
	return nil
}

func (s *TaskService) restore(entry Entry[models.Task]) {
	if !s.journal.IsLatest(entry) {
		s.stale("rollback")
		return
	}
	if _, ok := s.store.Tasks.Update(entry.EntityID, func(models.Task) models.Task { return entry.Snapshot }); !ok {
		return
	}
	s.metrics.ObserveMutation(s.name, "change_status", "rolled_back")
	s.emit(event.MutationRolledBackEvent{View: s.name, EntityID: entry.EntityID, RequestID: entry.RequestID})
}

// Delete removes the task once the backend confirmed it.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	if err := s.gw.DeleteTask(ctx, id); err != nil {
		s.failErr("delete", err)
		return err
	}
	s.store.Tasks.Remove(id)
	s.succeed("delete")
	_, _ = s.reload(ctx, nil)
	return nil
}

// Pending lists optimistic status changes that have not settled.
func (s *TaskService) Pending() []Entry[models.Task] {
	return s.journal.Pending()
}

func (s *TaskService) ResourceVersion() uint64 {
	return s.store.Tasks.Version()
}

func (s *TaskService) View() models.TaskView {
	s.mu.RLock()
	filter, search, mode, loading := s.filter, s.search, s.mode, s.loading
	s.mu.RUnlock()

	all, version := s.store.Tasks.Snapshot()
	filtered := views.FilterTasks(all, filter, search)
	v := models.TaskView{
		Filter:          filter,
		Search:          search,
		Mode:            mode,
		Tasks:           filtered,
		Stats:           views.TaskStats(all),
		Loading:         loading,
		Error:           s.LastError(),
		ResourceVersion: version,
	}
	if mode == models.ViewModeBoard {
		b := views.GroupBoard(filtered)
		v.Board = &b
	}
	return v
}

func (s *TaskService) Close() {
	s.endLifetime()
	s.journal.Reset()
	s.store.Clear(store.KindTasks)
	s.mu.Lock()
	s.filter, s.search, s.mode = models.FilterAll, "", models.ViewModeList
	s.mu.Unlock()
}
