package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
)

func seededTasks() []models.Task {
	return []models.Task{
		{ID: "t1", Title: "Water plants", Status: models.TaskStatusPending, TaskType: models.TaskTypeDaily},
		{ID: "t2", Title: "Write report", Status: models.TaskStatusInProgress, TaskType: models.TaskTypeOneTime},
		{ID: "t3", Title: "Ship release", Status: models.TaskStatusCompleted, TaskType: models.TaskTypeOneTime},
	}
}

func newTaskService(t *testing.T, gw *fakeTaskGateway, opts Options) *TaskService {
	t.Helper()
	st, emitter := newTestStore()
	if opts.Emitter == nil {
		opts.Emitter = emitter
	}
	st.Tasks.Replace(seededTasks())
	return NewTaskService(gw, st, opts)
}

func taskStatus(t *testing.T, s *TaskService, id string) models.TaskStatus {
	t.Helper()
	task, ok := s.store.Tasks.Get(id)
	require.True(t, ok, "task %s missing", id)
	return task.Status
}

func TestTaskLoad(t *testing.T) {
	gw := &fakeTaskGateway{ListFn: func(context.Context) ([]models.Task, error) {
		return []models.Task{{ID: "t9", Title: "Fresh", Status: models.TaskStatusFailed}}, nil
	}}
	s := newTaskService(t, gw, Options{})
	before := s.ResourceVersion()

	require.NoError(t, s.Load(context.Background()))
	v := s.View()
	require.Len(t, v.Tasks, 1)
	assert.Equal(t, "t9", v.Tasks[0].ID)
	assert.Greater(t, v.ResourceVersion, before)
	assert.False(t, v.Loading)
}

func TestTaskLoadFailureKeepsList(t *testing.T) {
	gw := &fakeTaskGateway{ListFn: func(context.Context) ([]models.Task, error) {
		return nil, networkErr()
	}}
	s := newTaskService(t, gw, Options{})

	require.Error(t, s.Load(context.Background()))
	assert.Len(t, s.View().Tasks, 3)
	assert.Empty(t, s.LastError())
}

func TestTaskFilterAndSearch(t *testing.T) {
	s := newTaskService(t, &fakeTaskGateway{}, Options{})

	require.NoError(t, s.SetFilter("in_progress"))
	require.Len(t, s.Filtered(), 1)
	assert.Equal(t, "t2", s.Filtered()[0].ID)

	require.NoError(t, s.SetFilter(""))
	s.SetSearch("SHIP")
	require.Len(t, s.Filtered(), 1)
	assert.Equal(t, "t3", s.Filtered()[0].ID)

	assert.ErrorIs(t, s.SetFilter("archived"), ErrInvalidFilter)
	assert.Equal(t, 1, s.StatCount("pending"), "stats ignore the filter")
	assert.Equal(t, 3, s.StatCount("all"))
}

func TestTaskViewBoardMode(t *testing.T) {
	s := newTaskService(t, &fakeTaskGateway{}, Options{})

	assert.Nil(t, s.View().Board)
	require.NoError(t, s.SetViewMode(models.ViewModeBoard))
	assert.Error(t, s.SetViewMode("grid"))

	v := s.View()
	require.NotNil(t, v.Board)
	assert.Len(t, v.Board.Pending, 1)
	assert.Len(t, v.Board.InProgress, 1)
	assert.Len(t, v.Board.Completed, 1)
	assert.Empty(t, v.Board.Failed)
	assert.Equal(t, models.TaskStats{All: 3, Pending: 1, InProgress: 1, Completed: 1}, v.Stats)
}

func TestTaskCreate(t *testing.T) {
	t.Run("blank title makes no call", func(t *testing.T) {
		gw := &fakeTaskGateway{}
		s := newTaskService(t, gw, Options{})

		form := models.NewTaskForm()
		form.Title = "   "
		_, err := s.Create(context.Background(), form)
		assert.ErrorIs(t, err, ErrTitleRequired)
		assert.Zero(t, gw.creates)
		assert.Equal(t, "Title is required", s.LastError())
	})

	t.Run("failure leaves list untouched", func(t *testing.T) {
		gw := &fakeTaskGateway{CreateFn: func(context.Context, models.TaskPayload) (models.Task, error) {
			return models.Task{}, serverErr(422, "Invalid scheduled_time")
		}}
		s := newTaskService(t, gw, Options{})

		form := models.NewTaskForm()
		form.Title = "New"
		_, err := s.Create(context.Background(), form)
		require.Error(t, err)
		assert.Equal(t, 3, s.store.Tasks.Len())
		assert.Equal(t, "Invalid scheduled_time", s.LastError())
		assert.Zero(t, gw.lists)
	})

	t.Run("success adds and reloads", func(t *testing.T) {
		gw := &fakeTaskGateway{ListFn: func(context.Context) ([]models.Task, error) {
			return append([]models.Task{{ID: "created", Title: "New", Status: models.TaskStatusPending}}, seededTasks()...), nil
		}}
		s := newTaskService(t, gw, Options{})

		form := models.NewTaskForm()
		form.Title = "New"
		created, err := s.Create(context.Background(), form)
		require.NoError(t, err)
		assert.Equal(t, "created", created.ID)
		assert.Equal(t, 1, gw.lists)
		assert.Equal(t, 4, s.store.Tasks.Len())
	})
}

func TestTaskUpdateSendsForm(t *testing.T) {
	gw := &fakeTaskGateway{UpdateFn: func(_ context.Context, id string, _ any) (models.Task, error) {
		return models.Task{ID: id, Title: "Renamed", Status: models.TaskStatusPending}, nil
	}}
	s := newTaskService(t, gw, Options{})
	gw.ListFn = func(context.Context) ([]models.Task, error) { return s.store.Tasks.List(), nil }

	task, _ := s.store.Tasks.Get("t1")
	form := models.FormFromTask(task)
	form.Title = "Renamed"
	_, err := s.Update(context.Background(), "t1", form)
	require.NoError(t, err)

	require.Len(t, gw.updates, 1)
	payload, ok := gw.updates[0].(models.TaskPayload)
	require.True(t, ok)
	assert.Equal(t, "Renamed", payload.Title)
	got, _ := s.store.Tasks.Get("t1")
	assert.Equal(t, "Renamed", got.Title)
}

func TestTaskUpdateDoesNotRestoreDeletedTask(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeTaskGateway{
		UpdateFn: func(_ context.Context, id string, _ any) (models.Task, error) {
			close(started)
			<-release
			return models.Task{ID: id, Title: "Renamed", Status: models.TaskStatusPending}, nil
		},
		ListFn: func(context.Context) ([]models.Task, error) { return nil, networkErr() },
	}
	s := newTaskService(t, gw, Options{})

	task, _ := s.store.Tasks.Get("t1")
	form := models.FormFromTask(task)
	form.Title = "Renamed"

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "t1", form)
		done <- err
	}()
	<-started

	require.NoError(t, s.Delete(context.Background(), "t1"))
	close(release)
	require.NoError(t, <-done)

	assert.False(t, s.store.Tasks.Has("t1"))
	assert.Equal(t, 2, s.store.Tasks.Len())
}

func TestTaskChangeStatus(t *testing.T) {
	gw := &fakeTaskGateway{}
	s := newTaskService(t, gw, Options{})
	gw.ListFn = func(context.Context) ([]models.Task, error) {
		tasks := seededTasks()
		tasks[0].Status = models.TaskStatusCompleted
		tasks[0].Title = "Water plants (server)"
		return tasks, nil
	}

	var changes []event.TaskStatusChangedEvent
	s.emitter.On(event.TaskStatusChanged, func(ev event.Event) {
		changes = append(changes, ev.(event.TaskStatusChangedEvent))
	})

	require.NoError(t, s.ChangeStatus(context.Background(), "t1", models.TaskStatusCompleted))
	assert.Equal(t, []any{models.TaskStatusPatch{Status: models.TaskStatusCompleted}}, gw.updates)
	assert.Equal(t, []event.TaskStatusChangedEvent{{TaskID: "t1", From: "pending", To: "completed"}}, changes)

	got, _ := s.store.Tasks.Get("t1")
	assert.Equal(t, "Water plants (server)", got.Title, "reload applied")
	assert.Empty(t, s.Pending())
}

func TestTaskChangeStatusRejectsUnknown(t *testing.T) {
	gw := &fakeTaskGateway{}
	s := newTaskService(t, gw, Options{})

	assert.ErrorIs(t, s.ChangeStatus(context.Background(), "t1", "archived"), ErrInvalidTransition)
	assert.ErrorIs(t, s.ChangeStatus(context.Background(), "nope", models.TaskStatusFailed), ErrTaskNotFound)
	assert.Empty(t, gw.updates)
}

func TestTaskChangeStatusFailureKeepsLocalByDefault(t *testing.T) {
	gw := &fakeTaskGateway{UpdateFn: func(context.Context, string, any) (models.Task, error) {
		return models.Task{}, serverErr(500, "Failed to update task")
	}}
	s := newTaskService(t, gw, Options{})

	require.Error(t, s.ChangeStatus(context.Background(), "t1", models.TaskStatusFailed))
	assert.Equal(t, models.TaskStatusFailed, taskStatus(t, s, "t1"))
	assert.Equal(t, "Failed to update task", s.LastError())
	assert.Zero(t, gw.lists)
	assert.Empty(t, s.Pending())
}

func TestTaskChangeStatusRollback(t *testing.T) {
	gw := &fakeTaskGateway{UpdateFn: func(context.Context, string, any) (models.Task, error) {
		return models.Task{}, networkErr()
	}}
	s := newTaskService(t, gw, Options{RollbackOnFailure: true})

	var rolled []event.MutationRolledBackEvent
	s.emitter.On(event.MutationRolledBack, func(ev event.Event) {
		rolled = append(rolled, ev.(event.MutationRolledBackEvent))
	})

	require.Error(t, s.ChangeStatus(context.Background(), "t1", models.TaskStatusFailed))
	assert.Equal(t, models.TaskStatusPending, taskStatus(t, s, "t1"))
	require.Len(t, rolled, 1)
	assert.Equal(t, "t1", rolled[0].EntityID)
	assert.Equal(t, "tasks", rolled[0].View)
}

func TestTaskRollbackSkippedWhenSuperseded(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeTaskGateway{
		UpdateFn: func(_ context.Context, id string, patch any) (models.Task, error) {
			if patch.(models.TaskStatusPatch).Status == models.TaskStatusInProgress {
				<-release
				return models.Task{}, serverErr(500, "Failed to update task")
			}
			return models.Task{ID: id}, nil
		},
		ListFn: func(context.Context) ([]models.Task, error) { return seededTasks(), nil },
	}
	s := newTaskService(t, gw, Options{RollbackOnFailure: true})

	first := make(chan error, 1)
	go func() { first <- s.ChangeStatus(context.Background(), "t1", models.TaskStatusInProgress) }()
	require.Eventually(t, func() bool { return gw.updateCount() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.ChangeStatus(context.Background(), "t1", models.TaskStatusCompleted))
	assert.Equal(t, models.TaskStatusCompleted, taskStatus(t, s, "t1"), "in-flight task keeps its local version across reload")
	require.Len(t, s.Pending(), 1)

	close(release)
	require.Error(t, <-first)
	assert.Equal(t, models.TaskStatusCompleted, taskStatus(t, s, "t1"), "older failure must not roll back a newer change")
	assert.Empty(t, s.Pending())
}

func TestTaskDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gw := &fakeTaskGateway{}
		s := newTaskService(t, gw, Options{})
		gw.ListFn = func(context.Context) ([]models.Task, error) { return s.store.Tasks.List(), nil }

		require.NoError(t, s.Delete(context.Background(), "t2"))
		assert.False(t, s.store.Tasks.Has("t2"))
	})

	t.Run("failure", func(t *testing.T) {
		gw := &fakeTaskGateway{DeleteFn: func(context.Context, string) error { return serverErr(404, "Task not found") }}
		s := newTaskService(t, gw, Options{})

		require.Error(t, s.Delete(context.Background(), "t2"))
		assert.True(t, s.store.Tasks.Has("t2"))
		assert.Equal(t, "Task not found", s.LastError())
	})
}

func TestTaskDrop(t *testing.T) {
	tests := []struct {
		name        string
		taskID      string
		from, to    string
		wantErr     error
		wantUpdates int
		wantStatus  models.TaskStatus
	}{
		{name: "same column", taskID: "t1", from: "pending", to: "pending", wantStatus: models.TaskStatusPending},
		{name: "unknown target", taskID: "t1", from: "pending", to: "archived", wantErr: ErrInvalidTransition, wantStatus: models.TaskStatusPending},
		{name: "unknown source", taskID: "t1", from: "todo", to: "completed", wantErr: ErrInvalidTransition, wantStatus: models.TaskStatusPending},
		{name: "stale source column", taskID: "t1", from: "in_progress", to: "completed", wantErr: ErrInvalidTransition, wantStatus: models.TaskStatusPending},
		{name: "missing task", taskID: "t404", from: "pending", to: "completed", wantErr: ErrTaskNotFound},
		{name: "move", taskID: "t1", from: "pending", to: "failed", wantUpdates: 1, wantStatus: models.TaskStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeTaskGateway{}
			s := newTaskService(t, gw, Options{})
			gw.ListFn = func(context.Context) ([]models.Task, error) { return s.store.Tasks.List(), nil }

			err := s.Drop(context.Background(), tt.taskID, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, gw.updates, tt.wantUpdates)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, taskStatus(t, s, tt.taskID))
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.TaskStatusFailed, models.TaskStatusPending))
	assert.True(t, CanTransition(models.TaskStatusCompleted, models.TaskStatusInProgress))
	assert.False(t, CanTransition(models.TaskStatusPending, models.TaskStatusPending))
	assert.False(t, CanTransition("", models.TaskStatusPending))
}

func TestTaskClose(t *testing.T) {
	s := newTaskService(t, &fakeTaskGateway{}, Options{})
	require.NoError(t, s.SetFilter("failed"))
	s.SetSearch("x")

	s.Close()
	v := s.View()
	assert.Empty(t, v.Tasks)
	assert.Equal(t, models.FilterAll, v.Filter)
	assert.Empty(t, v.Search)
	assert.Equal(t, models.ViewModeList, v.Mode)
}
