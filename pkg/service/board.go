package service

import (
	"context"
	"fmt"

	"github.com/openpaw/pawdeck/pkg/models"
)

// CanTransition reports whether a task may move from one status to another.
// Every status is reachable from every other; staying put is not a
// transition.
func CanTransition(from, to models.TaskStatus) bool {
	return from.Valid() && to.Valid() && from != to
}

// Drop handles a card dragged from one board column to another. Column ids
// are status values. Dropping into the same column does nothing.
func (s *TaskService) Drop(ctx context.Context, taskID, fromColumn, toColumn string) error {
	from, to := models.TaskStatus(fromColumn), models.TaskStatus(toColumn)
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: unknown column %q -> %q", ErrInvalidTransition, fromColumn, toColumn)
	}
	if from == to {
		return nil
	}
	task, ok := s.store.Tasks.Get(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != from {
		return fmt.Errorf("%w: task %s is %s, not %s", ErrInvalidTransition, taskID, task.Status, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return s.ChangeStatus(ctx, taskID, to)
}
