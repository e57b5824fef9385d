package service

import "errors"

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrTaskNotFound      = errors.New("task not found")
	ErrNoFileSelected    = errors.New("no memory file selected")
	ErrSkillNotFound     = errors.New("skill not found")
)
