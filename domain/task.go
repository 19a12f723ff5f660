package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task represents a single to-do item owned by one user.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// NewTask builds a pending task from raw form input. Both fields are trimmed
// and CreatedAt == UpdatedAt at construction. NewTask itself rejects
// nothing; callers run ValidateTask on the input first.
func NewTask(title, description string) Task {
	now := Now()
	return Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// UpdateTask merges upd over task and refreshes UpdatedAt, whether or not
// any field actually changed. The input task is never mutated.
func UpdateTask(task Task, upd TaskUpdate) Task {
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = Now()
	return task
}

// TaskInput is the raw form payload checked before a create or edit.
type TaskInput struct {
	Title       string
	Description string
}

// TaskErrors holds per-field validation messages.
type TaskErrors struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TaskValidation is the outcome of ValidateTask. Valid is true iff no field
// message is set.
type TaskValidation struct {
	Valid  bool       `json:"isValid"`
	Errors TaskErrors `json:"errors"`
}

// ValidateTask checks a task payload against the field limits: title is
// required and capped at 100 characters, description at 500. Lengths are
// measured after trimming.
func ValidateTask(in TaskInput) TaskValidation {
	var errs TaskErrors

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs.Title = "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		errs.Title = "title must be at most 100 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) > maxDescriptionLen {
		errs.Description = "description must be at most 500 characters"
	}

	return TaskValidation{Valid: errs == TaskErrors{}, Errors: errs}
}
