package tasks

import (
	"github.com/delveforge/delve-engine/internal/entities"
)

// InitializeInput defines the input for seeding the tracker with a
// floor's objectives
type InitializeInput struct {
	DefinitionIDs []string
}

// InitializeOutput defines the output for seeding the tracker
type InitializeOutput struct {
	Tasks []*entities.Task
}

// UpdateProgressInput defines the input for reporting a world event. An
// empty TargetID on a definition matches any target of the same type.
type UpdateProgressInput struct {
	Type     entities.TaskType
	TargetID string
	Amount   int
}

// UpdateProgressOutput defines the output for reporting a world event.
// Completed lists task IDs that transitioned to complete on this update.
type UpdateProgressOutput struct {
	Matched   int
	Completed []string
}

// AllRequiredCompleteInput defines the input for the mission gate check
type AllRequiredCompleteInput struct{}

// AllRequiredCompleteOutput defines the output for the mission gate check
type AllRequiredCompleteOutput struct {
	Complete bool
}

// TasksInput defines the input for listing tracked tasks
type TasksInput struct{}

// TasksOutput defines the output for listing tracked tasks, in
// initialization order
type TasksOutput struct {
	Tasks []*entities.Task
}

// ResetInput defines the input for discarding all tracked tasks
type ResetInput struct{}

// ResetOutput defines the output for discarding all tracked tasks
type ResetOutput struct {
	Cleared int
}
