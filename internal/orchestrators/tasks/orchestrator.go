// Package tasks implements the per-mission objective tracker: task
// instantiation from catalog definitions, progress accounting driven by
// world events, and reward payout on completion.
//
// Completion is a one-way transition. A completed task ignores every
// further update, and its rewards are granted exactly once.
package tasks

import (
	"context"
	"log/slog"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
)

// Service defines the interface for task tracking operations
type Service interface {
	// Initialize replaces the tracked task set with fresh instances of
	// the named definitions, all active at progress zero
	Initialize(ctx context.Context, input *InitializeInput) (*InitializeOutput, error)

	// UpdateProgress advances every active task matching the reported
	// event. Tasks reaching their required amount complete, pay out
	// their rewards, and are not advanced again.
	UpdateProgress(ctx context.Context, input *UpdateProgressInput) (*UpdateProgressOutput, error)

	// AllRequiredComplete reports whether every required task is complete
	AllRequiredComplete(ctx context.Context, input *AllRequiredCompleteInput) (*AllRequiredCompleteOutput, error)

	// Tasks lists tracked tasks in initialization order
	Tasks(ctx context.Context, input *TasksInput) (*TasksOutput, error)

	// Reset discards all tracked tasks
	Reset(ctx context.Context, input *ResetInput) (*ResetOutput, error)
}

// Config holds the dependencies for the task orchestrator
type Config struct {
	Catalog     *catalog.Catalog
	Ledger      inventory.Service
	EventBus    events.EventBus
	Clock       clock.Clock
	Progression *entities.ProgressionRecord
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Ledger == nil {
		vb.RequiredField("Ledger")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.Progression == nil {
		vb.RequiredField("Progression")
	}

	return vb.Build()
}

type orchestrator struct {
	catalog     *catalog.Catalog
	ledger      inventory.Service
	eventBus    events.EventBus
	clock       clock.Clock
	progression *entities.ProgressionRecord

	tasks []*entities.Task
}

// NewOrchestrator creates a new task orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &orchestrator{
		catalog:     cfg.Catalog,
		ledger:      cfg.Ledger,
		eventBus:    cfg.EventBus,
		clock:       c,
		progression: cfg.Progression,
	}, nil
}

func (o *orchestrator) Initialize(ctx context.Context, input *InitializeInput) (*InitializeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	instances := make([]*entities.Task, 0, len(input.DefinitionIDs))
	now := o.clock.Now()
	for _, id := range input.DefinitionIDs {
		def, err := o.catalog.TaskDefinition(id)
		if err != nil {
			return nil, errors.Wrapf(err, "initializing task %s", id)
		}
		instances = append(instances, &entities.Task{
			Definition: def,
			Status:     entities.TaskActive,
			Progress:   0,
			StartedAt:  now,
		})
	}

	o.tasks = instances

	slog.Info("tasks initialized", "count", len(instances))

	return &InitializeOutput{Tasks: instances}, nil
}

func (o *orchestrator) UpdateProgress(ctx context.Context, input *UpdateProgressInput) (*UpdateProgressOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.Type == "" {
		vb.RequiredField("Type")
	}
	vb.PositiveField("Amount", input.Amount)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	// Kill counting is per reported event, independent of any matching
	// task
	if input.Type == entities.TaskKill {
		o.progression.EnemiesKilled += input.Amount
	}

	output := &UpdateProgressOutput{}
	for _, task := range o.tasks {
		if task.Status != entities.TaskActive {
			continue
		}
		def := task.Definition
		if def.Type != input.Type {
			continue
		}
		if def.TargetID != "" && def.TargetID != input.TargetID {
			continue
		}

		output.Matched++
		task.Progress += input.Amount
		if task.Progress > def.RequiredAmount {
			task.Progress = def.RequiredAmount
		}

		if err := o.eventBus.Publish(ctx, events.TaskProgressed{
			TaskID:   def.ID,
			Progress: task.Progress,
			Required: def.RequiredAmount,
		}); err != nil {
			slog.Warn("failed to publish task progressed event", "error", err)
		}

		if task.Progress >= def.RequiredAmount {
			o.complete(ctx, task)
			output.Completed = append(output.Completed, def.ID)
		}
	}

	return output, nil
}

// complete transitions a task to its terminal state and pays out rewards.
// Payout overflow is logged and dropped, never an error.
func (o *orchestrator) complete(ctx context.Context, task *entities.Task) {
	def := task.Definition
	task.Status = entities.TaskComplete
	task.CompletedAt = o.clock.Now()

	for _, reward := range def.Rewards {
		out, err := o.ledger.AddItem(ctx, &inventory.AddItemInput{
			ItemID:   reward.ItemID,
			Quantity: reward.Quantity,
		})
		if err != nil {
			slog.Warn("failed to grant task reward",
				"task_id", def.ID,
				"item_id", reward.ItemID,
				"error", err)
			continue
		}
		if out.Overflow > 0 {
			slog.Warn("task reward overflowed the ledger",
				"task_id", def.ID,
				"item_id", reward.ItemID,
				"overflow", out.Overflow)
		}
	}

	if err := o.eventBus.Publish(ctx, events.TaskCompleted{
		TaskID:  def.ID,
		Rewards: def.Rewards,
	}); err != nil {
		slog.Warn("failed to publish task completed event", "error", err)
	}

	slog.Info("task completed", "task_id", def.ID)
}

func (o *orchestrator) AllRequiredComplete(ctx context.Context, input *AllRequiredCompleteInput) (*AllRequiredCompleteOutput, error) {
	for _, task := range o.tasks {
		if task.Definition.Required && task.Status != entities.TaskComplete {
			return &AllRequiredCompleteOutput{Complete: false}, nil
		}
	}
	return &AllRequiredCompleteOutput{Complete: true}, nil
}

func (o *orchestrator) Tasks(ctx context.Context, input *TasksInput) (*TasksOutput, error) {
	out := make([]*entities.Task, len(o.tasks))
	copy(out, o.tasks)
	return &TasksOutput{Tasks: out}, nil
}

func (o *orchestrator) Reset(ctx context.Context, input *ResetInput) (*ResetOutput, error) {
	cleared := len(o.tasks)
	o.tasks = nil
	return &ResetOutput{Cleared: cleared}, nil
}
