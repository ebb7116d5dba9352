package entities

import "time"

// TaskType classifies what world event advances a task
type TaskType string

// Task type constants
const (
	TaskKill   TaskType = "TASK_KILL"
	TaskGather TaskType = "TASK_GATHER"
	TaskCraft  TaskType = "TASK_CRAFT"
	TaskReach  TaskType = "TASK_REACH"
)

// TaskStatus is the lifecycle state of a task instance
type TaskStatus string

// Task status constants. Complete is terminal.
const (
	TaskNotStarted TaskStatus = "TASK_NOT_STARTED"
	TaskActive     TaskStatus = "TASK_ACTIVE"
	TaskComplete   TaskStatus = "TASK_COMPLETE"
)

// Reward is one (item, quantity) grant paid out on task completion
type Reward struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// TaskDefinition is the immutable catalog definition of a mission objective.
// An empty TargetID matches any target of the task's type.
type TaskDefinition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           TaskType `json:"type"`
	TargetID       string   `json:"target_id"`
	RequiredAmount int      `json:"required_amount"`
	Required       bool     `json:"required"`
	Rewards        []Reward `json:"rewards"`
}

// GetID returns the task definition's identifier
func (d *TaskDefinition) GetID() string {
	return d.ID
}

// GetType returns the entity type for toolkit interop
func (d *TaskDefinition) GetType() string {
	return "task_definition"
}

// Task is a per-mission objective instance: an immutable definition plus
// mutable runtime progress. Instances are created at mission start and
// discarded when the mission ends.
type Task struct {
	Definition  *TaskDefinition
	Status      TaskStatus
	Progress    int
	StartedAt   time.Time
	CompletedAt time.Time
}
