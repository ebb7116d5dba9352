package engine

import (
	"time"

	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/orchestrators/loot"
)

// MissionOutcome is how a mission ended
type MissionOutcome string

// Mission outcome constants
const (
	OutcomeSuccess MissionOutcome = "OUTCOME_SUCCESS"
	OutcomeDeath   MissionOutcome = "OUTCOME_DEATH"
)

// StartMissionInput defines the input for starting a mission
type StartMissionInput struct {
	Depth int
}

// StartMissionOutput defines the output for starting a mission
type StartMissionOutput struct {
	MissionID string
	Floor     *entities.FloorConfig
	Tasks     []*entities.Task
}

// GenerateLootInput defines the input for rolling the active floor's loot
// table
type GenerateLootInput struct{}

// GenerateLootOutput defines the output for rolling loot
type GenerateLootOutput struct {
	Drops []loot.Drop
}

// PickUpInput defines the input for adding rolled drops to the ledger
type PickUpInput struct {
	Drops []loot.Drop
}

// Overflow reports drop quantity the ledger could not hold
type Overflow struct {
	ItemID   string
	Quantity int
}

// PickUpOutput defines the output for adding rolled drops. Overflow lists
// what did not fit; the driver decides what happens to it.
type PickUpOutput struct {
	Overflow []Overflow
}

// TickInput defines the input for advancing engine time
type TickInput struct {
	Delta time.Duration
}

// TickOutput defines the output for advancing engine time
type TickOutput struct {
	CraftsCompleted []string
	CraftsFailed    []string
}

// EndMissionInput defines the input for ending the active mission
type EndMissionInput struct {
	Outcome MissionOutcome
}

// EndMissionOutput defines the output for ending a mission
type EndMissionOutput struct {
	RequiredComplete bool
	Record           *entities.ProgressionRecord
}

// SaveStateInput defines the input for persisting profile state
type SaveStateInput struct{}

// SaveStateOutput defines the output for persisting profile state
type SaveStateOutput struct {
	SavedAt time.Time
}

// LoadStateInput defines the input for restoring profile state
type LoadStateInput struct{}

// LoadStateOutput defines the output for restoring profile state. Loaded is
// false when no usable snapshot existed and the engine kept default state.
type LoadStateOutput struct {
	Loaded       bool
	SkippedItems []string
}
