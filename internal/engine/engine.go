// Package engine assembles the economy orchestrators into one mission
// driver surface. The Engine owns the event bus, the progression record,
// and the per-mission lifecycle; the driver calls it from a single
// goroutine and advances time through Tick.
package engine

import (
	"context"
	"log/slog"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/crafting"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
	"github.com/delveforge/delve-engine/internal/orchestrators/loadout"
	"github.com/delveforge/delve-engine/internal/orchestrators/loot"
	"github.com/delveforge/delve-engine/internal/orchestrators/tasks"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
	"github.com/delveforge/delve-engine/internal/pkg/idgen"
	"github.com/delveforge/delve-engine/internal/pkg/roller"
	"github.com/delveforge/delve-engine/internal/repositories/snapshot"
)

// DefaultProfileID is used when the config does not name a profile
const DefaultProfileID = "profile_default"

// Config holds the dependencies for the engine
type Config struct {
	Catalog *catalog.Catalog

	// SnapshotRepo is optional; without it SaveState and LoadState fail
	// with errors.FailedPrecondition
	SnapshotRepo snapshot.Repository

	// ProfileID defaults to DefaultProfileID when empty
	ProfileID string

	// Seed drives the loot roller; zero means seed from the clock
	Seed int64

	// Optional overrides, defaulted when nil
	Clock       clock.Clock
	IDGenerator idgen.Generator

	// MaxConsumableSlots is passed through to the loadout manager
	MaxConsumableSlots int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.MaxConsumableSlots < 0 {
		vb.Field("MaxConsumableSlots", "must not be negative")
	}
	return vb.Build()
}

// activeMission is the per-run state between StartMission and EndMission
type activeMission struct {
	id    string
	floor *entities.FloorConfig
}

// Engine is the assembled economy and progression engine for one profile.
// Not safe for concurrent use.
type Engine struct {
	catalog     *catalog.Catalog
	bus         *events.Bus
	clock       clock.Clock
	idGen       idgen.Generator
	progression *entities.ProgressionRecord
	repo        snapshot.Repository
	profileID   string

	ledger   inventory.Service
	crafting crafting.Service
	loot     loot.Service
	tasks    tasks.Service
	loadout  loadout.Service

	mission *activeMission
}

// New creates an engine with default state and wires the orchestrators
// together over a shared event bus
func New(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewUUID("mission")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	profileID := cfg.ProfileID
	if profileID == "" {
		profileID = DefaultProfileID
	}

	bus := events.NewBus()
	progression := entities.NewProgressionRecord()

	ledger, err := inventory.NewOrchestrator(&inventory.Config{
		Catalog:  cfg.Catalog,
		EventBus: bus,
	})
	if err != nil {
		return nil, err
	}

	crafter, err := crafting.NewOrchestrator(&crafting.Config{
		Catalog:     cfg.Catalog,
		Ledger:      ledger,
		EventBus:    bus,
		Clock:       clk,
		IDGenerator: idGen,
		Progression: progression,
	})
	if err != nil {
		return nil, err
	}

	generator, err := loot.NewOrchestrator(&loot.Config{
		Catalog:  cfg.Catalog,
		EventBus: bus,
		Roller:   roller.NewSeeded(seed),
	})
	if err != nil {
		return nil, err
	}

	tracker, err := tasks.NewOrchestrator(&tasks.Config{
		Catalog:     cfg.Catalog,
		Ledger:      ledger,
		EventBus:    bus,
		Clock:       clk,
		Progression: progression,
	})
	if err != nil {
		return nil, err
	}

	manager, err := loadout.NewOrchestrator(&loadout.Config{
		Catalog:            cfg.Catalog,
		Ledger:             ledger,
		EventBus:           bus,
		MaxConsumableSlots: cfg.MaxConsumableSlots,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalog:     cfg.Catalog,
		bus:         bus,
		clock:       clk,
		idGen:       idGen,
		progression: progression,
		repo:        cfg.SnapshotRepo,
		profileID:   profileID,
		ledger:      ledger,
		crafting:    crafter,
		loot:        generator,
		tasks:       tracker,
		loadout:     manager,
	}, nil
}

// Ledger exposes the inventory ledger as a driver primitive
func (e *Engine) Ledger() inventory.Service { return e.ledger }

// Crafting exposes the crafting resolver
func (e *Engine) Crafting() crafting.Service { return e.crafting }

// Tasks exposes the task tracker
func (e *Engine) Tasks() tasks.Service { return e.tasks }

// Loadout exposes the loadout manager
func (e *Engine) Loadout() loadout.Service { return e.loadout }

// Events exposes the shared event bus for driver subscriptions
func (e *Engine) Events() events.EventBus { return e.bus }

// Progression returns the live progression record
func (e *Engine) Progression() *entities.ProgressionRecord { return e.progression }

// StartMission begins a run at the given depth. Returns errors.Locked when
// the depth has not been unlocked and errors.FailedPrecondition when a
// mission is already active.
func (e *Engine) StartMission(ctx context.Context, input *StartMissionInput) (*StartMissionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if e.mission != nil {
		return nil, errors.FailedPreconditionf("mission %s is still active", e.mission.id)
	}

	floor, err := e.catalog.Floor(input.Depth)
	if err != nil {
		return nil, err
	}
	if !e.progression.DepthUnlocked(input.Depth) {
		return nil, errors.Lockedf("depth %d is not unlocked", input.Depth).
			WithMeta("depth", input.Depth)
	}

	initialized, err := e.tasks.Initialize(ctx, &tasks.InitializeInput{
		DefinitionIDs: floor.TaskDefinitionIDs,
	})
	if err != nil {
		return nil, err
	}

	missionID := e.idGen.Generate()
	e.mission = &activeMission{id: missionID, floor: floor}
	e.progression.Runs++

	if err := e.bus.Publish(ctx, events.MissionStarted{
		MissionID:  missionID,
		FloorDepth: input.Depth,
	}); err != nil {
		slog.Warn("failed to publish mission started event", "error", err)
	}

	slog.Info("mission started",
		"mission_id", missionID,
		"depth", input.Depth)

	return &StartMissionOutput{
		MissionID: missionID,
		Floor:     floor,
		Tasks:     initialized.Tasks,
	}, nil
}

// GenerateLoot rolls the active floor's loot table. The drops are not added
// to the ledger until the driver calls PickUp.
func (e *Engine) GenerateLoot(ctx context.Context, input *GenerateLootInput) (*GenerateLootOutput, error) {
	if e.mission == nil {
		return nil, errors.FailedPrecondition("no active mission")
	}
	if e.mission.floor.LootTableID == "" {
		return nil, errors.FailedPreconditionf("floor %d has no loot table", e.mission.floor.Depth)
	}

	out, err := e.loot.Generate(ctx, &loot.GenerateInput{
		TableID:    e.mission.floor.LootTableID,
		FloorDepth: e.mission.floor.Depth,
	})
	if err != nil {
		return nil, err
	}

	return &GenerateLootOutput{Drops: out.Drops}, nil
}

// PickUp adds rolled drops to the ledger, reporting overflow back to the
// driver instead of failing
func (e *Engine) PickUp(ctx context.Context, input *PickUpInput) (*PickUpOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	output := &PickUpOutput{}
	for _, drop := range input.Drops {
		added, err := e.ledger.AddItem(ctx, &inventory.AddItemInput{
			ItemID:   drop.ItemID,
			Quantity: drop.Quantity,
		})
		if err != nil {
			return nil, err
		}
		if added.Overflow > 0 {
			output.Overflow = append(output.Overflow, Overflow{
				ItemID:   drop.ItemID,
				Quantity: added.Overflow,
			})
		}
	}

	return output, nil
}

// Tick advances engine time by the elapsed delta
func (e *Engine) Tick(ctx context.Context, input *TickInput) (*TickOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	out, err := e.crafting.Tick(ctx, &crafting.TickInput{Delta: input.Delta})
	if err != nil {
		return nil, err
	}

	return &TickOutput{
		CraftsCompleted: out.Completed,
		CraftsFailed:    out.Failed,
	}, nil
}

// EndMission closes the active run and folds its outcome into the
// progression record. Death-penalty inventory loss is driver policy, built
// on RemoveItem; the engine does not impose one.
func (e *Engine) EndMission(ctx context.Context, input *EndMissionInput) (*EndMissionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if e.mission == nil {
		return nil, errors.FailedPrecondition("no active mission")
	}
	if input.Outcome != OutcomeSuccess && input.Outcome != OutcomeDeath {
		return nil, errors.InvalidArgumentf("invalid outcome %q", input.Outcome)
	}

	mission := e.mission
	depth := mission.floor.Depth

	gate, err := e.tasks.AllRequiredComplete(ctx, &tasks.AllRequiredCompleteInput{})
	if err != nil {
		return nil, err
	}

	switch input.Outcome {
	case OutcomeSuccess:
		e.progression.CompleteDepth(depth)
	case OutcomeDeath:
		e.progression.Deaths++
	}

	if _, err := e.tasks.Reset(ctx, &tasks.ResetInput{}); err != nil {
		return nil, err
	}
	e.mission = nil

	if err := e.bus.Publish(ctx, events.MissionEnded{
		MissionID: mission.id,
		Success:   input.Outcome == OutcomeSuccess,
	}); err != nil {
		slog.Warn("failed to publish mission ended event", "error", err)
	}

	slog.Info("mission ended",
		"mission_id", mission.id,
		"depth", depth,
		"outcome", string(input.Outcome))

	return &EndMissionOutput{
		RequiredComplete: gate.Complete,
		Record:           e.progression,
	}, nil
}

// SaveState persists the profile's ledger, loadout, and progression
func (e *Engine) SaveState(ctx context.Context, input *SaveStateInput) (*SaveStateOutput, error) {
	if e.repo == nil {
		return nil, errors.FailedPrecondition("no snapshot repository configured")
	}

	stacks, err := e.ledger.Snapshot(ctx, &inventory.SnapshotInput{})
	if err != nil {
		return nil, err
	}
	current, err := e.loadout.Get(ctx, &loadout.GetInput{})
	if err != nil {
		return nil, err
	}

	saved, err := e.repo.Save(ctx, snapshot.SaveInput{
		Snapshot: &snapshot.Snapshot{
			ProfileID:   e.profileID,
			Stacks:      stacks.Stacks,
			Loadout:     current.Loadout,
			Progression: e.progression,
		},
	})
	if err != nil {
		return nil, err
	}

	slog.Info("profile state saved",
		"profile_id", e.profileID,
		"stacks", len(stacks.Stacks))

	return &SaveStateOutput{SavedAt: saved.SavedAt}, nil
}

// LoadState restores the profile from its snapshot. A missing or corrupt
// snapshot degrades to default empty state with a warning, never an error.
func (e *Engine) LoadState(ctx context.Context, input *LoadStateInput) (*LoadStateOutput, error) {
	if e.repo == nil {
		return nil, errors.FailedPrecondition("no snapshot repository configured")
	}
	if e.mission != nil {
		return nil, errors.FailedPrecondition("cannot load state during a mission")
	}

	got, err := e.repo.Get(ctx, snapshot.GetInput{ProfileID: e.profileID})
	if err != nil {
		slog.Warn("no usable snapshot, starting with default state",
			"profile_id", e.profileID,
			"error", err)
		return &LoadStateOutput{Loaded: false}, nil
	}
	snap := got.Snapshot

	output := &LoadStateOutput{Loaded: true}

	restored, err := e.ledger.Restore(ctx, &inventory.RestoreInput{Stacks: snap.Stacks})
	if err != nil {
		return nil, err
	}
	output.SkippedItems = append(output.SkippedItems, restored.SkippedItems...)

	if snap.Progression != nil {
		*e.progression = *snap.Progression
	}

	if snap.Loadout != nil {
		fitted, err := e.loadout.Restore(ctx, &loadout.RestoreInput{Loadout: snap.Loadout})
		if err != nil {
			return nil, err
		}
		output.SkippedItems = append(output.SkippedItems, fitted.SkippedItems...)
	}

	slog.Info("profile state loaded",
		"profile_id", e.profileID,
		"stacks", len(snap.Stacks),
		"skipped", len(output.SkippedItems))

	return output, nil
}
