// Package crafting implements the crafting resolver: validation and
// transactional execution of recipes against the inventory ledger.
//
// Crafting is all-or-nothing. Every requirement is re-validated immediately
// before any mutation; a failed check leaves the ledger byte-for-byte
// unchanged. Duration-bearing recipes become pending crafts advanced by the
// externally driven tick, one per station.
package crafting

import (
	"context"
	"log/slog"
	"sort"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
	"github.com/delveforge/delve-engine/internal/pkg/idgen"
)

// DefaultStation addresses crafts that do not name a station
const DefaultStation = "station_default"

// Service defines the interface for crafting operations
type Service interface {
	// CanCraft reports whether the recipe could be crafted right now.
	// Read-only; never mutates the ledger.
	CanCraft(ctx context.Context, input *CanCraftInput) (*CanCraftOutput, error)

	// Craft executes a recipe. Instant recipes consume materials and add
	// the result synchronously; duration-bearing recipes go pending.
	// Returns errors.Locked for a locked recipe,
	// errors.InsufficientResource when materials are short,
	// errors.CapacityExceeded when a non-stackable result is already
	// owned, and errors.FailedPrecondition when the station already has
	// a pending craft.
	Craft(ctx context.Context, input *CraftInput) (*CraftOutput, error)

	// Cancel releases a pending craft's reservation without mutation.
	// Always succeeds for an existing pending craft.
	Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error)

	// Tick advances pending crafts by the elapsed delta. Crafts whose
	// timer elapses consume their materials and produce their result, or
	// fail if the reserved stock was spent in the meantime.
	Tick(ctx context.Context, input *TickInput) (*TickOutput, error)

	// Pending lists pending crafts in stable station order
	Pending(ctx context.Context, input *PendingInput) (*PendingOutput, error)

	// UnlockRecipe records a one-way recipe unlock in the progression
	// record
	UnlockRecipe(ctx context.Context, input *UnlockRecipeInput) (*UnlockRecipeOutput, error)
}

// Config holds the dependencies for the crafting orchestrator
type Config struct {
	Catalog     *catalog.Catalog
	Ledger      inventory.Service
	EventBus    events.EventBus
	Clock       clock.Clock
	IDGenerator idgen.Generator
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
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
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
	idGen       idgen.Generator
	progression *entities.ProgressionRecord

	// one pending craft per station
	pending map[string]*PendingCraft
}

// NewOrchestrator creates a new crafting orchestrator with the provided dependencies
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
		idGen:       cfg.IDGenerator,
		progression: cfg.Progression,
		pending:     make(map[string]*PendingCraft),
	}, nil
}

func (o *orchestrator) unlocked(recipe *entities.Recipe) bool {
	return recipe.UnlockedByDefault || o.progression.RecipeUnlocked(recipe.ID)
}

// missingRequirements returns the requirements the ledger cannot cover.
// A recipe may list the same item on several lines; stock is validated
// against the summed quantity so execution can never fail mid-removal.
func (o *orchestrator) missingRequirements(ctx context.Context, recipe *entities.Recipe) ([]MissingRequirement, error) {
	needs := make(map[string]int, len(recipe.Requirements))
	order := make([]string, 0, len(recipe.Requirements))
	for _, req := range recipe.Requirements {
		if _, seen := needs[req.ItemID]; !seen {
			order = append(order, req.ItemID)
		}
		needs[req.ItemID] += req.Quantity
	}

	var missing []MissingRequirement
	for _, itemID := range order {
		count, err := o.ledger.Count(ctx, &inventory.CountInput{ItemID: itemID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to check stock of %s", itemID)
		}
		if count.Count < needs[itemID] {
			missing = append(missing, MissingRequirement{
				ItemID:   itemID,
				Required: needs[itemID],
				Have:     count.Count,
			})
		}
	}
	return missing, nil
}

// resultHasRoom reports whether the ledger can accept the recipe result
// once the requirements are consumed. Only a non-stackable result that
// would still be owned after consumption has no room; stackable results
// overflow instead of erroring.
func (o *orchestrator) resultHasRoom(ctx context.Context, recipe *entities.Recipe) (bool, error) {
	def, err := o.catalog.Item(recipe.ResultItemID)
	if err != nil {
		return false, err
	}
	if def.Stackable {
		return true, nil
	}

	count, err := o.ledger.Count(ctx, &inventory.CountInput{ItemID: recipe.ResultItemID})
	if err != nil {
		return false, errors.Wrapf(err, "failed to check stock of %s", recipe.ResultItemID)
	}

	remaining := count.Count
	for _, req := range recipe.Requirements {
		if req.ItemID == recipe.ResultItemID {
			remaining -= req.Quantity
		}
	}
	return remaining <= 0, nil
}

func (o *orchestrator) CanCraft(ctx context.Context, input *CanCraftInput) (*CanCraftOutput, error) {
	recipe, err := o.catalog.Recipe(input.RecipeID)
	if err != nil {
		return nil, err
	}

	if !o.unlocked(recipe) {
		return &CanCraftOutput{Craftable: false, Locked: true}, nil
	}

	missing, err := o.missingRequirements(ctx, recipe)
	if err != nil {
		return nil, err
	}

	return &CanCraftOutput{
		Craftable: len(missing) == 0,
		Missing:   missing,
	}, nil
}

func (o *orchestrator) Craft(ctx context.Context, input *CraftInput) (*CraftOutput, error) {
	recipe, err := o.catalog.Recipe(input.RecipeID)
	if err != nil {
		return nil, err
	}

	station := input.StationID
	if station == "" {
		station = DefaultStation
	}

	if !o.unlocked(recipe) {
		return nil, errors.Lockedf("recipe %s is locked", recipe.ID)
	}

	missing, err := o.missingRequirements(ctx, recipe)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		short := missing[0]
		return nil, errors.InsufficientResourcef("need %d of %s, have %d",
			short.Required, short.ItemID, short.Have).
			WithMeta("recipe_id", recipe.ID).
			WithMeta("missing", missing)
	}

	if recipe.Duration > 0 {
		if _, busy := o.pending[station]; busy {
			return nil, errors.FailedPreconditionf("station %s already has a pending craft", station)
		}

		reserved := make([]entities.Requirement, len(recipe.Requirements))
		copy(reserved, recipe.Requirements)

		p := &PendingCraft{
			ID:        o.idGen.Generate(),
			RecipeID:  recipe.ID,
			StationID: station,
			Remaining: recipe.Duration,
			Reserved:  reserved,
			StartedAt: o.clock.Now(),
		}
		o.pending[station] = p

		if err := o.eventBus.Publish(ctx, events.CraftStarted{
			RecipeID:  recipe.ID,
			StationID: station,
			Duration:  recipe.Duration,
		}); err != nil {
			slog.Warn("failed to publish craft started event", "recipe_id", recipe.ID, "error", err)
		}

		slog.Info("craft pending",
			"recipe_id", recipe.ID,
			"station_id", station,
			"duration", recipe.Duration,
		)

		out := *p
		return &CraftOutput{Pending: &out}, nil
	}

	room, err := o.resultHasRoom(ctx, recipe)
	if err != nil {
		return nil, err
	}
	if !room {
		return nil, errors.CapacityExceededf("no room for craft result %s", recipe.ResultItemID).
			WithMeta("recipe_id", recipe.ID)
	}

	overflow, err := o.execute(ctx, recipe, station)
	if err != nil {
		return nil, err
	}

	return &CraftOutput{
		Completed:      true,
		ResultItemID:   recipe.ResultItemID,
		ResultQuantity: recipe.ResultQuantity,
		Overflow:       overflow,
	}, nil
}

// execute consumes the recipe's requirements and adds its result. Callers
// must have validated requirement stock and result capacity; neither the
// removals nor the add can fail in the single-threaded model.
func (o *orchestrator) execute(ctx context.Context, recipe *entities.Recipe, station string) (int, error) {
	for _, req := range recipe.Requirements {
		if _, err := o.ledger.RemoveItem(ctx, &inventory.RemoveItemInput{
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
		}); err != nil {
			return 0, errors.Wrapf(err, "failed to consume %s", req.ItemID)
		}
	}

	added, err := o.ledger.AddItem(ctx, &inventory.AddItemInput{
		ItemID:   recipe.ResultItemID,
		Quantity: recipe.ResultQuantity,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to add craft result %s", recipe.ResultItemID)
	}

	o.progression.ItemsCrafted++

	if err := o.eventBus.Publish(ctx, events.CraftCompleted{
		RecipeID:       recipe.ID,
		StationID:      station,
		ResultItemID:   recipe.ResultItemID,
		ResultQuantity: recipe.ResultQuantity,
		Overflow:       added.Overflow,
	}); err != nil {
		slog.Warn("failed to publish craft completed event", "recipe_id", recipe.ID, "error", err)
	}

	slog.Info("craft completed",
		"recipe_id", recipe.ID,
		"station_id", station,
		"result_item_id", recipe.ResultItemID,
		"result_quantity", recipe.ResultQuantity,
	)

	return added.Overflow, nil
}

func (o *orchestrator) Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error) {
	station := input.StationID
	if station == "" {
		station = DefaultStation
	}

	p, ok := o.pending[station]
	if !ok {
		return nil, errors.NotFoundf("no pending craft at station %s", station)
	}
	delete(o.pending, station)

	if err := o.eventBus.Publish(ctx, events.CraftCancelled{
		RecipeID:  p.RecipeID,
		StationID: station,
	}); err != nil {
		slog.Warn("failed to publish craft cancelled event", "recipe_id", p.RecipeID, "error", err)
	}

	return &CancelOutput{RecipeID: p.RecipeID}, nil
}

func (o *orchestrator) Tick(ctx context.Context, input *TickInput) (*TickOutput, error) {
	if input.Delta < 0 {
		return nil, errors.InvalidArgument("tick delta must not be negative")
	}

	out := &TickOutput{}

	// Stations in sorted order so tick outcomes are call-order deterministic
	stations := make([]string, 0, len(o.pending))
	for station := range o.pending {
		stations = append(stations, station)
	}
	sort.Strings(stations)

	for _, station := range stations {
		p := o.pending[station]
		p.Remaining -= input.Delta
		if p.Remaining > 0 {
			continue
		}
		delete(o.pending, station)

		recipe, err := o.catalog.Recipe(p.RecipeID)
		if err != nil {
			return nil, errors.Wrapf(err, "pending craft references unknown recipe %s", p.RecipeID)
		}

		// The reservation is a soft lock: the stock may have been spent
		// while the craft was pending, so validate once more.
		missing, err := o.missingRequirements(ctx, recipe)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			out.Failed = append(out.Failed, p.RecipeID)

			if err := o.eventBus.Publish(ctx, events.CraftFailed{
				RecipeID:  p.RecipeID,
				StationID: station,
				Reason:    "reserved materials no longer available",
			}); err != nil {
				slog.Warn("failed to publish craft failed event", "recipe_id", p.RecipeID, "error", err)
			}
			continue
		}

		room, err := o.resultHasRoom(ctx, recipe)
		if err != nil {
			return nil, err
		}
		if !room {
			out.Failed = append(out.Failed, p.RecipeID)

			if err := o.eventBus.Publish(ctx, events.CraftFailed{
				RecipeID:  p.RecipeID,
				StationID: station,
				Reason:    "no room for craft result",
			}); err != nil {
				slog.Warn("failed to publish craft failed event", "recipe_id", p.RecipeID, "error", err)
			}
			continue
		}

		if _, err := o.execute(ctx, recipe, station); err != nil {
			return nil, err
		}
		out.Completed = append(out.Completed, p.RecipeID)
	}

	return out, nil
}

func (o *orchestrator) Pending(_ context.Context, _ *PendingInput) (*PendingOutput, error) {
	crafts := make([]PendingCraft, 0, len(o.pending))
	for _, p := range o.pending {
		crafts = append(crafts, *p)
	}
	sort.Slice(crafts, func(i, j int) bool { return crafts[i].StationID < crafts[j].StationID })
	return &PendingOutput{Crafts: crafts}, nil
}

func (o *orchestrator) UnlockRecipe(ctx context.Context, input *UnlockRecipeInput) (*UnlockRecipeOutput, error) {
	recipe, err := o.catalog.Recipe(input.RecipeID)
	if err != nil {
		return nil, err
	}

	newly := o.progression.UnlockRecipe(recipe.ID)
	if newly {
		if err := o.eventBus.Publish(ctx, events.RecipeUnlocked{RecipeID: recipe.ID}); err != nil {
			slog.Warn("failed to publish recipe unlocked event", "recipe_id", recipe.ID, "error", err)
		}
		slog.Info("recipe unlocked", "recipe_id", recipe.ID)
	}

	return &UnlockRecipeOutput{NewlyUnlocked: newly}, nil
}
