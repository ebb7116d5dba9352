// Package loot implements depth-scaled probabilistic drop generation.
//
// Every random value is drawn through a single dice.Roller, so a seeded
// roller reproduces an identical drop sequence for a fixed table and depth.
// Entries roll independent Bernoulli trials; table-level min/max drop
// bounds are enforced deterministically afterwards.
package loot

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
)

// chanceScale is the resolution of Bernoulli trials: a chance of p succeeds
// when a roll on a chanceScale-sided die lands at or below p*chanceScale.
const chanceScale = 1_000_000

// Service defines the interface for loot generation
type Service interface {
	// Generate computes a drop set for the table at the given floor depth.
	// Returns errors.NotFound when the table or floor config is unknown.
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
}

// Config holds the dependencies for the loot orchestrator
type Config struct {
	Catalog  *catalog.Catalog
	EventBus events.EventBus
	Roller   dice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type orchestrator struct {
	catalog  *catalog.Catalog
	eventBus events.EventBus
	roller   dice.Roller
}

// NewOrchestrator creates a new loot orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		catalog:  cfg.Catalog,
		eventBus: cfg.EventBus,
		roller:   cfg.Roller,
	}, nil
}

// EffectiveChance scales a base chance by floor depth and clamps it to
// [0, 1]. The multiplier 1 + scaling*depth is monotonically non-decreasing
// in depth for non-negative scaling.
func EffectiveChance(baseChance, scaling float64, depth int) float64 {
	chance := baseChance * (1 + scaling*float64(depth))
	if chance < 0 {
		return 0
	}
	if chance > 1 {
		return 1
	}
	return chance
}

// skippedEntry is an eligible entry whose Bernoulli trial failed; the pool
// min-drop padding draws from.
type skippedEntry struct {
	entry  entities.LootEntry
	chance float64
	index  int
}

// rolledDrop tracks a drop with the bookkeeping truncation needs
type rolledDrop struct {
	drop       Drop
	guaranteed bool
	rarity     entities.Rarity
	index      int
}

func (o *orchestrator) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	table, err := o.catalog.LootTable(input.TableID)
	if err != nil {
		return nil, err
	}
	floor, err := o.catalog.Floor(input.FloorDepth)
	if err != nil {
		return nil, err
	}

	roller := input.Roller
	if roller == nil {
		roller = o.roller
	}

	var drops []rolledDrop
	var skipped []skippedEntry

	for i, entry := range table.Entries {
		// The floor's loot tier gates which rarities may drop at all
		if !floor.LootTier.AtLeast(entry.MinRarity) {
			continue
		}

		def, err := o.catalog.Item(entry.ItemID)
		if err != nil {
			return nil, errors.Wrapf(err, "loot entry references unknown item %s", entry.ItemID)
		}

		if entry.Guaranteed {
			qty, err := o.sampleQuantity(roller, entry)
			if err != nil {
				return nil, err
			}
			drops = append(drops, rolledDrop{
				drop:       Drop{ItemID: entry.ItemID, Quantity: qty},
				guaranteed: true,
				rarity:     def.Rarity,
				index:      i,
			})
			continue
		}

		chance := EffectiveChance(entry.BaseChance, floor.DropRateScaling, input.FloorDepth)
		roll, err := roller.Roll(chanceScale)
		if err != nil {
			return nil, errors.Wrap(err, "loot chance roll failed")
		}

		if float64(roll) > chance*chanceScale {
			skipped = append(skipped, skippedEntry{entry: entry, chance: chance, index: i})
			continue
		}

		qty, err := o.sampleQuantity(roller, entry)
		if err != nil {
			return nil, err
		}
		drops = append(drops, rolledDrop{
			drop:   Drop{ItemID: entry.ItemID, Quantity: qty},
			rarity: def.Rarity,
			index:  i,
		})
	}

	drops, err = o.padToMinDrops(roller, table, drops, skipped)
	if err != nil {
		return nil, err
	}
	drops = truncateToMaxDrops(table, drops)

	out := make([]Drop, len(drops))
	eventDrops := make([]events.Drop, len(drops))
	for i, d := range drops {
		out[i] = d.drop
		eventDrops[i] = events.Drop{ItemID: d.drop.ItemID, Quantity: d.drop.Quantity}
	}

	if err := o.eventBus.Publish(ctx, events.LootGenerated{
		TableID:    table.ID,
		FloorDepth: input.FloorDepth,
		Drops:      eventDrops,
	}); err != nil {
		slog.Warn("failed to publish loot generated event", "table_id", table.ID, "error", err)
	}

	slog.Info("loot generated",
		"table_id", table.ID,
		"floor_depth", input.FloorDepth,
		"drops", len(out),
	)

	return &GenerateOutput{Drops: out}, nil
}

func (o *orchestrator) sampleQuantity(roller dice.Roller, entry entities.LootEntry) (int, error) {
	spread := entry.MaxQuantity - entry.MinQuantity
	if spread == 0 {
		return entry.MinQuantity, nil
	}
	roll, err := roller.Roll(spread + 1)
	if err != nil {
		return 0, errors.Wrap(err, "loot quantity roll failed")
	}
	return entry.MinQuantity + roll - 1, nil
}

// padToMinDrops forces entries that failed their trial, cheapest effective
// chance first, until the table's drop floor is met
func (o *orchestrator) padToMinDrops(
	roller dice.Roller,
	table *entities.LootTable,
	drops []rolledDrop,
	skipped []skippedEntry,
) ([]rolledDrop, error) {
	if len(drops) >= table.MinDrops {
		return drops, nil
	}

	sort.SliceStable(skipped, func(i, j int) bool {
		if skipped[i].chance != skipped[j].chance {
			return skipped[i].chance < skipped[j].chance
		}
		return skipped[i].index < skipped[j].index
	})

	for _, sk := range skipped {
		if len(drops) >= table.MinDrops {
			break
		}
		def, err := o.catalog.Item(sk.entry.ItemID)
		if err != nil {
			return nil, errors.Wrapf(err, "loot entry references unknown item %s", sk.entry.ItemID)
		}
		qty, err := o.sampleQuantity(roller, sk.entry)
		if err != nil {
			return nil, err
		}
		drops = append(drops, rolledDrop{
			drop:   Drop{ItemID: sk.entry.ItemID, Quantity: qty},
			rarity: def.Rarity,
			index:  sk.index,
		})
	}

	return drops, nil
}

// truncateToMaxDrops removes lowest-rarity non-guaranteed drops, newest
// first within a rarity, until the table's ceiling is met. Guaranteed
// drops are never removed.
func truncateToMaxDrops(table *entities.LootTable, drops []rolledDrop) []rolledDrop {
	if table.MaxDrops <= 0 || len(drops) <= table.MaxDrops {
		return drops
	}

	excess := len(drops) - table.MaxDrops

	removable := make([]int, 0, len(drops))
	for i, d := range drops {
		if !d.guaranteed {
			removable = append(removable, i)
		}
	}
	sort.SliceStable(removable, func(a, b int) bool {
		da, db := drops[removable[a]], drops[removable[b]]
		if da.rarity.Tier() != db.rarity.Tier() {
			return da.rarity.Tier() < db.rarity.Tier()
		}
		return removable[a] > removable[b]
	})

	if excess > len(removable) {
		excess = len(removable)
	}
	cut := make(map[int]struct{}, excess)
	for _, idx := range removable[:excess] {
		cut[idx] = struct{}{}
	}

	kept := drops[:0]
	for i, d := range drops {
		if _, dropIt := cut[i]; !dropIt {
			kept = append(kept, d)
		}
	}
	return kept
}
