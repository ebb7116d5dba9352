package loot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/loot"
	"github.com/delveforge/delve-engine/internal/pkg/roller"
)

const testCatalogJSON = `{
	"items": [
		{"id": "iron_ore", "name": "Iron Ore", "stackable": true, "max_stack_size": 99, "rarity": "RARITY_COMMON", "category": "CATEGORY_NONE"},
		{"id": "slime_gel", "name": "Slime Gel", "stackable": true, "max_stack_size": 99, "rarity": "RARITY_COMMON", "category": "CATEGORY_NONE"},
		{"id": "iron_sword", "name": "Iron Sword", "stackable": false, "rarity": "RARITY_UNCOMMON", "category": "CATEGORY_WEAPON"},
		{"id": "dragon_scale", "name": "Dragon Scale", "stackable": true, "max_stack_size": 10, "rarity": "RARITY_EPIC", "category": "CATEGORY_NONE"},
		{"id": "torch", "name": "Torch", "stackable": true, "max_stack_size": 20, "rarity": "RARITY_COMMON", "category": "CATEGORY_NONE"}
	],
	"loot_tables": [
		{"id": "cavern", "entries": [
			{"item_id": "slime_gel", "base_chance": 0.8, "min_quantity": 1, "max_quantity": 3, "min_rarity": "RARITY_COMMON"},
			{"item_id": "iron_ore", "base_chance": 0.3, "min_quantity": 1, "max_quantity": 2, "min_rarity": "RARITY_COMMON"},
			{"item_id": "dragon_scale", "base_chance": 0.5, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_EPIC"},
			{"item_id": "torch", "base_chance": 0, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON", "guaranteed": true}
		]},
		{"id": "padded", "min_drops": 3, "entries": [
			{"item_id": "slime_gel", "base_chance": 0, "min_quantity": 2, "max_quantity": 2, "min_rarity": "RARITY_COMMON"},
			{"item_id": "iron_ore", "base_chance": 0, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON"},
			{"item_id": "torch", "base_chance": 0, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON", "guaranteed": true}
		]},
		{"id": "capped", "max_drops": 2, "entries": [
			{"item_id": "slime_gel", "base_chance": 1, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON"},
			{"item_id": "iron_ore", "base_chance": 1, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON"},
			{"item_id": "iron_sword", "base_chance": 1, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON"},
			{"item_id": "torch", "base_chance": 0, "min_quantity": 1, "max_quantity": 1, "min_rarity": "RARITY_COMMON", "guaranteed": true}
		]}
	],
	"floors": [
		{"depth": 1, "loot_tier": "RARITY_RARE", "drop_rate_scaling": 0.05},
		{"depth": 5, "loot_tier": "RARITY_RARE", "drop_rate_scaling": 0.05},
		{"depth": 9, "loot_tier": "RARITY_LEGENDARY", "drop_rate_scaling": 0.05}
	]
}`

type LootTestSuite struct {
	suite.Suite
	ctx       context.Context
	bus       *events.Bus
	generator loot.Service
}

func TestLootSuite(t *testing.T) {
	suite.Run(t, new(LootTestSuite))
}

func (s *LootTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = events.NewBus()

	cat, err := catalog.Load([]byte(testCatalogJSON))
	s.Require().NoError(err)

	generator, err := loot.NewOrchestrator(&loot.Config{
		Catalog:  cat,
		EventBus: s.bus,
		Roller:   roller.NewSeeded(1),
	})
	s.Require().NoError(err)
	s.generator = generator
}

func (s *LootTestSuite) TestFixedSeedReproducesIdenticalDrops() {
	first, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
		TableID:    "cavern",
		FloorDepth: 5,
		Roller:     roller.NewSeeded(42),
	})
	s.Require().NoError(err)

	for i := 0; i < 5; i++ {
		again, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
			TableID:    "cavern",
			FloorDepth: 5,
			Roller:     roller.NewSeeded(42),
		})
		s.Require().NoError(err)
		s.Assert().Equal(first.Drops, again.Drops)
	}
}

func (s *LootTestSuite) TestRarityGateSkipsEntries() {
	// Tier RARITY_RARE at depth 5: the epic dragon scale never rolls
	for seed := int64(0); seed < 20; seed++ {
		out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
			TableID:    "cavern",
			FloorDepth: 5,
			Roller:     roller.NewSeeded(seed),
		})
		s.Require().NoError(err)
		for _, d := range out.Drops {
			s.Assert().NotEqual("dragon_scale", d.ItemID)
		}
	}
}

func (s *LootTestSuite) TestGuaranteedEntryAlwaysDrops() {
	for seed := int64(0); seed < 20; seed++ {
		out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
			TableID:    "cavern",
			FloorDepth: 1,
			Roller:     roller.NewSeeded(seed),
		})
		s.Require().NoError(err)

		var sawTorch bool
		for _, d := range out.Drops {
			if d.ItemID == "torch" {
				sawTorch = true
			}
		}
		s.Assert().True(sawTorch, "guaranteed entry must always be appended")
	}
}

func (s *LootTestSuite) TestQuantitiesWithinBounds() {
	for seed := int64(0); seed < 50; seed++ {
		out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
			TableID:    "cavern",
			FloorDepth: 9,
			Roller:     roller.NewSeeded(seed),
		})
		s.Require().NoError(err)
		for _, d := range out.Drops {
			switch d.ItemID {
			case "slime_gel":
				s.Assert().GreaterOrEqual(d.Quantity, 1)
				s.Assert().LessOrEqual(d.Quantity, 3)
			case "iron_ore":
				s.Assert().GreaterOrEqual(d.Quantity, 1)
				s.Assert().LessOrEqual(d.Quantity, 2)
			default:
				s.Assert().Equal(1, d.Quantity)
			}
		}
	}
}

func (s *LootTestSuite) TestMinDropsForcesSkippedEntries() {
	// All chances are zero, so every non-guaranteed entry fails its trial;
	// min_drops 3 forces both back in alongside the guaranteed torch
	out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
		TableID:    "padded",
		FloorDepth: 1,
		Roller:     roller.NewSeeded(7),
	})
	s.Require().NoError(err)
	s.Require().Len(out.Drops, 3)

	got := map[string]int{}
	for _, d := range out.Drops {
		got[d.ItemID] = d.Quantity
	}
	s.Assert().Equal(1, got["torch"])
	s.Assert().Equal(2, got["slime_gel"])
	s.Assert().Equal(1, got["iron_ore"])
}

func (s *LootTestSuite) TestMaxDropsTruncatesLowestRarityFirst() {
	// Three certain drops plus a guaranteed torch against max_drops 2:
	// guaranteed survives unconditionally, and the uncommon sword outranks
	// the common entries
	out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
		TableID:    "capped",
		FloorDepth: 1,
		Roller:     roller.NewSeeded(3),
	})
	s.Require().NoError(err)
	s.Require().Len(out.Drops, 2)

	ids := map[string]bool{}
	for _, d := range out.Drops {
		ids[d.ItemID] = true
	}
	s.Assert().True(ids["torch"], "guaranteed drop preserved")
	s.Assert().True(ids["iron_sword"], "highest rarity survives truncation")
}

func (s *LootTestSuite) TestGenerateUnknownTableOrFloor() {
	_, err := s.generator.Generate(s.ctx, &loot.GenerateInput{TableID: "ghost", FloorDepth: 1})
	s.Assert().True(errors.IsNotFound(err))

	_, err = s.generator.Generate(s.ctx, &loot.GenerateInput{TableID: "cavern", FloorDepth: 42})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *LootTestSuite) TestGeneratePublishesEvent() {
	var published []events.LootGenerated
	s.bus.SubscribeFunc(events.TypeLootGenerated, func(_ context.Context, e events.Event) error {
		published = append(published, e.(events.LootGenerated))
		return nil
	})

	out, err := s.generator.Generate(s.ctx, &loot.GenerateInput{
		TableID:    "cavern",
		FloorDepth: 1,
		Roller:     roller.NewSeeded(11),
	})
	s.Require().NoError(err)

	s.Require().Len(published, 1)
	s.Assert().Equal("cavern", published[0].TableID)
	s.Assert().Len(published[0].Drops, len(out.Drops))
}

func TestEffectiveChance(t *testing.T) {
	// Base 0.10 with scaling 0.05 at depth 5: 0.10 * 1.25 = 0.125
	assert.InDelta(t, 0.125, loot.EffectiveChance(0.10, 0.05, 5), 1e-9)

	// Clamped to [0, 1]
	assert.Equal(t, 1.0, loot.EffectiveChance(0.9, 0.5, 100))
	assert.Equal(t, 0.0, loot.EffectiveChance(0, 0.5, 100))

	// Monotonically non-decreasing in depth
	prev := 0.0
	for depth := 0; depth <= 200; depth++ {
		chance := loot.EffectiveChance(0.10, 0.05, depth)
		assert.GreaterOrEqual(t, chance, prev)
		assert.LessOrEqual(t, chance, 1.0)
		prev = chance
	}
}
