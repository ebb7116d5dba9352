package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
	"github.com/delveforge/delve-engine/internal/redis"
	"github.com/delveforge/delve-engine/internal/repositories/snapshot"
	"github.com/delveforge/delve-engine/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	client  redis.Client
	cleanup func()
	clock   *clock.Fixed
	repo    snapshot.Repository
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client, s.cleanup = testutils.CreateTestRedisClient(s.T())
	s.clock = &clock.Fixed{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	repo, err := snapshot.NewRedisRepository(&snapshot.Config{
		Client: s.client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) testSnapshot(profileID string) *snapshot.Snapshot {
	progression := entities.NewProgressionRecord()
	progression.CompleteDepth(1)
	progression.CompleteDepth(2)
	progression.UnlockRecipe("craft_iron_sword")
	progression.Runs = 7
	progression.Deaths = 2
	progression.EnemiesKilled = 31

	loadout := entities.NewLoadout()
	loadout.Equipment[entities.SlotWeapon] = "iron_sword"
	loadout.Consumables = []entities.ConsumableSlot{
		{ItemID: "health_potion", Quantity: 3},
	}

	return &snapshot.Snapshot{
		ProfileID: profileID,
		Stacks: []entities.ItemStack{
			{ItemID: "iron_ore", Quantity: 42},
			{ItemID: "iron_sword", Quantity: 1, Equipped: true},
		},
		Loadout:     loadout,
		Progression: progression,
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetRoundTrip() {
	saved, err := s.repo.Save(s.ctx, snapshot.SaveInput{
		Snapshot: s.testSnapshot("profile_1"),
	})
	s.Require().NoError(err)
	s.Assert().Equal(s.clock.Time, saved.SavedAt)

	got, err := s.repo.Get(s.ctx, snapshot.GetInput{ProfileID: "profile_1"})
	s.Require().NoError(err)
	s.Require().NotNil(got.Snapshot)

	snap := got.Snapshot
	s.Assert().Equal("profile_1", snap.ProfileID)
	s.Assert().Equal(s.clock.Time, snap.SavedAt)

	s.Require().Len(snap.Stacks, 2)
	s.Assert().Equal(42, snap.Stacks[0].Quantity)
	s.Assert().True(snap.Stacks[1].Equipped)

	s.Require().NotNil(snap.Loadout)
	s.Assert().Equal("iron_sword", snap.Loadout.Equipment[entities.SlotWeapon])
	s.Require().Len(snap.Loadout.Consumables, 1)

	s.Require().NotNil(snap.Progression)
	s.Assert().True(snap.Progression.DepthCompleted(2))
	s.Assert().True(snap.Progression.DepthUnlocked(3))
	s.Assert().True(snap.Progression.RecipeUnlocked("craft_iron_sword"))
	s.Assert().Equal(7, snap.Progression.Runs)
	s.Assert().Equal(31, snap.Progression.EnemiesKilled)
}

func (s *RedisRepositoryTestSuite) TestSaveReplacesPrevious() {
	_, err := s.repo.Save(s.ctx, snapshot.SaveInput{Snapshot: s.testSnapshot("profile_1")})
	s.Require().NoError(err)

	second := s.testSnapshot("profile_1")
	second.Stacks = nil
	second.Progression.Runs = 8
	s.clock.Advance(time.Hour)

	_, err = s.repo.Save(s.ctx, snapshot.SaveInput{Snapshot: second})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, snapshot.GetInput{ProfileID: "profile_1"})
	s.Require().NoError(err)
	s.Assert().Empty(got.Snapshot.Stacks)
	s.Assert().Equal(8, got.Snapshot.Progression.Runs)
	s.Assert().Equal(s.clock.Time, got.Snapshot.SavedAt)
}

func (s *RedisRepositoryTestSuite) TestGetMissingProfile() {
	_, err := s.repo.Get(s.ctx, snapshot.GetInput{ProfileID: "never_saved"})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetCorruptValue() {
	err := s.client.Set(s.ctx, "snapshot:profile_1", "{not json", 0).Err()
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, snapshot.GetInput{ProfileID: "profile_1"})
	s.Assert().True(errors.IsDataLoss(err))
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	_, err := s.repo.Save(s.ctx, snapshot.SaveInput{Snapshot: s.testSnapshot("profile_1")})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, snapshot.DeleteInput{ProfileID: "profile_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, snapshot.GetInput{ProfileID: "profile_1"})
	s.Assert().True(errors.IsNotFound(err))

	// Deleting again is not an error
	_, err = s.repo.Delete(s.ctx, snapshot.DeleteInput{ProfileID: "profile_1"})
	s.Assert().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestValidation() {
	_, err := s.repo.Get(s.ctx, snapshot.GetInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, snapshot.SaveInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.repo.Delete(s.ctx, snapshot.DeleteInput{})
	s.Assert().True(errors.IsInvalidArgument(err))
}
