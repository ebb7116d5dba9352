package tasks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
	inventorymock "github.com/delveforge/delve-engine/internal/orchestrators/inventory/mock"
	"github.com/delveforge/delve-engine/internal/orchestrators/tasks"
)

// RewardFailureTestSuite uses a mocked ledger to exercise reward payout
// failure paths that the real ledger cannot produce
type RewardFailureTestSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	mockLedger *inventorymock.MockService
	tracker    tasks.Service
}

func TestRewardFailureSuite(t *testing.T) {
	suite.Run(t, new(RewardFailureTestSuite))
}

func (s *RewardFailureTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockLedger = inventorymock.NewMockService(s.ctrl)

	cat, err := catalog.Load([]byte(testCatalogJSON))
	s.Require().NoError(err)

	tracker, err := tasks.NewOrchestrator(&tasks.Config{
		Catalog:     cat,
		Ledger:      s.mockLedger,
		EventBus:    events.NewBus(),
		Progression: entities.NewProgressionRecord(),
	})
	s.Require().NoError(err)
	s.tracker = tracker
}

func (s *RewardFailureTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RewardFailureTestSuite) TestCompletionSurvivesRewardError() {
	_, err := s.tracker.Initialize(s.ctx, &tasks.InitializeInput{
		DefinitionIDs: []string{"kill_slimes"},
	})
	s.Require().NoError(err)

	s.mockLedger.EXPECT().
		AddItem(s.ctx, &inventory.AddItemInput{ItemID: "gold_coin", Quantity: 25}).
		Return(nil, errors.Internal("ledger unavailable"))

	out, err := s.tracker.UpdateProgress(s.ctx, &tasks.UpdateProgressInput{
		Type:     entities.TaskKill,
		TargetID: "slime",
		Amount:   5,
	})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"kill_slimes"}, out.Completed)

	// The task stays terminal even though the payout was dropped
	listed, err := s.tracker.Tasks(s.ctx, &tasks.TasksInput{})
	s.Require().NoError(err)
	s.Assert().Equal(entities.TaskComplete, listed.Tasks[0].Status)
}
