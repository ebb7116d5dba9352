// Package snapshot provides repository interface and types for persisted
// profile state: ledger stacks, loadout, and the progression record.
package snapshot

import (
	"context"
	"time"

	"github.com/delveforge/delve-engine/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=snapshotmock github.com/delveforge/delve-engine/internal/repositories/snapshot Repository

// Snapshot is the persisted state of one profile
type Snapshot struct {
	// Profile that owns this snapshot
	ProfileID string `json:"profile_id"`

	// Ledger contents at save time
	Stacks []entities.ItemStack `json:"stacks"`

	// Equipment mapping and consumable reservations
	Loadout *entities.Loadout `json:"loadout"`

	// Lifetime statistics and unlocks
	Progression *entities.ProgressionRecord `json:"progression"`

	// When this snapshot was written
	SavedAt time.Time `json:"saved_at"`
}

// GetInput contains parameters for retrieving a snapshot
type GetInput struct {
	ProfileID string
}

// GetOutput contains the result of retrieving a snapshot
type GetOutput struct {
	Snapshot *Snapshot
}

// SaveInput contains parameters for storing a snapshot
type SaveInput struct {
	Snapshot *Snapshot
}

// SaveOutput contains the result of storing a snapshot
type SaveOutput struct {
	SavedAt time.Time
}

// DeleteInput contains parameters for deleting a snapshot
type DeleteInput struct {
	ProfileID string
}

// DeleteOutput contains the result of deleting a snapshot
type DeleteOutput struct{}

// Repository defines the interface for snapshot storage operations
type Repository interface {
	// Get retrieves a profile's snapshot. Returns errors.NotFound when
	// the profile has never been saved and errors.DataLoss when the
	// stored value cannot be decoded.
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save stores a profile's snapshot, replacing any previous one
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Delete removes a profile's snapshot. Deleting an absent snapshot
	// is not an error.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
