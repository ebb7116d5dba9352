package loot

import "github.com/KirkDiggler/rpg-toolkit/dice"

// Drop is one generated loot result
type Drop struct {
	ItemID   string
	Quantity int
}

// GenerateInput defines the input for a loot roll. Roller overrides the
// configured roller for this call; supplying a seeded roller makes the
// drop list reproducible.
type GenerateInput struct {
	TableID    string
	FloorDepth int
	Roller     dice.Roller
}

// GenerateOutput defines the output for a loot roll
type GenerateOutput struct {
	Drops []Drop
}
