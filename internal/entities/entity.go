package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// Compile-time check that catalog entities implement core.Entity
var (
	_ core.Entity = (*ItemDefinition)(nil)
	_ core.Entity = (*Recipe)(nil)
	_ core.Entity = (*LootTable)(nil)
	_ core.Entity = (*TaskDefinition)(nil)
)
