package entities

import (
	"encoding/json"
	"sort"
)

// ProgressionRecord accumulates durable statistics across missions. It is
// owned by the mission driver's lifecycle and outlives individual runs;
// the snapshot repository persists it between sessions.
type ProgressionRecord struct {
	CompletedDepths map[int]struct{}    `json:"-"`
	UnlockedDepths  map[int]struct{}    `json:"-"`
	UnlockedRecipes map[string]struct{} `json:"-"`

	Deaths        int `json:"deaths"`
	Runs          int `json:"runs"`
	DeepestDepth  int `json:"deepest_depth"`
	EnemiesKilled int `json:"enemies_killed"`
	ItemsCrafted  int `json:"items_crafted"`
}

// progressionJSON is the wire form of a ProgressionRecord. The set fields
// serialize as sorted lists so encoded snapshots are stable.
type progressionJSON struct {
	CompletedDepths []int    `json:"completed_depths"`
	UnlockedDepths  []int    `json:"unlocked_depths"`
	UnlockedRecipes []string `json:"unlocked_recipes"`

	Deaths        int `json:"deaths"`
	Runs          int `json:"runs"`
	DeepestDepth  int `json:"deepest_depth"`
	EnemiesKilled int `json:"enemies_killed"`
	ItemsCrafted  int `json:"items_crafted"`
}

// MarshalJSON implements json.Marshaler
func (p *ProgressionRecord) MarshalJSON() ([]byte, error) {
	out := progressionJSON{
		CompletedDepths: sortedInts(p.CompletedDepths),
		UnlockedDepths:  sortedInts(p.UnlockedDepths),
		UnlockedRecipes: sortedStrings(p.UnlockedRecipes),
		Deaths:          p.Deaths,
		Runs:            p.Runs,
		DeepestDepth:    p.DeepestDepth,
		EnemiesKilled:   p.EnemiesKilled,
		ItemsCrafted:    p.ItemsCrafted,
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Depth 1 stays unlocked even
// for records persisted before any progress.
func (p *ProgressionRecord) UnmarshalJSON(data []byte) error {
	var in progressionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	fresh := NewProgressionRecord()
	for _, depth := range in.CompletedDepths {
		fresh.CompletedDepths[depth] = struct{}{}
	}
	for _, depth := range in.UnlockedDepths {
		fresh.UnlockedDepths[depth] = struct{}{}
	}
	for _, recipeID := range in.UnlockedRecipes {
		fresh.UnlockedRecipes[recipeID] = struct{}{}
	}
	fresh.Deaths = in.Deaths
	fresh.Runs = in.Runs
	fresh.DeepestDepth = in.DeepestDepth
	fresh.EnemiesKilled = in.EnemiesKilled
	fresh.ItemsCrafted = in.ItemsCrafted

	*p = *fresh
	return nil
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NewProgressionRecord returns an empty record with depth 1 unlocked
func NewProgressionRecord() *ProgressionRecord {
	return &ProgressionRecord{
		CompletedDepths: make(map[int]struct{}),
		UnlockedDepths:  map[int]struct{}{1: {}},
		UnlockedRecipes: make(map[string]struct{}),
	}
}

// CompleteDepth records a successful clear of the given depth and unlocks
// the next one
func (p *ProgressionRecord) CompleteDepth(depth int) {
	p.CompletedDepths[depth] = struct{}{}
	p.UnlockedDepths[depth] = struct{}{}
	p.UnlockedDepths[depth+1] = struct{}{}
	if depth > p.DeepestDepth {
		p.DeepestDepth = depth
	}
}

// DepthCompleted reports whether the depth has been cleared
func (p *ProgressionRecord) DepthCompleted(depth int) bool {
	_, ok := p.CompletedDepths[depth]
	return ok
}

// DepthUnlocked reports whether the depth may be entered
func (p *ProgressionRecord) DepthUnlocked(depth int) bool {
	_, ok := p.UnlockedDepths[depth]
	return ok
}

// UnlockRecipe records a recipe unlock. Unlocking is one-way; the return
// value reports whether this call was the first unlock.
func (p *ProgressionRecord) UnlockRecipe(recipeID string) bool {
	if _, ok := p.UnlockedRecipes[recipeID]; ok {
		return false
	}
	p.UnlockedRecipes[recipeID] = struct{}{}
	return true
}

// RecipeUnlocked reports whether the recipe has been unlocked
func (p *ProgressionRecord) RecipeUnlocked(recipeID string) bool {
	_, ok := p.UnlockedRecipes[recipeID]
	return ok
}
