package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

// Pattern is a hand-researched or auto-discovered relationship between
// two markets whose outcomes are known to be linked.
type Pattern struct {
	Name      string          `json:"name"`
	SearchA   string          `json:"search_a"`
	SearchB   string          `json:"search_b"`
	HedgeType domain.HedgeType `json:"hedge_type"`
	Desc      string          `json:"desc"`
}

// knownPatterns are the hand-curated relationships seeded into every
// run before any discovered patterns are loaded.
var knownPatterns = []Pattern{
	{
		Name: "Fed Rates: Decrease vs Increase", SearchA: "Fed decrease interest rates",
		SearchB: "Fed increase interest rates", HedgeType: domain.HedgeComplementary,
		Desc: "Fed can decrease OR increase. Buy YES decrease + NO increase.",
	},
	{
		Name: "Fed Rates: No Change vs Increase", SearchA: "no change in Fed interest rates",
		SearchB: "Fed increase interest rates", HedgeType: domain.HedgeComplementary,
		Desc: "If Fed doesn't change, they won't increase.",
	},
	{
		Name: "Trump Nom: Shelton vs No One", SearchA: "Trump nominate Judy Shelton",
		SearchB: "Trump nominate no one", HedgeType: domain.HedgeExclusive,
		Desc: "Can't nominate Shelton AND no one at the same time.",
	},
	{
		Name: "Trump Nom: Miran vs No One", SearchA: "Trump nominate Stephen Miran",
		SearchB: "Trump nominate no one", HedgeType: domain.HedgeExclusive,
		Desc: "Can't nominate Miran AND no one at the same time.",
	},
	{
		Name: "Iran Strike Timeframe", SearchA: "strikes Iran by February",
		SearchB: "strikes Iran by March", HedgeType: domain.HedgeSuperset,
		Desc: "Strike by Feb implies strike by March too. Hedge: YES(March) + NO(Feb).",
	},
}

// DiscoveredPatternStore persists operator- or tool-discovered
// patterns to a JSON file alongside the fixed known-pattern table, so
// restarts don't lose them.
type DiscoveredPatternStore struct {
	path string
}

// NewDiscoveredPatternStore points at the JSON file used to persist
// discovered patterns. path may not yet exist.
func NewDiscoveredPatternStore(path string) *DiscoveredPatternStore {
	return &DiscoveredPatternStore{path: path}
}

// Load reads previously discovered patterns, returning an empty slice
// if the file does not exist yet.
func (d *DiscoveredPatternStore) Load() ([]Pattern, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanner.DiscoveredPatternStore.Load: %w", err)
	}
	var patterns []Pattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("scanner.DiscoveredPatternStore.Load: parse: %w", err)
	}
	return patterns, nil
}

// Save appends pattern to the discovered-patterns file, creating the
// parent directory and file on first use.
func (d *DiscoveredPatternStore) Save(pattern Pattern) error {
	existing, err := d.Load()
	if err != nil {
		return err
	}
	existing = append(existing, pattern)

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("scanner.DiscoveredPatternStore.Save: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("scanner.DiscoveredPatternStore.Save: marshal: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("scanner.DiscoveredPatternStore.Save: write: %w", err)
	}
	return nil
}
