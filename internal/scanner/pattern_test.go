package scanner

import (
	"context"
	"os"
	"testing"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

func TestPatternScannerEvaluatesComplementary(t *testing.T) {
	a := domain.Market{ID: "a", Question: "Fed decreases rates", YesPrice: 0.40, NoPrice: 0.60, YesToken: "ya", NoToken: "na"}
	b := domain.Market{ID: "b", Question: "Fed increases rates", YesPrice: 0.40, NoPrice: 0.60, YesToken: "yb", NoToken: "nb"}

	gw := &fakeGateway{searchByTerm: map[string][]domain.Market{
		"Fed decrease interest rates": {a},
		"Fed increase interest rates": {b},
	}}

	store := NewDiscoveredPatternStore(filepathJoinTemp(t))
	s, err := NewPatternScanner(gw, testEcon(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opps, checked, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checked != len(knownPatterns) {
		t.Fatalf("expected %d patterns checked, got %d", len(knownPatterns), checked)
	}

	var found bool
	for _, o := range opps {
		if o.HedgeType == domain.HedgeComplementary {
			found = true
			if o.TotalCost != 0.8 {
				t.Fatalf("expected total cost 0.8, got %f", o.TotalCost)
			}
		}
	}
	if !found {
		t.Fatal("expected a complementary opportunity for the Fed Rates pattern")
	}
}

func TestDiscoveredPatternStoreRoundTrip(t *testing.T) {
	path := filepathJoinTemp(t)
	store := NewDiscoveredPatternStore(path)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error loading empty store: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty store, got %d", len(loaded))
	}

	p := Pattern{Name: "Test Pattern", SearchA: "a", SearchB: "b", HedgeType: domain.HedgeExclusive}
	if err := store.Save(p); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Test Pattern" {
		t.Fatalf("unexpected loaded patterns: %+v", loaded)
	}
}

func filepathJoinTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return dir + string(os.PathSeparator) + "discovered_patterns.json"
}
