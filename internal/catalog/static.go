package catalog

import (
	"context"
	"sync"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// StaticEntry describes one part in a static catalog fixture.
type StaticEntry struct {
	Brand    string
	Model    string
	Category string
	Part     domain.PartSummary
}

// StaticGateway implements Gateway over a fixed in-memory data set. It
// backs local development when no catalog database is configured, and
// doubles as a test fixture. Entries can be swapped at runtime to
// simulate catalog changes between render and click.
type StaticGateway struct {
	mu      sync.RWMutex
	entries []StaticEntry
}

// NewStatic creates a static catalog from the given entries.
func NewStatic(entries []StaticEntry) *StaticGateway {
	return &StaticGateway{entries: entries}
}

// NewStaticDemo creates a static catalog with a small demo data set.
func NewStaticDemo() *StaticGateway {
	return NewStatic([]StaticEntry{
		{Brand: "Chery", Model: "Tiggo8", Category: "Brakes", Part: domain.PartSummary{ID: "PAD-001", Name: "Front brake pads", Position: "Front"}},
		{Brand: "Chery", Model: "Tiggo8", Category: "Brakes", Part: domain.PartSummary{ID: "PAD-002", Name: "Rear brake pads", Position: "Rear"}},
		{Brand: "Chery", Model: "Tiggo8", Category: "Filters", Part: domain.PartSummary{ID: "FLT-010", Name: "Oil filter"}},
		{Brand: "Chery", Model: "Arrizo5", Category: "Suspension", Part: domain.PartSummary{ID: "SHK-120", Name: "Front shock absorber", Position: "Front"}},
		{Brand: "JAC", Model: "S5", Category: "Brakes", Part: domain.PartSummary{ID: "DSC-310", Name: "Brake disc", Position: "Front"}},
		{Brand: "JAC", Model: "S5", Category: "Electrical", Part: domain.PartSummary{ID: "ALT-400", Name: "Alternator"}},
	})
}

// Replace swaps the catalog contents.
func (g *StaticGateway) Replace(entries []StaticEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = entries
}

// Brands lists all known vehicle brands.
func (g *StaticGateway) Brands(ctx context.Context) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return collect(g.entries, func(e StaticEntry) string { return e.Brand }), nil
}

// Models lists the models of a brand.
func (g *StaticGateway) Models(ctx context.Context, brand string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return collect(filter(g.entries, brand, "", ""), func(e StaticEntry) string { return e.Model }), nil
}

// Categories lists part categories, optionally narrowed by brand and model.
func (g *StaticGateway) Categories(ctx context.Context, brand, model string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return collect(filter(g.entries, brand, model, ""), func(e StaticEntry) string { return e.Category }), nil
}

// Parts lists parts, optionally narrowed by brand, model and category.
func (g *StaticGateway) Parts(ctx context.Context, brand, model, category string) ([]domain.PartSummary, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	matched := filter(g.entries, brand, model, category)
	parts := make([]domain.PartSummary, 0, len(matched))
	for _, e := range matched {
		parts = append(parts, e.Part)
	}
	return parts, nil
}

// Search finds parts matching the accumulated wizard selections.
func (g *StaticGateway) Search(ctx context.Context, vehicle domain.VehicleData, part domain.PartData) ([]domain.PartSummary, error) {
	return g.Parts(ctx, vehicle.Brand, vehicle.Model, part.Category)
}

func filter(entries []StaticEntry, brand, model, category string) []StaticEntry {
	var matched []StaticEntry
	for _, e := range entries {
		if brand != "" && e.Brand != brand {
			continue
		}
		if model != "" && e.Model != model {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

func collect(entries []StaticEntry, key func(StaticEntry) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, e := range entries {
		v := key(e)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
