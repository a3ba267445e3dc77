// Package catalog defines the read-only vehicle/parts catalog contract
// consumed by the wizard, together with its implementations.
package catalog

import (
	"context"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// Gateway answers brand/model/category/part queries. Implementations
// are read-only from the wizard's perspective. An empty result list is
// a valid, non-error response.
type Gateway interface {
	// Brands lists all known vehicle brands.
	Brands(ctx context.Context) ([]string, error)

	// Models lists the models of a brand.
	Models(ctx context.Context, brand string) ([]string, error)

	// Categories lists part categories, optionally narrowed by brand
	// and model. Empty arguments mean "no filter".
	Categories(ctx context.Context, brand, model string) ([]string, error)

	// Parts lists parts, optionally narrowed by brand, model and
	// category. Empty arguments mean "no filter".
	Parts(ctx context.Context, brand, model, category string) ([]domain.PartSummary, error)

	// Search finds parts matching the accumulated wizard selections.
	Search(ctx context.Context, vehicle domain.VehicleData, part domain.PartData) ([]domain.PartSummary, error)
}
