package catalog

import (
	"context"
	"testing"

	"github.com/oshaghisina/partswizard/internal/domain"
)

func TestStaticGateway_Brands(t *testing.T) {
	g := NewStaticDemo()

	brands, err := g.Brands(context.Background())
	if err != nil {
		t.Fatalf("Brands failed: %v", err)
	}
	if len(brands) != 2 {
		t.Fatalf("Expected 2 brands, got %v", brands)
	}
	if brands[0] != "Chery" || brands[1] != "JAC" {
		t.Errorf("Unexpected brands: %v", brands)
	}
}

func TestStaticGateway_ModelsFiltersByBrand(t *testing.T) {
	g := NewStaticDemo()

	models, err := g.Models(context.Background(), "Chery")
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(models) != 2 {
		t.Errorf("Expected 2 Chery models, got %v", models)
	}

	models, err = g.Models(context.Background(), "Unknown")
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("Expected no models for unknown brand, got %v", models)
	}
}

func TestStaticGateway_SearchUsesAccumulatedSelections(t *testing.T) {
	g := NewStaticDemo()

	parts, err := g.Search(context.Background(),
		domain.VehicleData{Brand: "Chery", Model: "Tiggo8"},
		domain.PartData{Category: "Brakes"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("Expected 2 brake parts, got %v", parts)
	}
	if parts[0].ID != "PAD-001" {
		t.Errorf("Unexpected first part: %+v", parts[0])
	}
}

func TestStaticGateway_ReplaceSimulatesCatalogChange(t *testing.T) {
	g := NewStaticDemo()

	g.Replace(nil)

	parts, err := g.Parts(context.Background(), "Chery", "Tiggo8", "Brakes")
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(parts) != 0 {
		t.Errorf("Expected empty catalog after replace, got %v", parts)
	}
}
