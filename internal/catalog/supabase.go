package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/supabase-community/supabase-go"
)

// SupabaseGateway implements Gateway against a Supabase/PostgREST
// catalog database with brands, models, categories and parts tables.
//
// The pinned PostgREST client executes queries without a context, so
// the caller's deadline does not cancel an in-flight HTTP request;
// the engine treats a late answer for a superseded step as stale and
// discards it.
type SupabaseGateway struct {
	client *supabase.Client
}

// NewSupabase creates a catalog gateway backed by Supabase.
func NewSupabase(url, key string) (*SupabaseGateway, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	return &SupabaseGateway{client: client}, nil
}

type namedRow struct {
	Name string `json:"name"`
}

type partRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
}

// Brands lists all known vehicle brands.
func (g *SupabaseGateway) Brands(ctx context.Context) ([]string, error) {
	data, _, err := g.client.From("brands").
		Select("name", "", false).
		Order("name.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("query brands: %w", err)
	}
	return decodeNames(data, "brands")
}

// Models lists the models of a brand.
func (g *SupabaseGateway) Models(ctx context.Context, brand string) ([]string, error) {
	data, _, err := g.client.From("models").
		Select("name", "", false).
		Eq("brand", brand).
		Order("name.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	return decodeNames(data, "models")
}

// Categories lists part categories, optionally narrowed by brand and model.
func (g *SupabaseGateway) Categories(ctx context.Context, brand, model string) ([]string, error) {
	query := g.client.From("categories").Select("name", "", false)
	if brand != "" {
		query = query.Eq("brand", brand)
	}
	if model != "" {
		query = query.Eq("model", model)
	}

	data, _, err := query.Order("name.asc", nil).Execute()
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return decodeNames(data, "categories")
}

// Parts lists parts, optionally narrowed by brand, model and category.
func (g *SupabaseGateway) Parts(ctx context.Context, brand, model, category string) ([]domain.PartSummary, error) {
	query := g.client.From("parts").Select("id,name,position", "", false)
	if brand != "" {
		query = query.Eq("brand", brand)
	}
	if model != "" {
		query = query.Eq("model", model)
	}
	if category != "" {
		query = query.Eq("category", category)
	}

	data, _, err := query.Order("name.asc", nil).Execute()
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}

	var rows []partRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse parts: %w", err)
	}

	parts := make([]domain.PartSummary, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, domain.PartSummary{ID: row.ID, Name: row.Name, Position: row.Position})
	}
	return parts, nil
}

// Search finds parts matching the accumulated wizard selections.
func (g *SupabaseGateway) Search(ctx context.Context, vehicle domain.VehicleData, part domain.PartData) ([]domain.PartSummary, error) {
	return g.Parts(ctx, vehicle.Brand, vehicle.Model, part.Category)
}

func decodeNames(data []byte, what string) ([]string, error) {
	var rows []namedRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", what, err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}
