package core

// lookups.go is the reference resolver: one snapshot of the tenant/company
// scoped lookup tables, loaded before reconciliation starts. The snapshot
// exposes pure membership checks and raises no errors itself; the engine
// decides how to react to a missing id.

import (
	"context"
	"fmt"
)

// LookupSets holds the valid id sets of every reference table.
type LookupSets struct {
	Types         map[int64]struct{}
	Kinds         map[int64]struct{}
	Units         map[int64]struct{}
	Categories    map[int64]struct{}
	Subcategories map[int64]struct{}
	Brands        map[int64]struct{}
}

// CatalogReader loads the scoped reference data an import validates against.
// Implemented by the database store; faked in tests.
type CatalogReader interface {
	LoadLookups(ctx context.Context, tenant, company int64) (LookupSets, error)
	LoadProductsBySCU(ctx context.Context, tenant int64) (map[string]ExistingProduct, error)
	LoadAttributeDefs(ctx context.Context, tenant, company int64) ([]AttributeDef, error)
}

// RefContext is the loaded reference snapshot for one import run.
type RefContext struct {
	Lookups  LookupSets
	Existing map[string]ExistingProduct
	Defs     []AttributeDef

	defsByName map[string][]AttributeDef
}

// LoadRefContext performs the once-per-import load of all scoped reference
// data.
func LoadRefContext(ctx context.Context, r CatalogReader, tenant, company int64) (*RefContext, error) {
	lookups, err := r.LoadLookups(ctx, tenant, company)
	if err != nil {
		return nil, fmt.Errorf("load lookups: %w", err)
	}
	existing, err := r.LoadProductsBySCU(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defs, err := r.LoadAttributeDefs(ctx, tenant, company)
	if err != nil {
		return nil, fmt.Errorf("load attribute definitions: %w", err)
	}
	return NewRefContext(lookups, existing, defs), nil
}

// NewRefContext builds a snapshot from already-loaded data. Definitions are
// expected in id order; MatchDef relies on that for stable disambiguation.
func NewRefContext(lookups LookupSets, existing map[string]ExistingProduct, defs []AttributeDef) *RefContext {
	c := &RefContext{
		Lookups:    lookups,
		Existing:   existing,
		Defs:       defs,
		defsByName: make(map[string][]AttributeDef),
	}
	if c.Existing == nil {
		c.Existing = make(map[string]ExistingProduct)
	}
	for _, d := range defs {
		key := NormalizeName(d.Name)
		c.defsByName[key] = append(c.defsByName[key], d)
	}
	return c
}

func has(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}

func (c *RefContext) HasType(id int64) bool        { return has(c.Lookups.Types, id) }
func (c *RefContext) HasKind(id int64) bool        { return has(c.Lookups.Kinds, id) }
func (c *RefContext) HasUnit(id int64) bool        { return has(c.Lookups.Units, id) }
func (c *RefContext) HasCategory(id int64) bool    { return has(c.Lookups.Categories, id) }
func (c *RefContext) HasSubcategory(id int64) bool { return has(c.Lookups.Subcategories, id) }
func (c *RefContext) HasBrand(id int64) bool       { return has(c.Lookups.Brands, id) }

// MatchDef finds the attribute definition for a normalized name,
// disambiguated by the product's kind when several definitions share the
// name: a kind-scoped match wins, then an unscoped definition, then the
// first candidate in id order.
func (c *RefContext) MatchDef(normName string, productKindID int64) (AttributeDef, bool) {
	candidates := c.defsByName[normName]
	if len(candidates) == 0 {
		return AttributeDef{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	for _, d := range candidates {
		if d.KindID.Valid && d.KindID.Int64 == productKindID {
			return d, true
		}
	}
	for _, d := range candidates {
		if !d.KindID.Valid {
			return d, true
		}
	}
	return candidates[0], true
}
