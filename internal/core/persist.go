package core

// persist.go applies a validated change set. It runs only when validation
// produced zero issues, inside one transaction provided by the TxRunner; any
// repository failure rolls the whole transaction back.

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tx is the write surface of one apply transaction, scoped to the import's
// tenant and company by its creator.
type Tx interface {
	InsertAttributeDefs(ctx context.Context, defs []NewDefinition) ([]int64, error)
	ArchiveProduct(ctx context.Context, productID int64) error
	InsertProduct(ctx context.Context, p *ProductPayload) (int64, error)
	UpdateProduct(ctx context.Context, productID int64, p *ProductPayload) error
	UpsertPricing(ctx context.Context, productID int64, pr Prices) error
	SetInstallBasis(ctx context.Context, productID int64, v decimal.Decimal) error
	UpsertDescription(ctx context.Context, productID int64, d DescriptionRow) error
	ReplaceAttributeValues(ctx context.Context, productID int64, vals []StoredAttributeValue) error
	ReplaceMedia(ctx context.Context, productID int64, rows []MediaRow) error
	ReplaceRelations(ctx context.Context, productID int64, edges []RelationEdge) error
}

// TxRunner opens the apply transaction. The implementation takes a
// per-tenant/company advisory lock for the transaction's duration so
// concurrent imports over the same scope serialize.
type TxRunner interface {
	InTx(ctx context.Context, tenant, company int64, fn func(tx Tx) error) error
}

// Persister applies a change set inside an open transaction.
type Persister struct{}

// Apply writes the change set and returns the created/updated/archived
// counts. Any error is fatal to the transaction.
func (Persister) Apply(ctx context.Context, tx Tx, cs *ChangeSet, refs *RefContext) (Summary, error) {
	var sum Summary

	// New definitions first, so value rows can bind to their generated ids.
	var defIDs []int64
	if len(cs.NewDefs) > 0 {
		ids, err := tx.InsertAttributeDefs(ctx, cs.NewDefs)
		if err != nil {
			return sum, fmt.Errorf("insert attribute definitions: %w", err)
		}
		if len(ids) != len(cs.NewDefs) {
			return sum, fmt.Errorf("insert attribute definitions: got %d ids for %d definitions",
				len(ids), len(cs.NewDefs))
		}
		defIDs = ids
	}

	// Archives are soft: archived_at is set and visibility forced off.
	for _, scu := range sortedKeys(cs.Deletes) {
		if err := tx.ArchiveProduct(ctx, refs.Existing[scu].ID); err != nil {
			return sum, fmt.Errorf("archive %q: %w", scu, err)
		}
		sum.Archived++
	}

	// Phase one: upsert every product (parents, then synthesized siblings)
	// so cross-batch references resolve to ids before edges are written.
	ids := make(map[string]int64, len(refs.Existing)+len(cs.Products))
	for scu, ex := range refs.Existing {
		ids[scu] = ex.ID
	}

	upsert := func(p *ProductPayload) error {
		switch p.Action {
		case ActionUpdate:
			if err := tx.UpdateProduct(ctx, ids[p.SCU], p); err != nil {
				return fmt.Errorf("update %q: %w", p.SCU, err)
			}
			sum.Updated++
		default:
			id, err := tx.InsertProduct(ctx, p)
			if err != nil {
				return fmt.Errorf("insert %q: %w", p.SCU, err)
			}
			ids[p.SCU] = id
			sum.Created++
		}
		if err := tx.UpsertPricing(ctx, ids[p.SCU], p.Prices); err != nil {
			return fmt.Errorf("pricing for %q: %w", p.SCU, err)
		}
		return nil
	}

	for _, p := range cs.Products {
		if err := upsert(p); err != nil {
			return sum, err
		}
	}
	for _, parent := range sortedKeys(cs.Works) {
		if err := upsert(cs.Works[parent]); err != nil {
			return sum, err
		}
	}

	// Phase two: child snapshots and relation edges per product.
	writeChildren := func(p *ProductPayload) error {
		id := ids[p.SCU]
		if d, ok := cs.Descriptions[p.SCU]; ok {
			if err := tx.UpsertDescription(ctx, id, d); err != nil {
				return fmt.Errorf("description for %q: %w", p.SCU, err)
			}
		}
		vals := make([]StoredAttributeValue, 0, len(cs.Attributes[p.SCU]))
		for _, av := range cs.Attributes[p.SCU] {
			defID := av.DefID
			if defID == 0 {
				defID = defIDs[av.NewDef]
			}
			vals = append(vals, StoredAttributeValue{DefinitionID: defID, Value: av.Value})
		}
		if err := tx.ReplaceAttributeValues(ctx, id, vals); err != nil {
			return fmt.Errorf("attributes for %q: %w", p.SCU, err)
		}
		if err := tx.ReplaceMedia(ctx, id, cs.Media[p.SCU]); err != nil {
			return fmt.Errorf("media for %q: %w", p.SCU, err)
		}
		return nil
	}

	for _, p := range cs.Products {
		if err := writeChildren(p); err != nil {
			return sum, err
		}

		var edges []RelationEdge
		for _, rel := range cs.Relations[p.SCU] {
			edges = append(edges, RelationEdge{RelatedID: ids[rel], Type: RelationRelated})
		}
		if w, ok := cs.Works[p.SCU]; ok {
			edges = append(edges, RelationEdge{RelatedID: ids[w.SCU], Type: RelationInstallationWork})
		} else if l, ok := cs.Links[p.SCU]; ok {
			edges = append(edges, RelationEdge{RelatedID: ids[l.WorkSCU], Type: RelationInstallationWork})
		}
		if err := tx.ReplaceRelations(ctx, ids[p.SCU], edges); err != nil {
			return sum, fmt.Errorf("relations for %q: %w", p.SCU, err)
		}
	}

	for _, parent := range sortedKeys(cs.Works) {
		if err := writeChildren(cs.Works[parent]); err != nil {
			return sum, err
		}
	}

	// Link-only requests push the parent row's installation cost basis onto
	// the already-existing linked product's pricing record.
	for _, parent := range sortedKeys(cs.Links) {
		l := cs.Links[parent]
		if !l.MontajSebest.Valid {
			continue
		}
		if err := tx.SetInstallBasis(ctx, ids[l.WorkSCU], l.MontajSebest.Decimal); err != nil {
			return sum, fmt.Errorf("install basis for %q: %w", l.WorkSCU, err)
		}
	}

	return sum, nil
}

// sortedKeys returns map keys in stable order so writes are deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
