package core

// reconcile.go builds the change set. The six passes run in a fixed order:
// products, installation-work synthesis, descriptions, attributes, media,
// cross-batch/cross-storage checks. Every pass accumulates issues and keeps
// scanning; a row that fails is excluded from the change set but never
// aborts the sheet.

import (
	"strconv"
	"strings"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

// Engine reconciles parsed sheets against the loaded reference snapshot.
type Engine struct {
	refs *RefContext
}

// NewEngine creates a reconciliation engine over a reference snapshot.
func NewEngine(refs *RefContext) *Engine {
	return &Engine{refs: refs}
}

// parentRow pairs a surviving parent payload with its source row; the
// synthesis pass needs the raw work fields.
type parentRow struct {
	row     ProductRow
	payload *ProductPayload
}

// Reconcile runs all passes and returns the change set plus the accumulated
// validation report. A non-empty report means the change set must not be
// persisted.
func (e *Engine) Reconcile(sheets *ParsedSheets) (*ChangeSet, Report) {
	var rep Report
	cs := NewChangeSet()

	parents := e.productsPass(sheets.Products, cs, &rep)
	e.synthesisPass(parents, cs, &rep)
	e.descriptionsPass(sheets.Descriptions, cs, &rep)
	e.attributesPass(sheets.Attributes, cs, &rep)
	e.mediaPass(sheets.Media, cs, &rep)
	e.crossPass(parents, cs, &rep)

	return cs, rep
}

// productsPass validates every products-sheet row and builds the surviving
// parent payloads, the delete-set and the duplicate exclusions.
func (e *Engine) productsPass(rows []ProductRow, cs *ChangeSet, rep *Report) []parentRow {
	seen := make(map[string]int, len(rows))
	dupes := make(map[string]struct{})
	var parents []parentRow

	for _, row := range rows {
		if row.SCU == "" {
			rep.Add(schema.SheetProducts, row.Line, "SCU is required")
			continue
		}
		if first, ok := seen[row.SCU]; ok {
			rep.Addf(schema.SheetProducts, row.Line,
				"duplicate SCU %q in batch (first at row %d)", row.SCU, first)
			dupes[row.SCU] = struct{}{}
			continue
		}
		seen[row.SCU] = row.Line

		action, ok := ParseAction(row.ActionRaw)
		if !ok {
			rep.Addf(schema.SheetProducts, row.Line, "unknown action %q", row.ActionRaw)
			continue
		}

		if action.IsDelete() {
			cs.Deletes[row.SCU] = row.Line
			continue
		}

		if row.Bad {
			// Coercion issues were recorded while parsing; the row is out.
			continue
		}

		payload, ok := e.buildParent(row, action, rep)
		if !ok {
			continue
		}
		cs.Products = append(cs.Products, payload)
		cs.bySCU[payload.SCU] = payload
		parents = append(parents, parentRow{row: row, payload: payload})
	}

	// A duplicate excludes every occurrence of the SCU, the first one included.
	if len(dupes) > 0 {
		kept := cs.Products[:0]
		keptParents := parents[:0]
		for _, p := range cs.Products {
			if _, dup := dupes[p.SCU]; dup {
				delete(cs.bySCU, p.SCU)
				continue
			}
			kept = append(kept, p)
		}
		for _, pr := range parents {
			if _, dup := dupes[pr.payload.SCU]; !dup {
				keptParents = append(keptParents, pr)
			}
		}
		cs.Products = kept
		parents = keptParents
		for scu := range dupes {
			delete(cs.Deletes, scu)
		}
	}

	return parents
}

// buildParent validates the required fields and lookup references of a
// CREATE/UPDATE row and produces its normalized payload.
func (e *Engine) buildParent(row ProductRow, action Action, rep *Report) (*ProductPayload, bool) {
	before := len(rep.Issues)

	if row.Name == "" {
		rep.Add(schema.SheetProducts, row.Line, `required field "name" is missing`)
	}
	requireLookup(rep, row.Line, "product_type_id", row.ProductTypeID, e.refs.HasType)
	requireLookup(rep, row.Line, "product_kind_id", row.ProductKindID, e.refs.HasKind)
	requireLookup(rep, row.Line, "unit_id", row.UnitID, e.refs.HasUnit)
	requireLookup(rep, row.Line, "category_id", row.CategoryID, e.refs.HasCategory)
	optionalLookup(rep, row.Line, "subcategory_id", row.SubcategoryID, e.refs.HasSubcategory)
	optionalLookup(rep, row.Line, "brand_id", row.BrandID, e.refs.HasBrand)
	if !row.Price.Valid {
		rep.Add(schema.SheetProducts, row.Line, `required field "price" is missing`)
	}

	if len(rep.Issues) > before {
		return nil, false
	}

	return &ProductPayload{
		Row:           row.Line,
		Action:        action,
		SCU:           row.SCU,
		Name:          row.Name,
		ProductTypeID: row.ProductTypeID.Int64,
		ProductKindID: row.ProductKindID.Int64,
		UnitID:        row.UnitID.Int64,
		CategoryID:    row.CategoryID.Int64,
		SubcategoryID: row.SubcategoryID,
		BrandID:       row.BrandID,
		IsVisible:     boolOr(row.IsVisible, true),
		IsTop:         boolOr(row.IsTop, false),
		IsNew:         boolOr(row.IsNew, false),
		Prices: Prices{
			Price:        row.Price.Decimal,
			Sale:         row.PriceSale,
			Vendor:       row.PriceVendor,
			VendorMin:    row.PriceVendMin,
			Zakup:        row.PriceZakup,
			Delivery:     row.PriceDeliv,
			Montaj:       row.Montaj,
			MontajSebest: row.MontajSebest,
		},
	}, true
}

// synthesisPass handles the work_scu column of surviving parent rows: either
// a synthesized installation-work sibling or a link-only request.
func (e *Engine) synthesisPass(parents []parentRow, cs *ChangeSet, rep *Report) {
	for _, pr := range parents {
		row := pr.row
		if row.WorkSCU == "" {
			continue
		}
		if row.WorkSCU == row.SCU {
			rep.Addf(schema.SheetProducts, row.Line,
				"installation work SCU %q equals the product's own SCU", row.WorkSCU)
			continue
		}

		if !hasWorkDetails(row) {
			// Link only: wire a relation to a product that exists elsewhere
			// (in this batch or in storage) and propagate the parent's
			// installation cost basis onto it. Resolution is checked in the
			// cross pass.
			cs.Links[row.SCU] = WorkLink{
				Row:          row.Line,
				WorkSCU:      row.WorkSCU,
				MontajSebest: row.MontajSebest,
			}
			continue
		}

		// A synthesized sibling mints its SCU in this batch, so it must not
		// clash with anything else the batch produces or archives.
		if _, ok := cs.Product(row.WorkSCU); ok {
			rep.Addf(schema.SheetProducts, row.Line,
				"installation work SCU %q collides with another product in this batch", row.WorkSCU)
			continue
		}
		if _, ok := cs.Deletes[row.WorkSCU]; ok {
			rep.Addf(schema.SheetProducts, row.Line,
				"installation work SCU %q collides with an archive target in this batch", row.WorkSCU)
			continue
		}
		if _, ok := cs.workBySCU(row.WorkSCU); ok {
			rep.Addf(schema.SheetProducts, row.Line,
				"installation work SCU %q is already used by another row in this batch", row.WorkSCU)
			continue
		}

		work, ok := e.buildWork(row, pr.payload, rep)
		if !ok {
			continue
		}
		cs.Works[row.SCU] = work
	}
}

// hasWorkDetails reports whether the row carries installation-work detail
// fields beyond the bare work_scu link.
func hasWorkDetails(row ProductRow) bool {
	return row.WorkName != "" ||
		row.WorkTypeID.Valid ||
		row.WorkCategoryID.Valid ||
		row.WorkPrice.Valid ||
		row.WorkPriceSale.Valid ||
		row.WorkPriceVendor.Valid ||
		row.WorkPriceVMin.Valid ||
		row.WorkPriceZakup.Valid
}

// buildWork synthesizes the installation-work sibling payload, inheriting
// kind/unit/subcategory/brand defaults from the parent. The sibling runs the
// same required-field and lookup validation as a parent row.
func (e *Engine) buildWork(row ProductRow, parent *ProductPayload, rep *Report) (*ProductPayload, bool) {
	before := len(rep.Issues)

	if row.WorkName == "" {
		rep.Add(schema.SheetProducts, row.Line, `required field "work_name" is missing`)
	}
	requireLookup(rep, row.Line, "work_product_type_id", row.WorkTypeID, e.refs.HasType)
	requireLookup(rep, row.Line, "work_category_id", row.WorkCategoryID, e.refs.HasCategory)
	if !row.WorkPrice.Valid {
		rep.Add(schema.SheetProducts, row.Line, `required field "work_price" is missing`)
	}

	if len(rep.Issues) > before {
		return nil, false
	}

	return &ProductPayload{
		Row:           row.Line,
		SCU:           row.WorkSCU,
		Name:          row.WorkName,
		ProductTypeID: row.WorkTypeID.Int64,
		ProductKindID: parent.ProductKindID,
		UnitID:        parent.UnitID,
		CategoryID:    row.WorkCategoryID.Int64,
		SubcategoryID: parent.SubcategoryID,
		BrandID:       parent.BrandID,
		IsVisible:     parent.IsVisible,
		Prices: Prices{
			Price:     row.WorkPrice.Decimal,
			Sale:      row.WorkPriceSale,
			Vendor:    row.WorkPriceVendor,
			VendorMin: row.WorkPriceVMin,
			Zakup:     row.WorkPriceZakup,
		},
		WorkKind: WorkKindInstallationLinked,
	}, true
}

// descriptionsPass links description rows to batch SCUs and enforces the
// exactly-one-description invariant for every surviving parent product.
func (e *Engine) descriptionsPass(rows []DescriptionRow, cs *ChangeSet, rep *Report) {
	for _, row := range rows {
		if row.SCU == "" {
			rep.Add(schema.SheetDescriptions, row.Line, "SCU is required")
			continue
		}
		if _, dup := cs.Descriptions[row.SCU]; dup {
			rep.Addf(schema.SheetDescriptions, row.Line, "duplicate description for SCU %q", row.SCU)
			continue
		}
		_, isDelete := cs.Deletes[row.SCU]
		if !cs.InBatch(row.SCU) && !isDelete {
			rep.Addf(schema.SheetDescriptions, row.Line, "references unknown SCU %q", row.SCU)
			continue
		}
		cs.Descriptions[row.SCU] = row
	}

	// The description is a mandatory companion of every surviving product;
	// the error cites the product's own row in the products sheet.
	for _, p := range cs.Products {
		if _, ok := cs.Descriptions[p.SCU]; !ok {
			rep.Addf(schema.SheetProducts, p.Row, "product %q has no description row", p.SCU)
		}
	}
}

// attributesPass resolves attribute rows against existing definitions,
// queues new definitions for unseen names and derives the tagged value.
func (e *Engine) attributesPass(rows []AttributeRow, cs *ChangeSet, rep *Report) {
	queued := make(map[string]int) // normName + kind scope -> NewDefs index

	for _, row := range rows {
		if row.Bad {
			continue
		}
		if row.SCU == "" {
			rep.Add(schema.SheetAttributes, row.Line, "SCU is required")
			continue
		}
		if row.Name == "" {
			rep.Add(schema.SheetAttributes, row.Line, "attribute name is required")
			continue
		}
		if _, gone := cs.Deletes[row.SCU]; gone {
			// Rows referencing an archive target are dropped, not errored.
			continue
		}

		payload, ok := cs.Product(row.SCU)
		if !ok {
			payload, ok = cs.workBySCU(row.SCU)
		}
		if !ok {
			rep.Addf(schema.SheetAttributes, row.Line, "references unknown SCU %q", row.SCU)
			continue
		}

		normName := NormalizeName(row.Name)

		if def, found := e.refs.MatchDef(normName, payload.ProductKindID); found {
			value, ok := deriveValue(def.ValueKind, row, rep)
			if !ok {
				continue
			}
			cs.Attributes[row.SCU] = append(cs.Attributes[row.SCU], AttrValue{DefID: def.ID, Value: value})
			continue
		}

		// Unmatched name: queue a definition once per (name, kind) pair.
		kindKey := normName + "\x00" + strconv.FormatInt(payload.ProductKindID, 10)
		idx, found := queued[kindKey]
		if !found {
			kind := ValueText
			if row.ValueNumber.Valid {
				kind = ValueNumber
			}
			if row.ValueString == "" && !row.ValueNumber.Valid {
				rep.Addf(schema.SheetAttributes, row.Line, "value required for attribute %q", row.Name)
				continue
			}
			idx = len(cs.NewDefs)
			cs.NewDefs = append(cs.NewDefs, NewDefinition{
				Name:      row.Name,
				NormName:  normName,
				KindID:    OptInt{Int64: payload.ProductKindID, Valid: true},
				ValueKind: kind,
			})
			queued[kindKey] = idx
		}

		value, ok := deriveValue(cs.NewDefs[idx].ValueKind, row, rep)
		if !ok {
			continue
		}
		cs.Attributes[row.SCU] = append(cs.Attributes[row.SCU], AttrValue{NewDef: idx, Value: value})
	}
}

// deriveValue normalizes the row's value cells into the definition's declared
// kind. Exactly one slot of the result is populated. When both cells are
// filled, the definition's kind picks the winning cell; the other is ignored.
func deriveValue(kind ValueKind, row AttributeRow, rep *Report) (AttributeValue, bool) {
	switch kind {
	case ValueNumber:
		if row.ValueNumber.Valid {
			return NumberValue(row.ValueNumber.Decimal), true
		}
		if d, ok := ParseDecimal(row.ValueString); ok {
			return NumberValue(d), true
		}
		if row.ValueString == "" {
			rep.Addf(schema.SheetAttributes, row.Line, "value required for attribute %q", row.Name)
		} else {
			rep.Addf(schema.SheetAttributes, row.Line,
				"numeric value required for attribute %q, got %q", row.Name, row.ValueString)
		}
		return AttributeValue{}, false
	default:
		if row.ValueString != "" {
			return TextValue(row.ValueString), true
		}
		if row.ValueNumber.Valid {
			return TextValue(row.ValueNumber.Decimal.String()), true
		}
		rep.Addf(schema.SheetAttributes, row.Line, "value required for attribute %q", row.Name)
		return AttributeValue{}, false
	}
}

// mediaPass validates media rows; type, path and sort order are all
// mandatory per row.
func (e *Engine) mediaPass(rows []MediaRow, cs *ChangeSet, rep *Report) {
	for _, row := range rows {
		if row.Bad {
			continue
		}
		if row.SCU == "" {
			rep.Add(schema.SheetMedia, row.Line, "SCU is required")
			continue
		}
		if _, gone := cs.Deletes[row.SCU]; gone {
			continue
		}
		if !cs.InBatch(row.SCU) {
			rep.Addf(schema.SheetMedia, row.Line, "references unknown SCU %q", row.SCU)
			continue
		}

		before := len(rep.Issues)
		mediaType := strings.ToLower(row.Type)
		if mediaType != "image" && mediaType != "video" {
			rep.Addf(schema.SheetMedia, row.Line, "media type must be image or video, got %q", row.Type)
		}
		if row.Path == "" {
			rep.Add(schema.SheetMedia, row.Line, "path is required")
		}
		if !row.Sort.Valid {
			rep.Add(schema.SheetMedia, row.Line, "sort order is required")
		}
		if len(rep.Issues) > before {
			continue
		}

		row.Type = mediaType
		cs.Media[row.SCU] = append(cs.Media[row.SCU], row)
	}
}

// crossPass runs the cross-batch and cross-storage checks: action vs stored
// state, global guard, dangling references, delete-target existence.
func (e *Engine) crossPass(parents []parentRow, cs *ChangeSet, rep *Report) {
	for _, pr := range parents {
		p := pr.payload
		existing, exists := e.refs.Existing[p.SCU]
		switch {
		case p.Action == ActionCreate && exists:
			rep.Addf(schema.SheetProducts, p.Row, "product %q already exists", p.SCU)
		case p.Action == ActionUpdate && !exists:
			rep.Addf(schema.SheetProducts, p.Row, "product %q does not exist", p.SCU)
		case exists && existing.IsGlobal:
			rep.Addf(schema.SheetProducts, p.Row,
				"product %q is a global template and cannot be modified", p.SCU)
		}
		// An installation-work product updated through a plain row (the
		// export emits siblings that way) keeps its stored tag.
		if exists && p.WorkKind == WorkKindNone {
			p.WorkKind = existing.WorkKind
		}
	}

	// Related SCU lists come straight off the product rows.
	for _, pr := range parents {
		if len(pr.row.RelatedSCUs) == 0 {
			continue
		}
		cs.Relations[pr.payload.SCU] = pr.row.RelatedSCUs
		for _, rel := range pr.row.RelatedSCUs {
			e.checkReference(rep, pr.payload.Row, "related SCU", rel, cs)
		}
	}

	// Synthesized siblings follow the parent's CREATE/UPDATE logic against
	// storage, and global records stay untouchable.
	for _, w := range cs.Works {
		if existing, exists := e.refs.Existing[w.SCU]; exists {
			if existing.IsGlobal {
				rep.Addf(schema.SheetProducts, w.Row,
					"product %q is a global template and cannot be modified", w.SCU)
				continue
			}
			w.Action = ActionUpdate
		} else {
			w.Action = ActionCreate
		}
	}

	for _, l := range cs.Links {
		e.checkReference(rep, l.Row, "installation work SCU", l.WorkSCU, cs)
		// The install-basis push mutates the linked product's pricing record,
		// so a global record is off limits here too.
		if existing, ok := e.refs.Existing[l.WorkSCU]; ok && existing.IsGlobal {
			rep.Addf(schema.SheetProducts, l.Row,
				"product %q is a global template and cannot be modified", l.WorkSCU)
		}
	}

	for scu, row := range cs.Deletes {
		existing, exists := e.refs.Existing[scu]
		if !exists {
			rep.Addf(schema.SheetProducts, row, "cannot archive unknown product %q", scu)
			continue
		}
		if existing.IsGlobal {
			rep.Addf(schema.SheetProducts, row,
				"product %q is a global template and cannot be archived", scu)
		}
	}
}

// checkReference validates that a referenced SCU resolves inside the batch
// or in storage and is not an archive target.
func (e *Engine) checkReference(rep *Report, row int, what, scu string, cs *ChangeSet) {
	if _, gone := cs.Deletes[scu]; gone {
		rep.Addf(schema.SheetProducts, row, "%s %q is an archive target", what, scu)
		return
	}
	if cs.InBatch(scu) {
		return
	}
	if _, ok := e.refs.Existing[scu]; ok {
		return
	}
	rep.Addf(schema.SheetProducts, row, "%s %q cannot be resolved", what, scu)
}

func requireLookup(rep *Report, line int, field string, v OptInt, valid func(int64) bool) {
	if !v.Valid {
		rep.Addf(schema.SheetProducts, line, "required field %q is missing", field)
		return
	}
	if !valid(v.Int64) {
		rep.Addf(schema.SheetProducts, line, "field %q: unknown reference id %d", field, v.Int64)
	}
}

func optionalLookup(rep *Report, line int, field string, v OptInt, valid func(int64) bool) {
	if v.Valid && !valid(v.Int64) {
		rep.Addf(schema.SheetProducts, line, "field %q: unknown reference id %d", field, v.Int64)
	}
}

func boolOr(v OptBool, def bool) bool {
	if v.Valid {
		return v.Bool
	}
	return def
}
