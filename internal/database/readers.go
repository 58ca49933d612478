package database

// readers.go is the read side: the once-per-import reference loads and the
// export projection.

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Faxeron/back-home-new-sub000/internal/core"
)

// lookupTables maps the export sheet's table label to the backing table.
// The order is the order lookup rows appear on the export sheet.
var lookupTables = []struct {
	label string
	table string
}{
	{"product_types", "product_types"},
	{"product_kinds", "product_kinds"},
	{"units", "units"},
	{"categories", "categories"},
	{"subcategories", "subcategories"},
	{"brands", "brands"},
}

func (s *Store) loadIDSet(ctx context.Context, table string, tenant, company int64) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE tenant_id = $1 AND company_id = $2`, table),
		tenant, company)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	set := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return set, rows.Err()
}

// LoadLookups loads the valid id sets of every reference table for the
// scope.
func (s *Store) LoadLookups(ctx context.Context, tenant, company int64) (core.LookupSets, error) {
	var out core.LookupSets
	for _, target := range []struct {
		table string
		dest  *map[int64]struct{}
	}{
		{"product_types", &out.Types},
		{"product_kinds", &out.Kinds},
		{"units", &out.Units},
		{"categories", &out.Categories},
		{"subcategories", &out.Subcategories},
		{"brands", &out.Brands},
	} {
		set, err := s.loadIDSet(ctx, target.table, tenant, company)
		if err != nil {
			return core.LookupSets{}, err
		}
		*target.dest = set
	}
	return out, nil
}

// LoadProductsBySCU loads the stored products of a tenant keyed by SCU,
// archived ones included so archive targets and UPDATE rows resolve.
func (s *Store) LoadProductsBySCU(ctx context.Context, tenant int64) (map[string]core.ExistingProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, scu, is_global, archived_at IS NOT NULL, work_kind
		FROM products
		WHERE tenant_id = $1`, tenant)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.ExistingProduct)
	for rows.Next() {
		var (
			p        core.ExistingProduct
			workKind string
		)
		if err := rows.Scan(&p.ID, &p.SCU, &p.IsGlobal, &p.Archived, &workKind); err != nil {
			return nil, err
		}
		p.WorkKind = core.WorkKind(workKind)
		out[p.SCU] = p
	}
	return out, rows.Err()
}

// LoadAttributeDefs loads every attribute definition of the scope in id
// order; the resolver relies on that order for stable disambiguation.
func (s *Store) LoadAttributeDefs(ctx context.Context, tenant, company int64) ([]core.AttributeDef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, product_kind_id, value_kind
		FROM product_attribute_definitions
		WHERE tenant_id = $1 AND company_id = $2
		ORDER BY id`, tenant, company)
	if err != nil {
		return nil, fmt.Errorf("load attribute definitions: %w", err)
	}
	defer rows.Close()

	var out []core.AttributeDef
	for rows.Next() {
		var (
			d      core.AttributeDef
			kindID pgtype.Int8
			kind   string
		)
		if err := rows.Scan(&d.ID, &d.Name, &kindID, &kind); err != nil {
			return nil, err
		}
		if kindID.Valid {
			d.KindID = core.OptInt{Int64: kindID.Int64, Valid: true}
		}
		d.ValueKind = parseValueKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}

func parseValueKind(s string) core.ValueKind {
	if s == "number" {
		return core.ValueNumber
	}
	return core.ValueText
}

// ListProducts loads the export projection: every non-archived product of
// the scope with description, attribute values, media and relation edges.
func (s *Store) ListProducts(ctx context.Context, tenant, company int64) ([]core.ExportProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.scu, p.name,
			p.product_type_id, p.product_kind_id, p.unit_id,
			p.category_id, p.subcategory_id, p.brand_id,
			p.is_visible, p.is_top, p.is_new,
			p.price::text, p.price_sale::text, p.price_vendor::text,
			p.price_vendor_min::text, p.price_zakup::text, p.price_delivery::text,
			p.montaj::text, COALESCE(pp.montaj_sebest, p.montaj_sebest)::text,
			COALESCE(d.short_text, ''), COALESCE(d.long_text, ''),
			COALESCE(d.selling_points, ''), COALESCE(d.structure_notes, ''),
			COALESCE(d.marketplace_title, ''), COALESCE(d.marketplace_text, '')
		FROM products p
		LEFT JOIN product_prices pp ON pp.product_id = p.id
		LEFT JOIN product_descriptions d ON d.product_id = p.id
		WHERE p.tenant_id = $1 AND p.company_id = $2 AND p.archived_at IS NULL
		ORDER BY p.scu`, tenant, company)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var products []core.ExportProduct
	byID := make(map[int64]*core.ExportProduct)
	ids := make([]int64, 0)

	for rows.Next() {
		var (
			id                                             int64
			p                                              core.ExportProduct
			subcat, brand                                  pgtype.Int8
			price                                          string
			sale, vendor, vendorMin, zakup, deliv, mo, seb *string
		)
		err := rows.Scan(&id, &p.SCU, &p.Name,
			&p.ProductTypeID, &p.ProductKindID, &p.UnitID,
			&p.CategoryID, &subcat, &brand,
			&p.IsVisible, &p.IsTop, &p.IsNew,
			&price, &sale, &vendor, &vendorMin, &zakup, &deliv, &mo, &seb,
			&p.Description.Short, &p.Description.Long,
			&p.Description.SellingPoints, &p.Description.StructureNotes,
			&p.Description.MarketplaceTitle, &p.Description.MarketplaceText)
		if err != nil {
			return nil, err
		}
		if subcat.Valid {
			p.SubcategoryID = core.OptInt{Int64: subcat.Int64, Valid: true}
		}
		if brand.Valid {
			p.BrandID = core.OptInt{Int64: brand.Int64, Valid: true}
		}
		if p.Prices.Price, err = mustDec(price); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			src  *string
			dest *core.OptDecimal
		}{
			{sale, &p.Prices.Sale}, {vendor, &p.Prices.Vendor},
			{vendorMin, &p.Prices.VendorMin}, {zakup, &p.Prices.Zakup},
			{deliv, &p.Prices.Delivery}, {mo, &p.Prices.Montaj},
			{seb, &p.Prices.MontajSebest},
		} {
			if *f.dest, err = parseDec(f.src); err != nil {
				return nil, err
			}
		}
		products = append(products, p)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range products {
		byID[ids[i]] = &products[i]
	}

	if err := s.loadExportChildren(ctx, byID); err != nil {
		return nil, err
	}
	return products, nil
}

// loadExportChildren attaches attribute values, media and relation edges to
// the loaded products.
func (s *Store) loadExportChildren(ctx context.Context, byID map[int64]*core.ExportProduct) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	attrRows, err := s.pool.Query(ctx, `
		SELECT v.product_id, def.name, v.value_number::text, v.value_text
		FROM product_attribute_values v
		JOIN product_attribute_definitions def ON def.id = v.definition_id
		WHERE v.product_id = ANY($1)
		ORDER BY v.product_id, def.name`, ids)
	if err != nil {
		return fmt.Errorf("load attribute values: %w", err)
	}
	if err := scanRows(attrRows, func(r pgx.Rows) error {
		var (
			productID int64
			name      string
			num       *string
			text      pgtype.Text
		)
		if err := r.Scan(&productID, &name, &num, &text); err != nil {
			return err
		}
		var value core.AttributeValue
		if num != nil {
			d, err := mustDec(*num)
			if err != nil {
				return err
			}
			value = core.NumberValue(d)
		} else {
			value = core.TextValue(text.String)
		}
		p := byID[productID]
		p.Attributes = append(p.Attributes, core.ExportAttribute{Name: name, Value: value})
		return nil
	}); err != nil {
		return err
	}

	mediaRows, err := s.pool.Query(ctx, `
		SELECT product_id, media_type, path, sort
		FROM product_media
		WHERE product_id = ANY($1)
		ORDER BY product_id, sort`, ids)
	if err != nil {
		return fmt.Errorf("load media: %w", err)
	}
	if err := scanRows(mediaRows, func(r pgx.Rows) error {
		var (
			productID int64
			m         core.MediaRow
			sortOrder int64
		)
		if err := r.Scan(&productID, &m.Type, &m.Path, &sortOrder); err != nil {
			return err
		}
		m.Sort = core.OptInt{Int64: sortOrder, Valid: true}
		p := byID[productID]
		p.Media = append(p.Media, m)
		return nil
	}); err != nil {
		return err
	}

	relRows, err := s.pool.Query(ctx, `
		SELECT r.product_id, r.relation_type, related.scu
		FROM product_relations r
		JOIN products related ON related.id = r.related_product_id
		WHERE r.product_id = ANY($1)
		ORDER BY r.product_id, related.scu`, ids)
	if err != nil {
		return fmt.Errorf("load relations: %w", err)
	}
	return scanRows(relRows, func(r pgx.Rows) error {
		var (
			productID  int64
			relType    string
			relatedSCU string
		)
		if err := r.Scan(&productID, &relType, &relatedSCU); err != nil {
			return err
		}
		p := byID[productID]
		if relType == string(core.RelationInstallationWork) {
			p.WorkSCU = relatedSCU
		} else {
			p.RelatedSCUs = append(p.RelatedSCUs, relatedSCU)
		}
		return nil
	})
}

// ListLookupRows loads the export's reference sheet: id and name of every
// lookup table entry in the scope.
func (s *Store) ListLookupRows(ctx context.Context, tenant, company int64) ([]core.LookupRow, error) {
	var out []core.LookupRow
	for _, lt := range lookupTables {
		rows, err := s.pool.Query(ctx,
			fmt.Sprintf(`SELECT id, name FROM %s WHERE tenant_id = $1 AND company_id = $2 ORDER BY id`, lt.table),
			tenant, company)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", lt.table, err)
		}
		label := lt.label
		if err := scanRows(rows, func(r pgx.Rows) error {
			lr := core.LookupRow{Table: label}
			if err := r.Scan(&lr.ID, &lr.Name); err != nil {
				return err
			}
			out = append(out, lr)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// scanRows drains a result set through fn and closes it.
func scanRows(rows pgx.Rows, fn func(pgx.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func mustDec(s string) (decimal.Decimal, error) {
	opt, err := parseDec(&s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return opt.Decimal, nil
}
