package database

// tx.go is the write surface of an apply transaction. Child rows use the
// snapshot-replace contract: delete everything for the product, reinsert the
// new set.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Faxeron/back-home-new-sub000/internal/core"
)

// storeTx implements core.Tx, scoped to one tenant/company.
type storeTx struct {
	db      pgx.Tx
	tenant  int64
	company int64
}

func (t *storeTx) InsertAttributeDefs(ctx context.Context, defs []core.NewDefinition) ([]int64, error) {
	ids := make([]int64, 0, len(defs))
	for _, d := range defs {
		var id int64
		err := t.db.QueryRow(ctx, `
			INSERT INTO product_attribute_definitions
				(tenant_id, company_id, name, product_kind_id, value_kind)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			t.tenant, t.company, d.Name, intArg(d.KindID), d.ValueKind.String(),
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert definition %q: %w", d.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *storeTx) ArchiveProduct(ctx context.Context, productID int64) error {
	_, err := t.db.Exec(ctx, `
		UPDATE products
		SET archived_at = now(), is_visible = FALSE, updated_at = now()
		WHERE id = $1`, productID)
	return err
}

func (t *storeTx) InsertProduct(ctx context.Context, p *core.ProductPayload) (int64, error) {
	var id int64
	err := t.db.QueryRow(ctx, `
		INSERT INTO products
			(tenant_id, company_id, scu, name,
			 product_type_id, product_kind_id, unit_id,
			 category_id, subcategory_id, brand_id,
			 is_visible, is_top, is_new, work_kind,
			 price, price_sale, price_vendor, price_vendor_min,
			 price_zakup, price_delivery, montaj, montaj_sebest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id`,
		t.tenant, t.company, p.SCU, p.Name,
		p.ProductTypeID, p.ProductKindID, p.UnitID,
		p.CategoryID, intArg(p.SubcategoryID), intArg(p.BrandID),
		p.IsVisible, p.IsTop, p.IsNew, string(p.WorkKind),
		p.Prices.Price.String(), decArg(p.Prices.Sale), decArg(p.Prices.Vendor),
		decArg(p.Prices.VendorMin), decArg(p.Prices.Zakup), decArg(p.Prices.Delivery),
		decArg(p.Prices.Montaj), decArg(p.Prices.MontajSebest),
	).Scan(&id)
	return id, err
}

func (t *storeTx) UpdateProduct(ctx context.Context, productID int64, p *core.ProductPayload) error {
	// Updating clears any prior archive mark.
	_, err := t.db.Exec(ctx, `
		UPDATE products SET
			name = $2,
			product_type_id = $3, product_kind_id = $4, unit_id = $5,
			category_id = $6, subcategory_id = $7, brand_id = $8,
			is_visible = $9, is_top = $10, is_new = $11, work_kind = $12,
			price = $13, price_sale = $14, price_vendor = $15,
			price_vendor_min = $16, price_zakup = $17, price_delivery = $18,
			montaj = $19, montaj_sebest = $20,
			archived_at = NULL, updated_at = now()
		WHERE id = $1`,
		productID, p.Name,
		p.ProductTypeID, p.ProductKindID, p.UnitID,
		p.CategoryID, intArg(p.SubcategoryID), intArg(p.BrandID),
		p.IsVisible, p.IsTop, p.IsNew, string(p.WorkKind),
		p.Prices.Price.String(), decArg(p.Prices.Sale), decArg(p.Prices.Vendor),
		decArg(p.Prices.VendorMin), decArg(p.Prices.Zakup), decArg(p.Prices.Delivery),
		decArg(p.Prices.Montaj), decArg(p.Prices.MontajSebest))
	return err
}

func (t *storeTx) UpsertPricing(ctx context.Context, productID int64, pr core.Prices) error {
	_, err := t.db.Exec(ctx, `
		INSERT INTO product_prices
			(product_id, price, price_sale, price_vendor, price_vendor_min,
			 price_zakup, price_delivery, montaj, montaj_sebest, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (product_id) DO UPDATE SET
			price = EXCLUDED.price,
			price_sale = EXCLUDED.price_sale,
			price_vendor = EXCLUDED.price_vendor,
			price_vendor_min = EXCLUDED.price_vendor_min,
			price_zakup = EXCLUDED.price_zakup,
			price_delivery = EXCLUDED.price_delivery,
			montaj = EXCLUDED.montaj,
			montaj_sebest = EXCLUDED.montaj_sebest,
			updated_at = now()`,
		productID, pr.Price.String(), decArg(pr.Sale), decArg(pr.Vendor),
		decArg(pr.VendorMin), decArg(pr.Zakup), decArg(pr.Delivery),
		decArg(pr.Montaj), decArg(pr.MontajSebest))
	return err
}

func (t *storeTx) SetInstallBasis(ctx context.Context, productID int64, v decimal.Decimal) error {
	_, err := t.db.Exec(ctx, `
		INSERT INTO product_prices (product_id, montaj_sebest, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id) DO UPDATE SET
			montaj_sebest = EXCLUDED.montaj_sebest,
			updated_at = now()`,
		productID, v.String())
	return err
}

func (t *storeTx) UpsertDescription(ctx context.Context, productID int64, d core.DescriptionRow) error {
	_, err := t.db.Exec(ctx, `
		INSERT INTO product_descriptions
			(product_id, short_text, long_text, selling_points,
			 structure_notes, marketplace_title, marketplace_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id) DO UPDATE SET
			short_text = EXCLUDED.short_text,
			long_text = EXCLUDED.long_text,
			selling_points = EXCLUDED.selling_points,
			structure_notes = EXCLUDED.structure_notes,
			marketplace_title = EXCLUDED.marketplace_title,
			marketplace_text = EXCLUDED.marketplace_text`,
		productID, d.Short, d.Long, d.SellingPoints,
		d.StructureNotes, d.MarketplaceTitle, d.MarketplaceText)
	return err
}

func (t *storeTx) ReplaceAttributeValues(ctx context.Context, productID int64, vals []core.StoredAttributeValue) error {
	if _, err := t.db.Exec(ctx,
		`DELETE FROM product_attribute_values WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, v := range vals {
		// Exactly one of value_number/value_text is non-null, selected by the
		// union's tag.
		var num, text any
		switch v.Value.Kind {
		case core.ValueNumber:
			num = v.Value.Number.String()
		default:
			text = v.Value.Text
		}
		if _, err := t.db.Exec(ctx, `
			INSERT INTO product_attribute_values
				(product_id, definition_id, value_number, value_text)
			VALUES ($1, $2, $3, $4)`,
			productID, v.DefinitionID, num, text); err != nil {
			return err
		}
	}
	return nil
}

func (t *storeTx) ReplaceMedia(ctx context.Context, productID int64, rows []core.MediaRow) error {
	if _, err := t.db.Exec(ctx,
		`DELETE FROM product_media WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, m := range rows {
		if _, err := t.db.Exec(ctx, `
			INSERT INTO product_media (product_id, media_type, path, sort)
			VALUES ($1, $2, $3, $4)`,
			productID, m.Type, m.Path, m.Sort.Int64); err != nil {
			return err
		}
	}
	return nil
}

func (t *storeTx) ReplaceRelations(ctx context.Context, productID int64, edges []core.RelationEdge) error {
	if _, err := t.db.Exec(ctx, `
		DELETE FROM product_relations
		WHERE product_id = $1 AND relation_type IN ($2, $3)`,
		productID, string(core.RelationRelated), string(core.RelationInstallationWork)); err != nil {
		return err
	}
	for _, e := range edges {
		if _, err := t.db.Exec(ctx, `
			INSERT INTO product_relations (product_id, related_product_id, relation_type)
			VALUES ($1, $2, $3)`,
			productID, e.RelatedID, string(e.Type)); err != nil {
			return err
		}
	}
	return nil
}
