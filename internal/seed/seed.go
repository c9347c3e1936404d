// Package seed fills the catalogue schema with deterministic sample products
// so the producer can be exercised against a local database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/database"
)

// CodePrefix marks seeded products so re-runs can remove them first.
const CodePrefix = "SEED-"

// Channels priced for every seeded variant.
var Channels = []string{"WEB_EU", "WEB_US"}

var locales = []string{"en_US", "de_DE"}

type taxonDef struct {
	Code     string
	Position int
	Noun     string
}

var taxons = []taxonDef{
	{"mugs", 0, "Mug"},
	{"t_shirts", 1, "T-Shirt"},
	{"books", 2, "Book"},
	{"stickers", 3, "Sticker"},
}

var adjectives = []string{
	"Classic", "Vintage", "Minimal", "Bold", "Cozy", "Sunny", "Urban", "Nordic",
	"Retro", "Pastel", "Midnight", "Golden",
}

type attributeDef struct {
	Code string
	Type string
}

var attributes = []attributeDef{
	{"material", "text"},
	{"pages", "integer"},
	{"dishwasher_safe", "checkbox"},
}

var colors = []string{"red", "blue", "green", "black"}

// Variant is one seeded SKU.
type Variant struct {
	Code       string
	Name       string
	Color      string
	OnHand     int
	Price      int64
	CustomData map[string]any
}

// Product is one seeded catalogue entry.
type Product struct {
	Code       string
	Taxon      string
	Name       string
	Enabled    bool
	Attributes map[string]any
	Variants   []Variant
	CustomData map[string]any
}

// Generate returns n deterministic products for rng.
func Generate(rng *rand.Rand, n int) []Product {
	products := make([]Product, 0, n)
	for i := range n {
		taxon := taxons[rng.IntN(len(taxons))]
		name := adjectives[rng.IntN(len(adjectives))] + " " + taxon.Noun
		code := fmt.Sprintf("%s%05d", CodePrefix, i+1)

		p := Product{
			Code:       code,
			Taxon:      taxon.Code,
			Name:       name,
			Enabled:    rng.IntN(10) > 0,
			Attributes: map[string]any{"material": "cotton"},
		}
		switch taxon.Code {
		case "mugs":
			p.Attributes = map[string]any{"material": "ceramic", "dishwasher_safe": rng.IntN(2) == 0}
		case "books":
			p.Attributes = map[string]any{"pages": 80 + rng.IntN(400)}
		}
		if rng.IntN(4) == 0 {
			p.CustomData = map[string]any{"featured": true}
		}

		for j := range rng.IntN(len(colors) + 1) {
			color := colors[j]
			v := Variant{
				Code:   fmt.Sprintf("%s-%s", code, strings.ToUpper(color)),
				Name:   fmt.Sprintf("%s %s", name, color),
				Color:  color,
				OnHand: rng.IntN(250),
				Price:  int64(500 + rng.IntN(4500)),
			}
			if rng.IntN(5) == 0 {
				v.CustomData = map[string]any{"ean": fmt.Sprintf("40%011d", rng.IntN(1e9))}
			}
			p.Variants = append(p.Variants, v)
		}
		products = append(products, p)
	}
	return products
}

// Seeder writes generated products to the catalogue tables.
type Seeder struct {
	db     database.TxStarter
	logger *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(db database.TxStarter, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// refs holds the ids of the shared lookup rows.
type refs struct {
	taxons       map[string]int64
	attributes   map[string]int64
	optionValues map[string]int64
}

// Run replaces previously seeded products with products, in one transaction.
func (s *Seeder) Run(ctx context.Context, products []Product) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM sylius_product WHERE code LIKE $1`, CodePrefix+"%")
	if err != nil {
		return fmt.Errorf("remove previous seed: %w", err)
	}
	s.logger.Info("previous seed removed", slog.Int64("products", tag.RowsAffected()))

	r, err := upsertRefs(ctx, tx)
	if err != nil {
		return err
	}

	for i, p := range products {
		if err := insertProduct(ctx, tx, r, p); err != nil {
			return fmt.Errorf("insert product %s: %w", p.Code, err)
		}
		if (i+1)%100 == 0 {
			s.logger.Info("seeding products", slog.Int("done", i+1), slog.Int("total", len(products)))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	s.logger.Info("seed complete", slog.Int("products", len(products)))
	return nil
}

func upsertRefs(ctx context.Context, tx pgx.Tx) (refs, error) {
	r := refs{
		taxons:       make(map[string]int64, len(taxons)),
		attributes:   make(map[string]int64, len(attributes)),
		optionValues: make(map[string]int64, len(colors)),
	}

	for _, t := range taxons {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO sylius_taxon (code, position) VALUES ($1, $2)
			 ON CONFLICT (code) DO UPDATE SET position = EXCLUDED.position
			 RETURNING id`,
			t.Code, t.Position,
		).Scan(&id)
		if err != nil {
			return refs{}, fmt.Errorf("upsert taxon %s: %w", t.Code, err)
		}
		r.taxons[t.Code] = id
	}

	for _, a := range attributes {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO sylius_product_attribute (code, type) VALUES ($1, $2)
			 ON CONFLICT (code) DO UPDATE SET type = EXCLUDED.type
			 RETURNING id`,
			a.Code, a.Type,
		).Scan(&id)
		if err != nil {
			return refs{}, fmt.Errorf("upsert attribute %s: %w", a.Code, err)
		}
		r.attributes[a.Code] = id
	}

	var optionID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO sylius_product_option (code, position) VALUES ('color', 0)
		 ON CONFLICT (code) DO UPDATE SET position = EXCLUDED.position
		 RETURNING id`,
	).Scan(&optionID)
	if err != nil {
		return refs{}, fmt.Errorf("upsert option color: %w", err)
	}
	for _, c := range colors {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO sylius_product_option_value (option_id, code, value) VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO UPDATE SET value = EXCLUDED.value
			 RETURNING id`,
			optionID, "color_"+c, c,
		).Scan(&id)
		if err != nil {
			return refs{}, fmt.Errorf("upsert option value %s: %w", c, err)
		}
		r.optionValues[c] = id
	}
	return r, nil
}

func insertProduct(ctx context.Context, tx pgx.Tx, r refs, p Product) error {
	taxonID := r.taxons[p.Taxon]

	var productID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO sylius_product (code, enabled, main_taxon_id, custom_data)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Code, p.Enabled, taxonID, jsonb(p.CustomData),
	).Scan(&productID)
	if err != nil {
		return err
	}

	slug := strings.ToLower(strings.ReplaceAll(p.Name, " ", "-")) + "-" + strings.ToLower(p.Code)
	for _, locale := range locales {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sylius_product_translation (translatable_id, locale, name, slug, description)
			 VALUES ($1, $2, $3, $4, $5)`,
			productID, locale, p.Name, slug, fmt.Sprintf("%s (%s)", p.Name, locale),
		); err != nil {
			return fmt.Errorf("translation %s: %w", locale, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sylius_product_image (owner_id, type, path) VALUES ($1, $2, $3)`,
		productID, "main", fmt.Sprintf("products/%s/main.jpg", strings.ToLower(p.Code)),
	); err != nil {
		return fmt.Errorf("image: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sylius_product_taxon (product_id, taxon_id, position) VALUES ($1, $2, 0)`,
		productID, taxonID,
	); err != nil {
		return fmt.Errorf("product taxon: %w", err)
	}

	for _, a := range attributes {
		value, ok := p.Attributes[a.Code]
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sylius_product_attribute_value (product_id, attribute_id, value) VALUES ($1, $2, $3)`,
			productID, r.attributes[a.Code], jsonb(value),
		); err != nil {
			return fmt.Errorf("attribute %s: %w", a.Code, err)
		}
	}

	for position, v := range p.Variants {
		if err := insertVariant(ctx, tx, r, productID, position, v); err != nil {
			return fmt.Errorf("variant %s: %w", v.Code, err)
		}
	}
	return nil
}

func insertVariant(ctx context.Context, tx pgx.Tx, r refs, productID int64, position int, v Variant) error {
	var variantID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO sylius_product_variant (product_id, code, position, on_hand, tracked, custom_data)
		 VALUES ($1, $2, $3, $4, TRUE, $5) RETURNING id`,
		productID, v.Code, position, v.OnHand, jsonb(v.CustomData),
	).Scan(&variantID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sylius_product_variant_translation (translatable_id, locale, name) VALUES ($1, $2, $3)`,
		variantID, locales[0], v.Name,
	); err != nil {
		return fmt.Errorf("translation: %w", err)
	}

	for _, channel := range Channels {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sylius_channel_pricing (product_variant_id, channel_code, price) VALUES ($1, $2, $3)`,
			variantID, channel, v.Price,
		); err != nil {
			return fmt.Errorf("channel pricing %s: %w", channel, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sylius_product_variant_option_value (variant_id, option_value_id) VALUES ($1, $2)`,
		variantID, r.optionValues[v.Color],
	); err != nil {
		return fmt.Errorf("option value: %w", err)
	}
	return nil
}

// jsonb encodes v for a JSONB column. A nil map stays SQL NULL.
func jsonb(v any) []byte {
	if m, ok := v.(map[string]any); ok && m == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
