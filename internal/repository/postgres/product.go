package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain/entity"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/repository"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/database"
	apperrors "github.com/trickreich/SuluSyliusProducerPlugin/pkg/errors"
)

const (
	selectProduct = `
		SELECT p.id, p.code, p.enabled, p.custom_data, t.id, t.code, t.position
		FROM sylius_product p
		LEFT JOIN sylius_taxon t ON t.id = p.main_taxon_id`

	selectProductByCode = selectProduct + `
		WHERE p.code = $1`

	selectProductByID = selectProduct + `
		WHERE p.id = $1`

	selectTranslations = `
		SELECT locale, name, slug, description, short_description, meta_keywords, meta_description, custom_data
		FROM sylius_product_translation
		WHERE translatable_id = $1
		ORDER BY locale`

	selectImages = `
		SELECT id, type, path, custom_data
		FROM sylius_product_image
		WHERE owner_id = $1
		ORDER BY id`

	selectProductTaxons = `
		SELECT pt.id, pt.position, pt.custom_data, t.id, t.code, t.position
		FROM sylius_product_taxon pt
		LEFT JOIN sylius_taxon t ON t.id = pt.taxon_id
		WHERE pt.product_id = $1
		ORDER BY pt.position NULLS LAST, pt.id`

	selectAttributes = `
		SELECT av.id, a.code, a.type, av.locale_code, av.value, av.custom_data
		FROM sylius_product_attribute_value av
		JOIN sylius_product_attribute a ON a.id = av.attribute_id
		WHERE av.product_id = $1
		ORDER BY av.id`

	selectVariants = `
		SELECT id, code, position, enabled, on_hold, on_hand, tracked,
			width, height, depth, weight, shipping_required, custom_data
		FROM sylius_product_variant
		WHERE product_id = $1
		ORDER BY position NULLS LAST, id`

	selectVariantTranslations = `
		SELECT translatable_id, locale, name
		FROM sylius_product_variant_translation
		WHERE translatable_id = ANY($1)
		ORDER BY translatable_id, locale`

	selectChannelPricings = `
		SELECT product_variant_id, channel_code, price, original_price
		FROM sylius_channel_pricing
		WHERE product_variant_id = ANY($1)
		ORDER BY product_variant_id, channel_code`

	selectOptionValues = `
		SELECT vov.variant_id, ov.code, o.code, ov.value
		FROM sylius_product_variant_option_value vov
		JOIN sylius_product_option_value ov ON ov.id = vov.option_value_id
		JOIN sylius_product_option o ON o.id = ov.option_id
		WHERE vov.variant_id = ANY($1)
		ORDER BY vov.variant_id, o.position NULLS LAST, ov.code`

	countProducts = `SELECT count(*) FROM sylius_product`

	selectCodes = `
		SELECT code
		FROM sylius_product
		ORDER BY code
		LIMIT $1 OFFSET $2`
)

// ProductRepository implements repository.ProductRepository on the Sylius
// catalogue schema.
type ProductRepository struct {
	db database.DBTX
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a repository over a pool, a transaction or a
// pgxmock pool.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByCode loads the full product graph for code.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (domain.Product, error) {
	return r.load(ctx, "GetProductByCode", selectProductByCode, code, code)
}

// GetByID loads the full product graph for id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	return r.load(ctx, "GetProductByID", selectProductByID, id, strconv.FormatInt(id, 10))
}

// ListCodes returns product codes ordered by code.
func (r *ProductRepository) ListCodes(ctx context.Context, limit, offset int) ([]string, int, error) {
	if limit < 1 {
		return nil, 0, apperrors.InvalidInput("limit must be positive")
	}
	if offset < 0 {
		return nil, 0, apperrors.InvalidInput("offset must not be negative")
	}

	total, err := r.count(ctx)
	if err != nil {
		return nil, 0, err
	}

	codes := make([]string, 0, limit)
	err = r.query(ctx, "ListProductCodes", selectCodes, func(rows pgx.Rows) error {
		var code string
		if err := rows.Scan(&code); err != nil {
			return err
		}
		codes = append(codes, code)
		return nil
	}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *ProductRepository) count(ctx context.Context) (total int, err error) {
	ctx, end := database.TraceQuery(ctx, "CountProducts", countProducts)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, countProducts).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *ProductRepository) load(ctx context.Context, operation, query string, arg any, ident string) (domain.Product, error) {
	p, custom, err := r.scanProduct(ctx, operation, query, arg, ident)
	if err != nil {
		return nil, err
	}
	id := *p.ID

	if p.Translations, err = r.translations(ctx, id); err != nil {
		return nil, err
	}
	if p.Images, err = r.images(ctx, id); err != nil {
		return nil, err
	}
	if p.ProductTaxons, err = r.productTaxons(ctx, id); err != nil {
		return nil, err
	}
	if p.Attributes, err = r.attributes(ctx, id); err != nil {
		return nil, err
	}
	if p.Variants, err = r.variants(ctx, id); err != nil {
		return nil, err
	}

	if custom != nil {
		return entity.CustomProduct{Product: p, CustomData: custom}, nil
	}
	return p, nil
}

func (r *ProductRepository) scanProduct(ctx context.Context, operation, query string, arg any, ident string) (p *entity.Product, custom entity.CustomData, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var (
		id        int64
		rawCustom []byte
		taxonID   *int64
		taxonCode *string
		taxonPos  *int
	)
	p = &entity.Product{}
	err = r.db.QueryRow(ctx, query, arg).Scan(&id, &p.Code, &p.Enabled, &rawCustom, &taxonID, &taxonCode, &taxonPos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NotFound("product", ident)
		}
		return nil, nil, fmt.Errorf("get product %s: %w", ident, err)
	}
	p.ID = &id
	p.MainTaxon = taxon(taxonID, taxonCode, taxonPos)

	if custom, err = decodeCustomData(rawCustom); err != nil {
		return nil, nil, fmt.Errorf("decode custom data of product %s: %w", ident, err)
	}
	return p, custom, nil
}

func (r *ProductRepository) translations(ctx context.Context, productID int64) ([]domain.ProductTranslation, error) {
	var out []domain.ProductTranslation
	err := r.query(ctx, "ListProductTranslations", selectTranslations, func(rows pgx.Rows) error {
		t := &entity.Translation{}
		var raw []byte
		if err := rows.Scan(&t.Locale, &t.Name, &t.Slug, &t.Description, &t.ShortDescription,
			&t.MetaKeywords, &t.MetaDescription, &raw); err != nil {
			return err
		}
		custom, err := decodeCustomData(raw)
		if err != nil {
			return fmt.Errorf("translation %s: %w", t.Locale, err)
		}
		if custom != nil {
			out = append(out, entity.CustomTranslation{Translation: t, CustomData: custom})
			return nil
		}
		out = append(out, t)
		return nil
	}, productID)
	return out, err
}

func (r *ProductRepository) images(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	var out []domain.ProductImage
	err := r.query(ctx, "ListProductImages", selectImages, func(rows pgx.Rows) error {
		var (
			id  int64
			raw []byte
		)
		img := &entity.Image{ID: &id}
		if err := rows.Scan(&id, &img.Type, &img.Path, &raw); err != nil {
			return err
		}
		custom, err := decodeCustomData(raw)
		if err != nil {
			return fmt.Errorf("image %d: %w", id, err)
		}
		if custom != nil {
			out = append(out, entity.CustomImage{Image: img, CustomData: custom})
			return nil
		}
		out = append(out, img)
		return nil
	}, productID)
	return out, err
}

func (r *ProductRepository) productTaxons(ctx context.Context, productID int64) ([]domain.ProductTaxon, error) {
	var out []domain.ProductTaxon
	err := r.query(ctx, "ListProductTaxons", selectProductTaxons, func(rows pgx.Rows) error {
		var (
			id        int64
			raw       []byte
			taxonID   *int64
			taxonCode *string
			taxonPos  *int
		)
		link := &entity.ProductTaxon{ID: &id}
		if err := rows.Scan(&id, &link.Position, &raw, &taxonID, &taxonCode, &taxonPos); err != nil {
			return err
		}
		link.Taxon = taxon(taxonID, taxonCode, taxonPos)

		custom, err := decodeCustomData(raw)
		if err != nil {
			return fmt.Errorf("product taxon %d: %w", id, err)
		}
		if custom != nil {
			out = append(out, entity.CustomProductTaxon{ProductTaxon: link, CustomData: custom})
			return nil
		}
		out = append(out, link)
		return nil
	}, productID)
	return out, err
}

func (r *ProductRepository) attributes(ctx context.Context, productID int64) ([]domain.ProductAttributeValue, error) {
	var out []domain.ProductAttributeValue
	err := r.query(ctx, "ListProductAttributes", selectAttributes, func(rows pgx.Rows) error {
		var (
			id       int64
			rawValue []byte
			raw      []byte
		)
		av := &entity.AttributeValue{ID: &id}
		if err := rows.Scan(&id, &av.Code, &av.Type, &av.LocaleCode, &rawValue, &raw); err != nil {
			return err
		}
		if rawValue != nil {
			if err := decodeJSON(rawValue, &av.Value); err != nil {
				return fmt.Errorf("attribute %s value: %w", av.Code, err)
			}
		}

		custom, err := decodeCustomData(raw)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", av.Code, err)
		}
		if custom != nil {
			out = append(out, entity.CustomAttributeValue{AttributeValue: av, CustomData: custom})
			return nil
		}
		out = append(out, av)
		return nil
	}, productID)
	return out, err
}

func (r *ProductRepository) variants(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	var (
		out  []domain.ProductVariant
		byID = make(map[int64]*entity.Variant)
		ids  []int64
	)
	err := r.query(ctx, "ListProductVariants", selectVariants, func(rows pgx.Rows) error {
		var (
			id  int64
			raw []byte
		)
		v := &entity.Variant{
			ID:              &id,
			Translations:    []entity.VariantTranslation{},
			ChannelPricings: []entity.ChannelPricing{},
			OptionValues:    []entity.OptionValue{},
		}
		if err := rows.Scan(&id, &v.Code, &v.Position, &v.Enabled, &v.OnHold, &v.OnHand, &v.Tracked,
			&v.Width, &v.Height, &v.Depth, &v.Weight, &v.ShippingRequired, &raw); err != nil {
			return err
		}
		byID[id] = v
		ids = append(ids, id)

		custom, err := decodeCustomData(raw)
		if err != nil {
			return fmt.Errorf("variant %s: %w", v.Code, err)
		}
		if custom != nil {
			out = append(out, entity.CustomVariant{Variant: v, CustomData: custom})
			return nil
		}
		out = append(out, v)
		return nil
	}, productID)
	if err != nil || len(ids) == 0 {
		return out, err
	}

	err = r.query(ctx, "ListVariantTranslations", selectVariantTranslations, func(rows pgx.Rows) error {
		var (
			variantID int64
			t         entity.VariantTranslation
		)
		if err := rows.Scan(&variantID, &t.Locale, &t.Name); err != nil {
			return err
		}
		if v, ok := byID[variantID]; ok {
			v.Translations = append(v.Translations, t)
		}
		return nil
	}, ids)
	if err != nil {
		return nil, err
	}

	err = r.query(ctx, "ListChannelPricings", selectChannelPricings, func(rows pgx.Rows) error {
		var (
			variantID int64
			cp        entity.ChannelPricing
		)
		if err := rows.Scan(&variantID, &cp.ChannelCode, &cp.Price, &cp.OriginalPrice); err != nil {
			return err
		}
		if v, ok := byID[variantID]; ok {
			v.ChannelPricings = append(v.ChannelPricings, cp)
		}
		return nil
	}, ids)
	if err != nil {
		return nil, err
	}

	err = r.query(ctx, "ListVariantOptionValues", selectOptionValues, func(rows pgx.Rows) error {
		var (
			variantID int64
			ov        entity.OptionValue
		)
		if err := rows.Scan(&variantID, &ov.Code, &ov.OptionCode, &ov.Value); err != nil {
			return err
		}
		if v, ok := byID[variantID]; ok {
			v.OptionValues = append(v.OptionValues, ov)
		}
		return nil
	}, ids)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// query runs a traced multi-row query and hands each row to scan.
func (r *ProductRepository) query(ctx context.Context, operation, sql string, scan func(pgx.Rows) error, args ...any) (err error) {
	ctx, end := database.TraceQuery(ctx, operation, sql)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err = scan(rows); err != nil {
			return fmt.Errorf("%s: scan: %w", operation, err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%s: iterate: %w", operation, err)
	}
	return nil
}

// taxon builds a Taxon from LEFT JOIN columns; a NULL id means no taxon.
func taxon(id *int64, code *string, position *int) *entity.Taxon {
	if id == nil {
		return nil
	}
	t := &entity.Taxon{ID: id, Position: position}
	if code != nil {
		t.Code = *code
	}
	return t
}

// decodeCustomData returns nil for a NULL or JSON null column, which marks
// the row as a plain entity.
func decodeCustomData(raw []byte) (entity.CustomData, error) {
	if raw == nil {
		return nil, nil
	}
	var data map[string]any
	if err := decodeJSON(raw, &data); err != nil {
		return nil, fmt.Errorf("custom data: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return entity.CustomData(data), nil
}

// decodeJSON unmarshals a jsonb column keeping numbers as json.Number, so
// integers beyond float64 precision are not rounded.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
