package serializer

import (
	"fmt"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
)

// ProductPayload is the record published for a product. Key names are part of
// the contract with downstream consumers and must not change.
type ProductPayload struct {
	ID            *int64                `json:"id"`
	Code          string                `json:"code"`
	Enabled       bool                  `json:"enabled"`
	MainTaxonID   *int64                `json:"mainTaxonId"`
	ProductTaxons []ProductTaxonPayload `json:"productTaxons"`
	Translations  []TranslationPayload  `json:"translations"`
	Attributes    []AttributePayload    `json:"attributes"`
	Images        []ImagePayload        `json:"images"`
	CustomData    map[string]any        `json:"customData"`
	Variants      []map[string]any      `json:"variants"`
}

// ProductTaxonPayload describes a product-taxon link. Position is taken from
// the taxon, not from the link.
type ProductTaxonPayload struct {
	ID         *int64         `json:"id"`
	TaxonID    *int64         `json:"taxonId"`
	Position   *int           `json:"position"`
	CustomData map[string]any `json:"customData"`
}

// TranslationPayload describes a product translation.
type TranslationPayload struct {
	Locale           string         `json:"locale"`
	Name             *string        `json:"name"`
	Slug             *string        `json:"slug"`
	Description      *string        `json:"description"`
	ShortDescription *string        `json:"shortDescription"`
	MetaKeywords     *string        `json:"metaKeywords"`
	MetaDescription  *string        `json:"metaDescription"`
	CustomData       map[string]any `json:"customData"`
}

// ImagePayload describes a product image.
type ImagePayload struct {
	ID         *int64         `json:"id"`
	Type       *string        `json:"type"`
	Path       *string        `json:"path"`
	CustomData map[string]any `json:"customData"`
}

// AttributePayload describes a product attribute value.
type AttributePayload struct {
	ID         *int64         `json:"id"`
	Code       string         `json:"code"`
	Type       string         `json:"type"`
	LocaleCode *string        `json:"localeCode"`
	Value      any            `json:"value"`
	CustomData map[string]any `json:"customData"`
}

// ProductSerializer maps a product entity graph to a ProductPayload. It holds
// no mutable state and is safe for concurrent use.
type ProductSerializer struct {
	variants VariantSerializer
}

// NewProductSerializer creates a ProductSerializer delegating variant
// serialization to the given VariantSerializer.
func NewProductSerializer(variants VariantSerializer) *ProductSerializer {
	return &ProductSerializer{variants: variants}
}

// Serialize maps product to its payload. Errors from the variant serializer
// are returned unchanged apart from wrapping; there is no retry or partial
// result.
func (s *ProductSerializer) Serialize(product domain.Product) (*ProductPayload, error) {
	variants, err := s.serializeVariants(product)
	if err != nil {
		return nil, fmt.Errorf("serialize variants of product %q: %w", product.GetCode(), err)
	}

	payload := &ProductPayload{
		ID:            product.GetID(),
		Code:          product.GetCode(),
		Enabled:       product.IsEnabled(),
		ProductTaxons: productTaxons(product.GetProductTaxons()),
		Translations:  translations(product.GetTranslations()),
		Attributes:    attributes(product.GetAttributes()),
		Images:        images(product.GetImages()),
		CustomData:    customData(product),
		Variants:      variants,
	}
	if taxon := product.GetMainTaxon(); taxon != nil {
		payload.MainTaxonID = taxon.GetID()
	}

	return payload, nil
}

func (s *ProductSerializer) serializeVariants(product domain.Product) ([]map[string]any, error) {
	if !product.HasVariants() {
		return []map[string]any{}, nil
	}

	variants, err := s.variants.Serialize(product.GetVariants(), VariantGroups)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []map[string]any{}
	}
	return variants, nil
}

func productTaxons(links []domain.ProductTaxon) []ProductTaxonPayload {
	out := make([]ProductTaxonPayload, 0, len(links))
	for _, link := range links {
		taxon := link.GetTaxon()
		if taxon == nil {
			continue
		}
		out = append(out, ProductTaxonPayload{
			ID:         link.GetID(),
			TaxonID:    taxon.GetID(),
			Position:   taxon.GetPosition(),
			CustomData: customData(link),
		})
	}
	return out
}

func translations(in []domain.ProductTranslation) []TranslationPayload {
	out := make([]TranslationPayload, 0, len(in))
	for _, t := range in {
		out = append(out, TranslationPayload{
			Locale:           t.GetLocale(),
			Name:             t.GetName(),
			Slug:             t.GetSlug(),
			Description:      t.GetDescription(),
			ShortDescription: t.GetShortDescription(),
			MetaKeywords:     t.GetMetaKeywords(),
			MetaDescription:  t.GetMetaDescription(),
			CustomData:       customData(t),
		})
	}
	return out
}

func images(in []domain.ProductImage) []ImagePayload {
	out := make([]ImagePayload, 0, len(in))
	for _, img := range in {
		out = append(out, ImagePayload{
			ID:         img.GetID(),
			Type:       img.GetType(),
			Path:       img.GetPath(),
			CustomData: customData(img),
		})
	}
	return out
}

func attributes(in []domain.ProductAttributeValue) []AttributePayload {
	out := make([]AttributePayload, 0, len(in))
	for _, a := range in {
		out = append(out, AttributePayload{
			ID:         a.GetID(),
			Code:       a.GetCode(),
			Type:       a.GetType(),
			LocaleCode: a.GetLocaleCode(),
			Value:      a.GetValue(),
			CustomData: customData(a),
		})
	}
	return out
}

// customData returns the entity's custom data when it has the capability and
// an empty map otherwise.
func customData(v any) map[string]any {
	aware, ok := v.(domain.CustomDataAware)
	if !ok {
		return map[string]any{}
	}
	return aware.GetCustomData()
}
