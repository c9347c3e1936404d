// Package entity contains the hydrated catalogue entities returned by the
// repository. Every entity has a plain form and a custom-data form; the latter
// holds a CustomData field and satisfies domain.CustomDataAware.
package entity

import (
	"encoding/json"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
)

// CustomData is a free-form payload attached to an entity.
type CustomData map[string]any

// GetCustomData returns the payload. A nil payload reads as an empty map.
func (c CustomData) GetCustomData() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return c
}

// MarshalJSON encodes a nil payload as an empty object.
func (c CustomData) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(c))
}

// Product is a catalogue product.
type Product struct {
	ID            *int64
	Code          string
	Enabled       bool
	MainTaxon     *Taxon
	Translations  []domain.ProductTranslation
	Images        []domain.ProductImage
	ProductTaxons []domain.ProductTaxon
	Attributes    []domain.ProductAttributeValue
	Variants      []domain.ProductVariant
}

var _ domain.Product = (*Product)(nil)

func (p *Product) GetID() *int64   { return p.ID }
func (p *Product) GetCode() string { return p.Code }
func (p *Product) IsEnabled() bool { return p.Enabled }

// GetMainTaxon returns nil (not a typed nil) when no main taxon is set.
func (p *Product) GetMainTaxon() domain.Taxon {
	if p.MainTaxon == nil {
		return nil
	}
	return p.MainTaxon
}

func (p *Product) GetTranslations() []domain.ProductTranslation  { return p.Translations }
func (p *Product) GetImages() []domain.ProductImage              { return p.Images }
func (p *Product) GetProductTaxons() []domain.ProductTaxon       { return p.ProductTaxons }
func (p *Product) GetAttributes() []domain.ProductAttributeValue { return p.Attributes }
func (p *Product) HasVariants() bool                             { return len(p.Variants) > 0 }
func (p *Product) GetVariants() []domain.ProductVariant          { return p.Variants }

// CustomProduct is a Product carrying custom data.
type CustomProduct struct {
	*Product
	CustomData CustomData
}

func (c CustomProduct) GetCustomData() map[string]any { return c.CustomData.GetCustomData() }

var (
	_ domain.Product         = CustomProduct{}
	_ domain.CustomDataAware = CustomProduct{}
)

// Taxon is a category node.
type Taxon struct {
	ID       *int64
	Code     string
	Position *int
}

var _ domain.Taxon = (*Taxon)(nil)

func (t *Taxon) GetID() *int64     { return t.ID }
func (t *Taxon) GetPosition() *int { return t.Position }

// ProductTaxon links a product to a taxon. Taxon is nil when the link points
// at a taxon that no longer exists.
type ProductTaxon struct {
	ID       *int64
	Position *int
	Taxon    *Taxon
}

var _ domain.ProductTaxon = (*ProductTaxon)(nil)

func (pt *ProductTaxon) GetID() *int64 { return pt.ID }

func (pt *ProductTaxon) GetTaxon() domain.Taxon {
	if pt.Taxon == nil {
		return nil
	}
	return pt.Taxon
}

// CustomProductTaxon is a ProductTaxon carrying custom data.
type CustomProductTaxon struct {
	*ProductTaxon
	CustomData CustomData
}

func (c CustomProductTaxon) GetCustomData() map[string]any { return c.CustomData.GetCustomData() }

// Translation holds the locale-scoped product texts.
type Translation struct {
	Locale           string
	Name             *string
	Slug             *string
	Description      *string
	ShortDescription *string
	MetaKeywords     *string
	MetaDescription  *string
}

var _ domain.ProductTranslation = (*Translation)(nil)

func (t *Translation) GetLocale() string            { return t.Locale }
func (t *Translation) GetName() *string             { return t.Name }
func (t *Translation) GetSlug() *string             { return t.Slug }
func (t *Translation) GetDescription() *string      { return t.Description }
func (t *Translation) GetShortDescription() *string { return t.ShortDescription }
func (t *Translation) GetMetaKeywords() *string     { return t.MetaKeywords }
func (t *Translation) GetMetaDescription() *string  { return t.MetaDescription }

// CustomTranslation is a Translation carrying custom data.
type CustomTranslation struct {
	*Translation
	CustomData CustomData
}

func (c CustomTranslation) GetCustomData() map[string]any { return c.CustomData.GetCustomData() }

// Image is a product image.
type Image struct {
	ID   *int64
	Type *string
	Path *string
}

var _ domain.ProductImage = (*Image)(nil)

func (i *Image) GetID() *int64    { return i.ID }
func (i *Image) GetType() *string { return i.Type }
func (i *Image) GetPath() *string { return i.Path }

// CustomImage is an Image carrying custom data.
type CustomImage struct {
	*Image
	CustomData CustomData
}

func (c CustomImage) GetCustomData() map[string]any { return c.CustomData.GetCustomData() }

// AttributeValue is a product attribute value.
type AttributeValue struct {
	ID         *int64
	Code       string
	Type       string
	LocaleCode *string
	Value      any
}

var _ domain.ProductAttributeValue = (*AttributeValue)(nil)

func (a *AttributeValue) GetID() *int64          { return a.ID }
func (a *AttributeValue) GetCode() string        { return a.Code }
func (a *AttributeValue) GetType() string        { return a.Type }
func (a *AttributeValue) GetLocaleCode() *string { return a.LocaleCode }
func (a *AttributeValue) GetValue() any          { return a.Value }

// CustomAttributeValue is an AttributeValue carrying custom data.
type CustomAttributeValue struct {
	*AttributeValue
	CustomData CustomData
}

func (c CustomAttributeValue) GetCustomData() map[string]any { return c.CustomData.GetCustomData() }

var (
	_ domain.CustomDataAware = CustomProductTaxon{}
	_ domain.CustomDataAware = CustomTranslation{}
	_ domain.CustomDataAware = CustomImage{}
	_ domain.CustomDataAware = CustomAttributeValue{}
)
