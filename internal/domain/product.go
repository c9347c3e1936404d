package domain

// CustomDataAware is implemented by entities that carry a free-form custom data
// payload. Entities without the capability are serialized with an empty map.
type CustomDataAware interface {
	GetCustomData() map[string]any
}

// Taxon is a category node a product can be classified under.
type Taxon interface {
	GetID() *int64
	GetPosition() *int
}

// ProductTaxon links a product to a taxon. GetTaxon returns nil when the
// referenced taxon no longer exists.
type ProductTaxon interface {
	GetID() *int64
	GetTaxon() Taxon
}

// ProductTranslation holds the locale-scoped texts of a product.
type ProductTranslation interface {
	GetLocale() string
	GetName() *string
	GetSlug() *string
	GetDescription() *string
	GetShortDescription() *string
	GetMetaKeywords() *string
	GetMetaDescription() *string
}

// ProductImage is an image attached to a product.
type ProductImage interface {
	GetID() *int64
	GetType() *string
	GetPath() *string
}

// ProductAttributeValue is the value of a product attribute, optionally
// scoped to a locale.
type ProductAttributeValue interface {
	GetID() *int64
	GetCode() string
	GetType() string
	GetLocaleCode() *string
	GetValue() any
}

// ProductVariant is a purchasable SKU of a product. Variants are serialized by
// group selection rather than field by field, so the interface only exposes
// what is needed for logging and lookups.
type ProductVariant interface {
	GetID() *int64
	GetCode() string
}

// Product is the root of the catalogue entity graph.
type Product interface {
	GetID() *int64
	GetCode() string
	IsEnabled() bool
	GetMainTaxon() Taxon
	GetTranslations() []ProductTranslation
	GetImages() []ProductImage
	GetProductTaxons() []ProductTaxon
	GetAttributes() []ProductAttributeValue
	HasVariants() bool
	GetVariants() []ProductVariant
}
