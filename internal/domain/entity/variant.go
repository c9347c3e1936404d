package entity

import (
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
)

// Variant is a purchasable SKU of a product. Its fields are tagged with
// serialization groups: identity in Default, stock, dimensions and nested
// collections in Detailed. Fields without a groups tag are never emitted once
// groups are requested.
type Variant struct {
	ID               *int64               `json:"id" groups:"Default"`
	Code             string               `json:"code" groups:"Default"`
	Position         *int                 `json:"position" groups:"Detailed"`
	Enabled          bool                 `json:"enabled" groups:"Detailed"`
	OnHold           int                  `json:"onHold" groups:"Detailed"`
	OnHand           int                  `json:"onHand" groups:"Detailed"`
	Tracked          bool                 `json:"tracked" groups:"Detailed"`
	Width            *float64             `json:"width" groups:"Detailed"`
	Height           *float64             `json:"height" groups:"Detailed"`
	Depth            *float64             `json:"depth" groups:"Detailed"`
	Weight           *float64             `json:"weight" groups:"Detailed"`
	ShippingRequired bool                 `json:"shippingRequired" groups:"Detailed"`
	Translations     []VariantTranslation `json:"translations" groups:"Detailed"`
	ChannelPricings  []ChannelPricing     `json:"channelPricings" groups:"Detailed"`
	OptionValues     []OptionValue        `json:"optionValues" groups:"Detailed"`
}

var _ domain.ProductVariant = (*Variant)(nil)

func (v *Variant) GetID() *int64   { return v.ID }
func (v *Variant) GetCode() string { return v.Code }

// CustomVariant is a Variant carrying custom data, emitted in the CustomData
// serialization group.
type CustomVariant struct {
	*Variant
	CustomData CustomData `json:"customData" groups:"CustomData"`
}

func (v CustomVariant) GetCustomData() map[string]any { return v.CustomData.GetCustomData() }

var (
	_ domain.ProductVariant  = CustomVariant{}
	_ domain.CustomDataAware = CustomVariant{}
)

// VariantTranslation holds the locale-scoped name of a variant.
type VariantTranslation struct {
	Locale string  `json:"locale" groups:"Default,Detailed"`
	Name   *string `json:"name" groups:"Default,Detailed"`
}

// ChannelPricing is the price of a variant in a sales channel, in minor units.
type ChannelPricing struct {
	ChannelCode   string `json:"channelCode" groups:"Default,Detailed"`
	Price         *int64 `json:"price" groups:"Default,Detailed"`
	OriginalPrice *int64 `json:"originalPrice" groups:"Default,Detailed"`
}

// OptionValue is a product option value (e.g. size M) selected by a variant.
type OptionValue struct {
	Code       string `json:"code" groups:"Default,Detailed"`
	OptionCode string `json:"optionCode" groups:"Default,Detailed"`
	Value      string `json:"value" groups:"Detailed"`
}
