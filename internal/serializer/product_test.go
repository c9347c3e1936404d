package serializer

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain/entity"
)

// --- Mock VariantSerializer ---

type mockVariantSerializer struct {
	mock.Mock
}

func (m *mockVariantSerializer) Serialize(variants []domain.ProductVariant, groups []string) ([]map[string]any, error) {
	args := m.Called(variants, groups)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

// --- Helpers ---

func int64Ptr(n int64) *int64 { return &n }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func mugProduct() *entity.Product {
	return &entity.Product{
		ID:      int64Ptr(1),
		Code:    "MUG-01",
		Enabled: true,
		Translations: []domain.ProductTranslation{
			&entity.Translation{Locale: "en_US", Name: strPtr("Mug")},
		},
	}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// --- Tests ---

func TestSerialize_MugExample(t *testing.T) {
	variants := new(mockVariantSerializer)
	s := NewProductSerializer(variants)

	payload, err := s.Serialize(mugProduct())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1,
		"code": "MUG-01",
		"enabled": true,
		"mainTaxonId": null,
		"productTaxons": [],
		"translations": [{
			"locale": "en_US",
			"name": "Mug",
			"slug": null,
			"description": null,
			"shortDescription": null,
			"metaKeywords": null,
			"metaDescription": null,
			"customData": {}
		}],
		"attributes": [],
		"images": [],
		"customData": {},
		"variants": []
	}`, toJSON(t, payload))

	variants.AssertNotCalled(t, "Serialize", mock.Anything, mock.Anything)
}

func TestSerialize_KeyOrder(t *testing.T) {
	s := NewProductSerializer(new(mockVariantSerializer))

	payload, err := s.Serialize(&entity.Product{Code: "EMPTY"})
	require.NoError(t, err)

	assert.Equal(t,
		`{"id":null,"code":"EMPTY","enabled":false,"mainTaxonId":null,"productTaxons":[],"translations":[],"attributes":[],"images":[],"customData":{},"variants":[]}`,
		toJSON(t, payload),
	)
}

func TestSerialize_MainTaxon(t *testing.T) {
	s := NewProductSerializer(new(mockVariantSerializer))

	t.Run("with main taxon", func(t *testing.T) {
		p := mugProduct()
		p.MainTaxon = &entity.Taxon{ID: int64Ptr(42), Code: "mugs"}

		payload, err := s.Serialize(p)
		require.NoError(t, err)
		require.NotNil(t, payload.MainTaxonID)
		assert.Equal(t, int64(42), *payload.MainTaxonID)
	})

	t.Run("without main taxon", func(t *testing.T) {
		payload, err := s.Serialize(mugProduct())
		require.NoError(t, err)
		assert.Nil(t, payload.MainTaxonID)
	})

	t.Run("main taxon without identity", func(t *testing.T) {
		p := mugProduct()
		p.MainTaxon = &entity.Taxon{Code: "unsaved"}

		payload, err := s.Serialize(p)
		require.NoError(t, err)
		assert.Nil(t, payload.MainTaxonID)
	})
}

func TestSerialize_ProductTaxons(t *testing.T) {
	s := NewProductSerializer(new(mockVariantSerializer))

	p := mugProduct()
	p.ProductTaxons = []domain.ProductTaxon{
		&entity.ProductTaxon{ID: int64Ptr(10), Position: intPtr(99), Taxon: &entity.Taxon{ID: int64Ptr(5), Position: intPtr(3)}},
		&entity.ProductTaxon{ID: int64Ptr(11), Taxon: nil},
		entity.CustomProductTaxon{
			ProductTaxon: &entity.ProductTaxon{ID: int64Ptr(12), Taxon: &entity.Taxon{ID: int64Ptr(6), Position: intPtr(0)}},
			CustomData:   entity.CustomData{"featured": true},
		},
	}

	payload, err := s.Serialize(p)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id": 10, "taxonId": 5, "position": 3, "customData": {}},
		{"id": 12, "taxonId": 6, "position": 0, "customData": {"featured": true}}
	]`, toJSON(t, payload.ProductTaxons))
}

func TestSerialize_ImagesAndAttributes(t *testing.T) {
	s := NewProductSerializer(new(mockVariantSerializer))

	p := mugProduct()
	p.Images = []domain.ProductImage{
		&entity.Image{ID: int64Ptr(3), Type: strPtr("main"), Path: strPtr("ab/cd/mug.jpg")},
		entity.CustomImage{
			Image:      &entity.Image{ID: int64Ptr(4), Path: strPtr("ab/cd/mug-side.jpg")},
			CustomData: entity.CustomData{"alt": "Side view"},
		},
	}
	p.Attributes = []domain.ProductAttributeValue{
		&entity.AttributeValue{ID: int64Ptr(7), Code: "material", Type: "text", LocaleCode: strPtr("en_US"), Value: "ceramic"},
		entity.CustomAttributeValue{
			AttributeValue: &entity.AttributeValue{ID: int64Ptr(8), Code: "capacity", Type: "integer", Value: 350},
			CustomData:     entity.CustomData{"unit": "ml"},
		},
	}

	payload, err := s.Serialize(p)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id": 3, "type": "main", "path": "ab/cd/mug.jpg", "customData": {}},
		{"id": 4, "type": null, "path": "ab/cd/mug-side.jpg", "customData": {"alt": "Side view"}}
	]`, toJSON(t, payload.Images))
	assert.JSONEq(t, `[
		{"id": 7, "code": "material", "type": "text", "localeCode": "en_US", "value": "ceramic", "customData": {}},
		{"id": 8, "code": "capacity", "type": "integer", "localeCode": null, "value": 350, "customData": {"unit": "ml"}}
	]`, toJSON(t, payload.Attributes))
}

func TestSerialize_CustomData(t *testing.T) {
	s := NewProductSerializer(new(mockVariantSerializer))

	t.Run("product without capability", func(t *testing.T) {
		payload, err := s.Serialize(mugProduct())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, payload.CustomData)
	})

	t.Run("product with capability is used verbatim", func(t *testing.T) {
		data := entity.CustomData{"erpId": "A-17", "tags": []any{"kitchen"}}
		payload, err := s.Serialize(entity.CustomProduct{Product: mugProduct(), CustomData: data})
		require.NoError(t, err)
		assert.Equal(t, map[string]any(data), payload.CustomData)
	})

	t.Run("translation with capability", func(t *testing.T) {
		p := mugProduct()
		p.Translations = []domain.ProductTranslation{
			entity.CustomTranslation{
				Translation: &entity.Translation{Locale: "de_DE", Name: strPtr("Tasse")},
				CustomData:  entity.CustomData{"seoTitle": "Tasse kaufen"},
			},
		}
		payload, err := s.Serialize(p)
		require.NoError(t, err)
		require.Len(t, payload.Translations, 1)
		assert.Equal(t, map[string]any{"seoTitle": "Tasse kaufen"}, payload.Translations[0].CustomData)
	})
}

func TestSerialize_VariantsDelegated(t *testing.T) {
	variants := new(mockVariantSerializer)
	s := NewProductSerializer(variants)

	p := mugProduct()
	p.Variants = []domain.ProductVariant{&entity.Variant{ID: int64Ptr(20), Code: "MUG-01-RED"}}

	expected := []map[string]any{{"id": json.Number("20"), "code": "MUG-01-RED"}}
	variants.On("Serialize", p.Variants, []string{"Default", "Detailed", "CustomData"}).Return(expected, nil)

	payload, err := s.Serialize(p)
	require.NoError(t, err)
	assert.Equal(t, expected, payload.Variants)
	variants.AssertExpectations(t)
}

func TestSerialize_VariantSerializerFailurePropagates(t *testing.T) {
	variants := new(mockVariantSerializer)
	s := NewProductSerializer(variants)

	p := mugProduct()
	p.Variants = []domain.ProductVariant{&entity.Variant{Code: "MUG-01-RED"}}

	boom := errors.New("malformed json")
	variants.On("Serialize", mock.Anything, mock.Anything).Return(nil, boom)

	payload, err := s.Serialize(p)
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "MUG-01")
}

func TestSerialize_NilVariantResultBecomesEmpty(t *testing.T) {
	variants := new(mockVariantSerializer)
	s := NewProductSerializer(variants)

	p := mugProduct()
	p.Variants = []domain.ProductVariant{&entity.Variant{Code: "MUG-01-RED"}}
	variants.On("Serialize", mock.Anything, mock.Anything).Return([]map[string]any(nil), nil)

	payload, err := s.Serialize(p)
	require.NoError(t, err)
	assert.NotNil(t, payload.Variants)
	assert.Empty(t, payload.Variants)
}

func TestSerialize_ConcurrentCalls(t *testing.T) {
	s := NewProductSerializer(NewJSONVariantSerializer())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			p := mugProduct()
			p.ID = int64Ptr(id)
			p.Variants = []domain.ProductVariant{&entity.Variant{ID: int64Ptr(id * 10), Code: "V"}}

			payload, err := s.Serialize(p)
			assert.NoError(t, err)
			assert.Equal(t, id, *payload.ID)
			assert.Equal(t, json.Number(strconv.FormatInt(id*10, 10)), payload.Variants[0]["id"])
		}(int64(i))
	}
	wg.Wait()
}
