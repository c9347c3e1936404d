package jsongroup

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extras map[string]any

func (e extras) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(e))
}

type Base struct {
	ID   int64  `json:"id" groups:"Default"`
	Code string `json:"code" groups:"Default"`
}

type item struct {
	*Base
	OnHand   int      `json:"onHand" groups:"Detailed"`
	Tags     []string `json:"tags,omitempty" groups:"Detailed"`
	Internal string   `json:"-" groups:"Detailed"`
	Untagged string   `json:"untagged"`
	Extras   extras   `json:"customData" groups:"CustomData"`
	Children []item   `json:"children,omitempty" groups:"Detailed"`
}

func sampleItem() item {
	return item{
		Base:     &Base{ID: 7, Code: "MUG-RED"},
		OnHand:   12,
		Internal: "secret",
		Untagged: "dropped",
		Extras:   extras{"color": "red"},
		Children: []item{{Base: &Base{ID: 8, Code: "MUG-RED-S"}}},
	}
}

type identified interface{ key() int64 }

func (i *item) key() int64 { return i.ID }

func TestMarshal_DefaultGroupOnly(t *testing.T) {
	out, err := Marshal(sampleItem(), DefaultGroup)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"code":"MUG-RED"}`, string(out))
}

func TestMarshal_DetailedIncludesNestedAndEmbedded(t *testing.T) {
	out, err := Marshal(sampleItem(), DefaultGroup, "Detailed")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"code": "MUG-RED",
		"onHand": 12,
		"children": [{"id": 8, "code": "MUG-RED-S", "onHand": 0}]
	}`, string(out))
}

func TestMarshal_CustomDataGroup(t *testing.T) {
	out, err := Marshal(sampleItem(), "CustomData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"customData":{"color":"red"}}`, string(out))
}

func TestMarshal_NilMarshalerUsesItsOwnEncoding(t *testing.T) {
	it := sampleItem()
	it.Extras = nil

	out, err := Marshal(it, "CustomData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"customData":{}}`, string(out))
}

func TestMarshal_UntaggedFieldDroppedWhenGroupsRequested(t *testing.T) {
	out, err := Marshal(sampleItem(), DefaultGroup, "Detailed", "CustomData")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "untagged")
	assert.NotContains(t, string(out), "secret")
}

func TestMarshal_InterfaceSliceElementsAreFiltered(t *testing.T) {
	first := sampleItem()
	items := []identified{&first, nil}

	out, err := Marshal(items, DefaultGroup)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"code":"MUG-RED"},null]`, string(out))
}

func TestMarshal_EmptySliceStaysArray(t *testing.T) {
	out, err := Marshal([]item{}, DefaultGroup)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestMarshal_LargeIntegersKeepPrecision(t *testing.T) {
	it := sampleItem()
	it.ID = 9007199254740993

	out, err := Marshal(it, DefaultGroup)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":9007199254740993`)
}

func TestSerialize_Format(t *testing.T) {
	out, err := Serialize(sampleItem(), FormatJSON, NewContext(DefaultGroup))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"code":"MUG-RED"}`, string(out))

	_, err = Serialize(sampleItem(), "xml", NewContext(DefaultGroup))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
