package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProductShapes(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantShape Shape
		want      Product
		wantPrice string
	}{
		{
			name:      "catalog",
			payload:   `{"id":"c1","title":"Lamp","price":12.5,"image":"https://img/1.png","shopId":"s1","shopName":"Lights"}`,
			wantShape: ShapeCatalog,
			want:      Product{ID: "c1", Title: "Lamp", ImageURL: "https://img/1.png", ShopID: "s1", ShopName: "Lights"},
			wantPrice: "12.5",
		},
		{
			name:      "catalog with name",
			payload:   `{"id":7,"name":"Mug","price":"3"}`,
			wantShape: ShapeCatalog,
			want:      Product{ID: "7", Title: "Mug"},
			wantPrice: "3",
		},
		{
			name:      "document",
			payload:   `{"_id":"d1","name":"Chair","price":99,"currency":"eur","images":["a.png","b.png"],"shop":{"_id":"s9","name":"Seats"}}`,
			wantShape: ShapeDocument,
			want:      Product{ID: "d1", Title: "Chair", Currency: "eur", ImageURL: "a.png", ShopID: "s9", ShopName: "Seats"},
			wantPrice: "99",
		},
		{
			name:      "line item",
			payload:   `{"productId":"l1","title":"Pen","unitPrice":"1.25","imageUrl":"pen.png","quantity":4}`,
			wantShape: ShapeLineItem,
			want:      Product{ID: "l1", Title: "Pen", ImageURL: "pen.png"},
			wantPrice: "1.25",
		},
		{
			name:      "empty object",
			payload:   `{}`,
			wantShape: ShapeCatalog,
			want:      Product{},
			wantPrice: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))
			assert.Equal(t, tt.wantShape, DetectShape(raw))

			got, err := ParseProduct([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, got.UnitPrice.String())

			got.UnitPrice = tt.want.UnitPrice
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProductRejectsNonObjects(t *testing.T) {
	for _, payload := range []string{`[]`, `"p1"`, `42`, `null`, `not json{`} {
		_, err := ParseProduct([]byte(payload))
		assert.ErrorIs(t, err, ErrNotObject, payload)
	}
}

func TestParseProductBadPriceDefaultsToZero(t *testing.T) {
	got, err := ParseProduct([]byte(`{"id":"x","price":"free"}`))
	require.NoError(t, err)
	assert.True(t, got.UnitPrice.IsZero())

	got, err = ParseProduct([]byte(`{"id":"x","price":-4}`))
	require.NoError(t, err)
	assert.True(t, got.UnitPrice.IsZero())
}

func TestProductIdentity(t *testing.T) {
	assert.Equal(t, "a", Product{ID: " a ", AltID: "b"}.Identity())
	assert.Equal(t, "b", Product{AltID: "b"}.Identity())
	assert.Empty(t, Product{}.Identity())
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(""))
	assert.Equal(t, "EUR", NormalizeCurrency("eur"))
	assert.Equal(t, "JPY", NormalizeCurrency(" jpy "))
	assert.Equal(t, "POINTS", NormalizeCurrency("points"))
}

func TestAddQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: 2, want: 2},
		{in: 2.9, want: 2},
		{in: 0.5, want: 1},
		{in: 0, want: 1},
		{in: -3, want: 1},
		{in: math.NaN(), want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddQuantity(tt.in), "AddQuantity(%v)", tt.in)
	}
}

func TestTargetQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: 3, want: 3},
		{in: 3.7, want: 3},
		{in: 0.4, want: 1},
		{in: 0, want: 0},
		{in: -1, want: 0},
		{in: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetQuantity(tt.in), "TargetQuantity(%v)", tt.in)
	}
}

func TestNumberValue(t *testing.T) {
	v, ok := NumberValue(json.Number("2.5"))
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	v, ok = NumberValue(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = NumberValue("four")
	assert.False(t, ok)
	_, ok = NumberValue(true)
	assert.False(t, ok)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "catalog", ShapeCatalog.String())
	assert.Equal(t, "document", ShapeDocument.String())
	assert.Equal(t, "line_item", ShapeLineItem.String())
}
