package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrNotObject = errors.New("product payload must be a JSON object")

// Product is the canonical add-to-cart input. ID wins over AltID when both are set.
type Product struct {
	ID        string
	AltID     string
	Title     string
	UnitPrice decimal.Decimal
	Currency  string
	ImageURL  string
	ShopID    string
	ShopName  string
}

// Identity returns the product key used for merge-by-identity.
func (p Product) Identity() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return strings.TrimSpace(p.AltID)
}

func (p Product) lineItem(id string, quantity int) LineItem {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = DefaultTitle
	}
	shopName := strings.TrimSpace(p.ShopName)
	if shopName == "" {
		shopName = DefaultShopName
	}
	price := p.UnitPrice
	if price.IsNegative() {
		price = decimal.Zero
	}
	return LineItem{
		ProductID: id,
		Title:     title,
		UnitPrice: price,
		Currency:  NormalizeCurrency(p.Currency),
		ImageURL:  strings.TrimSpace(p.ImageURL),
		ShopID:    strings.TrimSpace(p.ShopID),
		ShopName:  shopName,
		Quantity:  atLeastOne(quantity),
	}
}

// Shape tags the upstream payload layouts a product can arrive in.
type Shape int

const (
	// ShapeCatalog is the listing layout: id, title or name, price, image.
	ShapeCatalog Shape = iota
	// ShapeDocument is the document-store layout: _id, name, price, images[], nested shop.
	ShapeDocument
	// ShapeLineItem is a cart line fed back in: productId, unitPrice, imageUrl.
	ShapeLineItem
)

func (s Shape) String() string {
	switch s {
	case ShapeDocument:
		return "document"
	case ShapeLineItem:
		return "line_item"
	default:
		return "catalog"
	}
}

type fieldPaths struct {
	id, altID, title, price, currency, image, shopID, shopName []string
}

var shapeFields = map[Shape]fieldPaths{
	ShapeCatalog: {
		id:       []string{"id"},
		altID:    []string{"_id", "productId"},
		title:    []string{"title", "name"},
		price:    []string{"price", "unitPrice"},
		currency: []string{"currency"},
		image:    []string{"image", "imageUrl", "images.0"},
		shopID:   []string{"shopId", "shop.id", "shop._id"},
		shopName: []string{"shopName", "shop.name"},
	},
	ShapeDocument: {
		id:       []string{"_id"},
		altID:    []string{"id"},
		title:    []string{"title", "name"},
		price:    []string{"price", "unitPrice"},
		currency: []string{"currency"},
		image:    []string{"images.0", "image", "imageUrl"},
		shopID:   []string{"shop._id", "shop.id", "shopId"},
		shopName: []string{"shop.name", "shopName"},
	},
	ShapeLineItem: {
		id:       []string{"productId"},
		altID:    []string{"id", "_id"},
		title:    []string{"title", "name"},
		price:    []string{"unitPrice", "price"},
		currency: []string{"currency"},
		image:    []string{"imageUrl", "image"},
		shopID:   []string{"shopId"},
		shopName: []string{"shopName"},
	},
}

// DetectShape classifies a decoded payload.
func DetectShape(raw map[string]any) Shape {
	if _, ok := raw["productId"]; ok {
		return ShapeLineItem
	}
	if _, ok := raw["_id"]; ok {
		return ShapeDocument
	}
	return ShapeCatalog
}

// ParseProduct decodes any supported upstream JSON layout into a Product. Only a
// payload that is not a JSON object is rejected; every field is otherwise defaulted.
func ParseProduct(data []byte) (Product, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return Product{}, err
	}
	return ProductFromMap(raw), nil
}

// ProductFromMap normalizes an already decoded payload.
func ProductFromMap(raw map[string]any) Product {
	paths := shapeFields[DetectShape(raw)]
	return Product{
		ID:        firstString(raw, paths.id),
		AltID:     firstString(raw, paths.altID),
		Title:     firstString(raw, paths.title),
		UnitPrice: firstPrice(raw, paths.price),
		Currency:  firstString(raw, paths.currency),
		ImageURL:  firstString(raw, paths.image),
		ShopID:    firstString(raw, paths.shopID),
		ShopName:  firstString(raw, paths.shopName),
	}
}

// NormalizeCurrency upper-cases a currency code, canonicalizing recognized ISO 4217
// codes and defaulting to USD when empty.
func NormalizeCurrency(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return DefaultCurrency
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String()
	}
	return code
}

// AddQuantity coerces a requested add quantity to an integer of at least 1.
func AddQuantity(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// TargetQuantity maps a requested quantity to what UpdateQuantity applies. Zero means
// the line is removed; positive fractions below one round up to one.
func TargetQuantity(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return atLeastOne(int(math.Floor(v)))
}

// NumberValue reads a loosely typed numeric value (number or numeric string).
func NumberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, ErrNotObject
	}
	return raw, nil
}

func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func firstString(raw map[string]any, paths []string) string {
	for _, path := range paths {
		v, ok := lookup(raw, path)
		if !ok {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPrice(raw map[string]any, paths []string) decimal.Decimal {
	for _, path := range paths {
		v, ok := lookup(raw, path)
		if !ok {
			continue
		}
		if price, ok := priceValue(v); ok {
			return price
		}
	}
	return decimal.Zero
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return ""
}

func priceValue(v any) (decimal.Decimal, bool) {
	var (
		price decimal.Decimal
		err   error
	)
	switch p := v.(type) {
	case json.Number:
		price, err = decimal.NewFromString(p.String())
	case string:
		price, err = decimal.NewFromString(strings.TrimSpace(p))
	case float64:
		price = decimal.NewFromFloat(p)
	case int:
		price = decimal.NewFromInt(int64(p))
	default:
		return decimal.Zero, false
	}
	if err != nil {
		return decimal.Zero, false
	}
	if price.IsNegative() {
		return decimal.Zero, true
	}
	return price, true
}
