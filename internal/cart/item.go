package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	DefaultKeyPrefix = "mall_cart_"
	DefaultTitle     = "Product"
	DefaultCurrency  = "USD"
	DefaultShopName  = "Shop"
)

// LineItem is one product row in a cart. ProductID is unique within a cart and
// Quantity is kept at 1 or more by every mutation.
type LineItem struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Currency  string
	ImageURL  string
	ShopID    string
	ShopName  string
	Quantity  int
}

// Subtotal returns UnitPrice * max(1, Quantity).
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(atLeastOne(i.Quantity))))
}

type lineItemJSON struct {
	ProductID string      `json:"productId"`
	Title     string      `json:"title"`
	UnitPrice json.Number `json:"unitPrice"`
	Currency  string      `json:"currency"`
	ImageURL  string      `json:"imageUrl"`
	ShopID    string      `json:"shopId"`
	ShopName  string      `json:"shopName"`
	Quantity  int         `json:"quantity"`
}

// MarshalJSON writes unitPrice as a JSON number so persisted slots stay readable by
// clients that store plain numbers.
func (i LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineItemJSON{
		ProductID: i.ProductID,
		Title:     i.Title,
		UnitPrice: json.Number(i.UnitPrice.String()),
		Currency:  i.Currency,
		ImageURL:  i.ImageURL,
		ShopID:    i.ShopID,
		ShopName:  i.ShopName,
		Quantity:  i.Quantity,
	})
}

// View is an immutable snapshot of a cart's observable state.
type View struct {
	Items     []LineItem
	ItemCount int
	Total     decimal.Decimal
	IsOpen    bool
}

func itemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += atLeastOne(item.Quantity)
	}
	return count
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
