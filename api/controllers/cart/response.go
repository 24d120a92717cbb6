package cart

import (
	"encoding/json"

	cartsvc "github.com/angelmondragon/mallcart/internal/cart"
)

type lineItem struct {
	ProductID string      `json:"productId"`
	Title     string      `json:"title"`
	UnitPrice json.Number `json:"unitPrice"`
	Currency  string      `json:"currency"`
	ImageURL  string      `json:"imageUrl"`
	ShopID    string      `json:"shopId"`
	ShopName  string      `json:"shopName"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
}

type cartView struct {
	Items     []lineItem  `json:"items"`
	ItemCount int         `json:"itemCount"`
	Total     json.Number `json:"total"`
	IsOpen    bool        `json:"isOpen"`
}

func newCartView(view cartsvc.View) cartView {
	items := make([]lineItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, lineItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: json.Number(item.UnitPrice.String()),
			Currency:  item.Currency,
			ImageURL:  item.ImageURL,
			ShopID:    item.ShopID,
			ShopName:  item.ShopName,
			Quantity:  item.Quantity,
			Subtotal:  json.Number(item.Subtotal().String()),
		})
	}
	return cartView{
		Items:     items,
		ItemCount: view.ItemCount,
		Total:     json.Number(view.Total.String()),
		IsOpen:    view.IsOpen,
	}
}
