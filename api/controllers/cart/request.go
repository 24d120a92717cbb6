package cart

import (
	"encoding/json"

	cartsvc "github.com/angelmondragon/mallcart/internal/cart"
	pkgerrors "github.com/angelmondragon/mallcart/pkg/errors"
)

type addItemRequest struct {
	Product  json.RawMessage `json:"product" validate:"required"`
	Quantity *float64        `json:"quantity,omitempty"`
}

func (r addItemRequest) toProduct() (cartsvc.Product, error) {
	product, err := cartsvc.ParseProduct(r.Product)
	if err != nil {
		return cartsvc.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "product must be a JSON object").
			WithDetails(map[string]string{"product": "must be a JSON object"})
	}
	if product.Identity() == "" {
		return cartsvc.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required").
			WithDetails(map[string]string{"product": "has no id"})
	}
	return product, nil
}

func (r addItemRequest) addQuantity() int {
	if r.Quantity == nil {
		return 1
	}
	return cartsvc.AddQuantity(*r.Quantity)
}

type updateItemRequest struct {
	Quantity *float64 `json:"quantity" validate:"required"`
}
