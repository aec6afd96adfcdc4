package response

import (
	"github.com/Alturino/ecfresh/internal/cart"
	"github.com/Alturino/ecfresh/internal/pricing"
)

type Cart struct {
	Items   []cart.Line      `json:"items"`
	Count   int              `json:"count"`
	Pricing pricing.Snapshot `json:"pricing"`
}

type Wishlist struct {
	ProductIds []string `json:"product_ids"`
}
