package request

type AddCartItem struct {
	ProductId string `validate:"required"          json:"product_id"`
	VariantId string `validate:"required"          json:"variant_id"`
	Quantity  int    `validate:"omitempty,gte=1"   json:"quantity"`
}

type UpdateCartItem struct {
	Quantity int `json:"quantity"`
}

type SetPin struct {
	PinCode string `validate:"required,len=6,numeric" json:"pin_code"`
}
