package response

// Order is the checkout confirmation. Persisted is false when the
// sale completed as a guest fallback and was never durably recorded.
type Order struct {
	OrderNumber       string `json:"order_number"`
	DeliveryDateLabel string `json:"delivery_date_label"`
	TimeSlotLabel     string `json:"time_slot_label"`
	Persisted         bool   `json:"persisted"`
}

// DeliveryOption is one selectable delivery date offered at checkout.
type DeliveryOption struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

type TimeSlot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
