package request

// Checkout is the delivery form submitted with the active cart. All
// pricing fields are derived server-side; the client never sends
// amounts.
type Checkout struct {
	Name            string `validate:"required"                      json:"name"`
	Phone           string `validate:"required"                      json:"phone"`
	Email           string `validate:"required,email"                json:"email"`
	Address         string `validate:"required"                      json:"address"`
	Landmark        string `validate:"required"                      json:"landmark"`
	AdditionalPhone string `validate:"omitempty"                     json:"additional_phone"`
	PinCode         string `validate:"omitempty"                     json:"pin_code"`
	DeliveryDate    string `validate:"required,datetime=2006-01-02"  json:"delivery_date"`
	TimeSlot        string `validate:"required,oneof=morning evening" json:"time_slot"`
	PaymentMethod   string `validate:"omitempty,oneof=cod upi card"  json:"payment_method"`
}
