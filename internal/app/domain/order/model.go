package order

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCreditCard = "credit_card"
	PaymentPayPal     = "paypal"
)

// ValidPaymentMethod reports whether method is one of the accepted values.
func ValidPaymentMethod(method string) bool {
	return method == PaymentCreditCard || method == PaymentPayPal
}

// LineItem is one cart entry as submitted by the client. Price and quantity
// are preserved verbatim in the order snapshot; the server recomputes the
// total itself and never trusts a client-declared amount.
type LineItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	ImageURL  string  `json:"image,omitempty"`
	Category  string  `json:"category,omitempty"`
}

// Order is the persisted record of a completed checkout. ProductID keeps the
// legacy single-product linkage (the first line item) alongside the full item
// snapshot. Orders are immutable once written.
type Order struct {
	ID              int64      `json:"id"`
	ProductID       int64      `json:"product_id"`
	TotalAmount     float64    `json:"total_amount"`
	PaymentMethod   string     `json:"payment_method"`
	ShippingAddress string     `json:"shipping_address"`
	Email           string     `json:"email"`
	Items           []LineItem `json:"items"`
	CreatedAt       time.Time  `json:"created_at"`
}
