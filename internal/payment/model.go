package payment

import "time"

const (
	StatusCreated = "created"
	StatusPaid    = "paid"
)

// Order is a pending deposit awaiting the gateway callback. It transitions
// to paid exactly once; TransactionID records the single wallet credit so a
// replayed callback can return it instead of crediting again.
type Order struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Amount        int64     `json:"amount"` // coins
	Status        string    `json:"status"`
	PaymentID     string    `json:"payment_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Checkout is what the client hands to the external gateway widget.
type Checkout struct {
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"` // gateway subunits (coins * 100)
	Currency string `json:"currency"`
}
