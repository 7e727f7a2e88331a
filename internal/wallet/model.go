package wallet

import "time"

// StartingBalance is granted to every wallet on first touch, recorded as the
// welcome bonus transaction.
const StartingBalance int64 = 1000

const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
	TypeTrade      = "trade"
)

const (
	StatusCompleted  = "completed"
	StatusProcessing = "processing"
	StatusPending    = "pending"
	StatusFailed     = "failed"
)

// Payout holds the destination details of a withdrawal request.
type Payout struct {
	UPIID         string `json:"upi_id,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
}

// Transaction is one immutable ledger entry. Only Status may change after
// the fact, during async settlement of a processing entry.
type Transaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	Counterparty string    `json:"counterparty,omitempty"` // other account in a trade
	OrderID      string    `json:"order_id,omitempty"`     // deposit gateway order
	Reference    string    `json:"reference,omitempty"`    // escrow transaction id
	Payout       *Payout   `json:"payout,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Wallet is one account's ledger. Balance and Escrow never go negative;
// Transactions are most-recent-first and append-only.
type Wallet struct {
	AccountID    string        `json:"account_id"`
	Balance      int64         `json:"balance"`
	Escrow       int64         `json:"escrow"`
	Transactions []Transaction `json:"transactions"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (w *Wallet) prepend(t Transaction) {
	w.Transactions = append([]Transaction{t}, w.Transactions...)
}
