package traderoom

import "time"

// Room statuses.
const (
	StatusOpen    = "open"
	StatusPending = "pending"
	StatusSold    = "sold"
)

// Escrow transaction statuses. completed and disputed are terminal.
const (
	TxnInEscrow         = "in_escrow"
	TxnAwaitingDelivery = "awaiting_delivery"
	TxnCompleted        = "completed"
	TxnDisputed         = "disputed"
)

// Categories is the fixed listing category set.
var Categories = []string{
	"Gaming Accounts",
	"Digital Assets",
	"Game Items",
	"Software & Applications",
	"Courses & E-Learning",
	"Graphics & Design",
	"Social Media Accounts",
	"Others",
}

func validCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Seller is the denormalized account summary embedded in each room.
type Seller struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Transaction is the escrow record attached to a room once a purchase
// starts. At most one non-terminal transaction exists per room; it drives
// the wallet transfer at the completed transition.
type Transaction struct {
	ID            string    `json:"id"`
	BuyerID       string    `json:"buyer_id"`
	SellerID      string    `json:"seller_id"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	DisputeReason string    `json:"dispute_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Room struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       int64        `json:"price"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags,omitempty"`
	Seller      Seller       `json:"seller"`
	Status      string       `json:"status"`
	Images      []string     `json:"images,omitempty"`
	PreviewFile string       `json:"preview_file,omitempty"`
	Messages    []Message    `json:"messages"`
	Transaction *Transaction `json:"transaction,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Filters narrows and orders List results. Sort is one of newest, oldest,
// price_asc, price_desc; newest when empty.
type Filters struct {
	Category string
	MinPrice int64
	MaxPrice int64
	Search   string
	Sort     string
}
