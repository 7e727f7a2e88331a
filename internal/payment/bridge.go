// Package payment bridges deposit orders to the external payment gateway.
// The gateway itself is opaque: the bridge only creates orders, checks the
// callback signature, and credits the wallet once per order.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
	"github.com/ayaan09TTT/tradeforge/internal/wallet"
)

type Bridge struct {
	kv     store.KV
	ledger *wallet.Ledger

	keyID  string
	secret []byte

	minAmount int64
	maxAmount int64
}

func NewBridge(kv store.KV, ledger *wallet.Ledger, keyID, secret string, minAmount, maxAmount int64) *Bridge {
	return &Bridge{
		kv:        kv,
		ledger:    ledger,
		keyID:     keyID,
		secret:    []byte(secret),
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// CreateOrder persists a created order and returns the checkout hand-off for
// the gateway widget. Gateway amounts are in subunits.
func (b *Bridge) CreateOrder(ctx context.Context, accountID string, amount int64) (*Order, *Checkout, error) {
	if amount < b.minAmount {
		return nil, nil, apperr.Newf(apperr.CodeValidation, "minimum deposit is %d coins", b.minAmount).
			WithDetail("amount", "below minimum")
	}
	if amount > b.maxAmount {
		return nil, nil, apperr.Newf(apperr.CodeValidation, "maximum deposit is %d coins", b.maxAmount).
			WithDetail("amount", "above maximum")
	}
	if b.keyID == "" || len(b.secret) == 0 {
		return nil, nil, apperr.New(apperr.CodeExternalService, "payment gateway is not configured")
	}

	order := &Order{
		ID:        "order_" + uuid.New().String(),
		AccountID: accountID,
		Amount:    amount,
		Status:    StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	err := b.kv.Update(ctx, func(tx store.Tx) error {
		return tx.Put(store.BucketOrders, order.ID, order)
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info("deposit order created",
		zap.String("order_id", order.ID), zap.String("account_id", accountID), zap.Int64("amount", amount))

	return order, &Checkout{
		OrderID:  order.ID,
		KeyID:    b.keyID,
		Amount:   amount * 100,
		Currency: "INR",
	}, nil
}

// signature returns the expected callback proof for an order/payment pair:
// hex(HMAC-SHA256("orderID|paymentID", secret)).
func (b *Bridge) signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAndSettle trusts the gateway callback only if it references a known,
// unsettled order and carries a valid signature. Settling marks the order
// paid and credits the owner's wallet in the same store update; a replay
// returns AlreadySettled together with the original transaction.
func (b *Bridge) VerifyAndSettle(ctx context.Context, orderID, paymentID, signature string) (*wallet.Transaction, error) {
	var settled *wallet.Transaction
	err := b.kv.Update(ctx, func(tx store.Tx) error {
		var order Order
		if err := tx.Get(store.BucketOrders, orderID, &order); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeOrderNotFound, "order not found")
			}
			return err
		}
		if order.Status == StatusPaid {
			settled = b.findSettledTransaction(tx, &order)
			return apperr.New(apperr.CodeAlreadySettled, "order already settled")
		}
		if !hmac.Equal([]byte(b.signature(orderID, paymentID)), []byte(signature)) {
			return apperr.New(apperr.CodeValidation, "payment signature mismatch")
		}

		t, err := b.ledger.DepositTx(tx, order.AccountID, order.Amount, "payment_gateway", order.ID)
		if err != nil {
			return err
		}
		order.Status = StatusPaid
		order.PaymentID = paymentID
		order.TransactionID = t.ID
		settled = t
		return tx.Put(store.BucketOrders, order.ID, &order)
	})
	if err != nil {
		return settled, err
	}
	logger.Log.Info("order settled",
		zap.String("order_id", orderID), zap.String("payment_id", paymentID))
	return settled, nil
}

func (b *Bridge) findSettledTransaction(tx store.Tx, order *Order) *wallet.Transaction {
	var w wallet.Wallet
	if err := tx.Get(store.BucketWallets, order.AccountID, &w); err != nil {
		return nil
	}
	for i := range w.Transactions {
		if w.Transactions[i].ID == order.TransactionID {
			return &w.Transactions[i]
		}
	}
	return nil
}

// Orders lists the account's deposit orders, newest first.
func (b *Bridge) Orders(ctx context.Context, accountID string) ([]Order, error) {
	var orders []Order
	err := b.kv.View(ctx, func(tx store.Tx) error {
		all, err := tx.List(store.BucketOrders)
		if err != nil {
			return err
		}
		for _, raw := range all {
			var o Order
			if err := json.Unmarshal(raw, &o); err != nil {
				return err
			}
			if o.AccountID == accountID {
				orders = append(orders, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
