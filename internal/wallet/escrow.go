package wallet

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

// Escrow operations back the trade lifecycle. Funds are held at purchase
// initiation (balance -> escrow), captured to the seller at confirmation, or
// released back to the buyer on a refund resolution. All three take the
// caller's transaction so the room state and the coin movement commit as one.

// HoldTx moves amount from the buyer's balance into escrow. The recorded
// entry carries ref (the escrow transaction id) so Capture/Release can find
// and settle it later.
func (l *Ledger) HoldTx(tx store.Tx, buyerID string, amount int64, ref, description string) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	w, err := l.loadOrProvision(tx, buyerID)
	if err != nil {
		return nil, err
	}
	if amount > w.Balance {
		return nil, apperr.New(apperr.CodeInsufficientBal, "insufficient balance")
	}

	t := Transaction{
		ID:          ref,
		Type:        TypeTrade,
		Amount:      amount,
		Status:      StatusProcessing,
		Description: description,
		Reference:   ref,
		CreatedAt:   time.Now().UTC(),
	}
	w.Balance -= amount
	w.Escrow += amount
	w.prepend(t)
	if err := tx.Put(store.BucketWallets, buyerID, w); err != nil {
		return nil, err
	}
	logger.Log.Info("escrow hold",
		zap.String("buyer", buyerID), zap.String("ref", ref), zap.Int64("amount", amount))
	return &t, nil
}

// CaptureTx settles a hold to the seller: the buyer's escrow is debited, the
// seller's balance credited, and both histories end up with completed records
// sharing the hold's transaction id.
func (l *Ledger) CaptureTx(tx store.Tx, buyerID, sellerID string, amount int64, ref, description string) error {
	buyer, err := l.loadOrProvision(tx, buyerID)
	if err != nil {
		return err
	}
	seller, err := l.loadOrProvision(tx, sellerID)
	if err != nil {
		return err
	}
	if buyer.Escrow < amount {
		return errors.New("wallet: escrow hold smaller than capture amount")
	}

	held := buyer.findByReference(ref)
	if held == nil {
		return errors.New("wallet: no held transaction for reference " + ref)
	}
	held.Status = StatusCompleted
	held.Counterparty = sellerID
	if description != "" {
		held.Description = description
	}

	buyer.Escrow -= amount
	seller.Balance += amount
	seller.prepend(Transaction{
		ID:           held.ID,
		Type:         TypeTrade,
		Amount:       amount,
		Status:       StatusCompleted,
		Description:  held.Description,
		Counterparty: buyerID,
		Reference:    ref,
		CreatedAt:    time.Now().UTC(),
	})

	if err := tx.Put(store.BucketWallets, buyerID, buyer); err != nil {
		return err
	}
	if err := tx.Put(store.BucketWallets, sellerID, seller); err != nil {
		return err
	}
	logger.Log.Info("escrow captured",
		zap.String("buyer", buyerID), zap.String("seller", sellerID),
		zap.String("ref", ref), zap.Int64("amount", amount))
	return nil
}

// ReleaseTx returns a hold to the buyer's balance and marks the held record
// failed, which is how a refunded trade reads in the history.
func (l *Ledger) ReleaseTx(tx store.Tx, buyerID string, amount int64, ref string) error {
	buyer, err := l.loadOrProvision(tx, buyerID)
	if err != nil {
		return err
	}
	if buyer.Escrow < amount {
		return errors.New("wallet: escrow hold smaller than release amount")
	}

	if held := buyer.findByReference(ref); held != nil {
		held.Status = StatusFailed
		held.Description = held.Description + " (refunded)"
	}
	buyer.Escrow -= amount
	buyer.Balance += amount

	if err := tx.Put(store.BucketWallets, buyerID, buyer); err != nil {
		return err
	}
	logger.Log.Info("escrow released",
		zap.String("buyer", buyerID), zap.String("ref", ref), zap.Int64("amount", amount))
	return nil
}

func (w *Wallet) findByReference(ref string) *Transaction {
	for i := range w.Transactions {
		if w.Transactions[i].Reference == ref && w.Transactions[i].Type == TypeTrade {
			return &w.Transactions[i]
		}
	}
	return nil
}
