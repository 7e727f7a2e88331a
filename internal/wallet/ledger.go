// Package wallet implements the coin ledger: per-account balances, ordered
// transaction history, peer transfers, and the escrow hold used by the trade
// lifecycle. Every mutation runs inside a single store update so partial
// application (debit without credit) cannot persist.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

type Ledger struct {
	kv store.KV
}

func NewLedger(kv store.KV) *Ledger {
	return &Ledger{kv: kv}
}

// loadOrProvision returns the wallet, creating it with the starting balance
// and the seeded welcome transaction on first touch. Must run inside an
// Update so provisioning happens exactly once per account.
func (l *Ledger) loadOrProvision(tx store.Tx, accountID string) (*Wallet, error) {
	var w Wallet
	err := tx.Get(store.BucketWallets, accountID, &w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	w = Wallet{
		AccountID: accountID,
		Balance:   StartingBalance,
		CreatedAt: now,
		Transactions: []Transaction{{
			ID:          "welcome-" + uuid.New().String(),
			Type:        TypeDeposit,
			Amount:      StartingBalance,
			Status:      StatusCompleted,
			Description: "Welcome bonus",
			CreatedAt:   now,
		}},
	}
	if err := tx.Put(store.BucketWallets, accountID, &w); err != nil {
		return nil, err
	}
	logger.Log.Info("wallet provisioned", zap.String("account_id", accountID))
	return &w, nil
}

// Account returns the full wallet, provisioning it if needed.
func (l *Ledger) Account(ctx context.Context, accountID string) (*Wallet, error) {
	var w *Wallet
	err := l.kv.Update(ctx, func(tx store.Tx) error {
		var err error
		w, err = l.loadOrProvision(tx, accountID)
		return err
	})
	return w, err
}

func (l *Ledger) Balance(ctx context.Context, accountID string) (int64, error) {
	w, err := l.Account(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// History returns the account's transactions, most recent first.
func (l *Ledger) History(ctx context.Context, accountID string) ([]Transaction, error) {
	w, err := l.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return w.Transactions, nil
}

func checkAmount(amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.CodeValidation, "amount must be greater than zero").
			WithDetail("amount", "must be a positive number of coins")
	}
	return nil
}

// DepositTx credits the wallet within the caller's transaction. Used by the
// payment bridge so order settlement and the wallet credit commit together.
func (l *Ledger) DepositTx(tx store.Tx, accountID string, amount int64, source, orderID string) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	w, err := l.loadOrProvision(tx, accountID)
	if err != nil {
		return nil, err
	}

	t := Transaction{
		ID:          "tx_" + uuid.New().String(),
		Type:        TypeDeposit,
		Amount:      amount,
		Status:      StatusCompleted,
		Description: fmt.Sprintf("Added %d coins via %s", amount, source),
		OrderID:     orderID,
		CreatedAt:   time.Now().UTC(),
	}
	w.Balance += amount
	w.prepend(t)
	if err := tx.Put(store.BucketWallets, accountID, w); err != nil {
		return nil, err
	}
	return &t, nil
}

// Deposit credits the wallet and records a completed deposit transaction.
func (l *Ledger) Deposit(ctx context.Context, accountID string, amount int64, source string) (*Transaction, error) {
	var t *Transaction
	err := l.kv.Update(ctx, func(tx store.Tx) error {
		var err error
		t, err = l.DepositTx(tx, accountID, amount, source, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("deposit", zap.String("account_id", accountID), zap.Int64("amount", amount))
	return t, nil
}

// Withdraw debits the balance immediately and records a processing
// withdrawal; payout to the external rail settles asynchronously.
func (l *Ledger) Withdraw(ctx context.Context, accountID string, amount int64, payout Payout) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	var t *Transaction
	err := l.kv.Update(ctx, func(tx store.Tx) error {
		w, err := l.loadOrProvision(tx, accountID)
		if err != nil {
			return err
		}
		if amount > w.Balance {
			return apperr.New(apperr.CodeInsufficientBal, "insufficient balance")
		}
		t = &Transaction{
			ID:          "tx_" + uuid.New().String(),
			Type:        TypeWithdrawal,
			Amount:      amount,
			Status:      StatusProcessing,
			Description: "Withdrawal to bank account",
			Payout:      &payout,
			CreatedAt:   time.Now().UTC(),
		}
		w.Balance -= amount
		w.prepend(*t)
		return tx.Put(store.BucketWallets, accountID, w)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("withdrawal requested", zap.String("account_id", accountID), zap.Int64("amount", amount))
	return t, nil
}

// Transfer moves coins between two accounts, writing one linked record to
// each history under a shared transaction id. Both sides commit or neither.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount int64, description string) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, apperr.New(apperr.CodeSelfTrade, "cannot transfer coins to yourself")
	}
	if description == "" {
		description = "Trade payment"
	}

	var sent Transaction
	err := l.kv.Update(ctx, func(tx store.Tx) error {
		sender, err := l.loadOrProvision(tx, fromID)
		if err != nil {
			return err
		}
		receiver, err := l.loadOrProvision(tx, toID)
		if err != nil {
			return err
		}
		if amount > sender.Balance {
			return apperr.New(apperr.CodeInsufficientBal, "insufficient balance")
		}

		now := time.Now().UTC()
		id := "tx_" + uuid.New().String()
		sent = Transaction{
			ID:           id,
			Type:         TypeTrade,
			Amount:       amount,
			Status:       StatusCompleted,
			Description:  description,
			Counterparty: toID,
			CreatedAt:    now,
		}
		received := sent
		received.Counterparty = fromID

		sender.Balance -= amount
		sender.prepend(sent)
		receiver.Balance += amount
		receiver.prepend(received)

		if err := tx.Put(store.BucketWallets, fromID, sender); err != nil {
			return err
		}
		return tx.Put(store.BucketWallets, toID, receiver)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("transfer",
		zap.String("from", fromID), zap.String("to", toID), zap.Int64("amount", amount))
	return &sent, nil
}
