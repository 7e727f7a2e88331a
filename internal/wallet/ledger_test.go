package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

func newTestLedger() *Ledger {
	return NewLedger(store.NewMemory())
}

func TestAutoProvision(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	balance, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, balance)

	history, err := l.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, TypeDeposit, history[0].Type)
	assert.Equal(t, StatusCompleted, history[0].Status)
	assert.Equal(t, "Welcome bonus", history[0].Description)

	// Second touch must not seed again.
	_, err = l.Balance(ctx, "alice")
	require.NoError(t, err)
	history, err = l.History(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Deposit(ctx, "alice", 500, "payment_gateway")
	require.NoError(t, err)

	tr, err := l.Withdraw(ctx, "alice", 200, Payout{UPIID: "alice@upi", AccountHolder: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, tr.Status)
	assert.Equal(t, TypeWithdrawal, tr.Type)

	balance, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance+500-200, balance)

	history, err := l.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Most recent first.
	assert.Equal(t, TypeWithdrawal, history[0].Type)
	assert.Equal(t, TypeDeposit, history[1].Type)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	for _, amount := range []int64{0, -50} {
		_, err := l.Deposit(ctx, "alice", amount, "promocode")
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	}
}

func TestWithdrawInsufficientBalanceLeavesWalletUntouched(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Withdraw(ctx, "alice", StartingBalance+1, Payout{})
	assert.Equal(t, apperr.CodeInsufficientBal, apperr.CodeOf(err))

	balance, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, balance)

	history, err := l.History(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 1, "failed withdrawal must not append a record")
}

func TestTransferConservesCoins(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	beforeA, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	beforeB, err := l.Balance(ctx, "bob")
	require.NoError(t, err)

	sent, err := l.Transfer(ctx, "alice", "bob", 300, "Trade payment")
	require.NoError(t, err)

	afterA, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	afterB, err := l.Balance(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, beforeA-300, afterA)
	assert.Equal(t, beforeB+300, afterB)
	assert.Equal(t, beforeA+beforeB, afterA+afterB)

	// Both histories carry a linked record sharing the transaction id.
	historyA, err := l.History(ctx, "alice")
	require.NoError(t, err)
	historyB, err := l.History(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, sent.ID, historyA[0].ID)
	assert.Equal(t, sent.ID, historyB[0].ID)
	assert.Equal(t, "bob", historyA[0].Counterparty)
	assert.Equal(t, "alice", historyB[0].Counterparty)
}

func TestTransferGuards(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Transfer(ctx, "alice", "alice", 100, "")
	assert.Equal(t, apperr.CodeSelfTrade, apperr.CodeOf(err))

	_, err = l.Transfer(ctx, "alice", "bob", 0, "")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = l.Transfer(ctx, "alice", "bob", StartingBalance+1, "")
	assert.Equal(t, apperr.CodeInsufficientBal, apperr.CodeOf(err))

	// Failed transfer must leave both wallets untouched.
	balanceA, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	balanceB, err := l.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, balanceA)
	assert.Equal(t, StartingBalance, balanceB)
}

func TestLedgerArithmetic(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	deposits := []int64{100, 250}
	withdrawals := []int64{75}
	for _, d := range deposits {
		_, err := l.Deposit(ctx, "alice", d, "promocode")
		require.NoError(t, err)
	}
	for _, w := range withdrawals {
		_, err := l.Withdraw(ctx, "alice", w, Payout{})
		require.NoError(t, err)
	}
	_, err := l.Transfer(ctx, "alice", "bob", 40, "")
	require.NoError(t, err)
	_, err = l.Transfer(ctx, "bob", "alice", 15, "")
	require.NoError(t, err)

	balance, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance+100+250-75-40+15, balance)
}

func TestEscrowHoldCaptureRelease(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	kv := l.kv

	// Hold moves balance into escrow.
	err := kv.Update(ctx, func(tx store.Tx) error {
		_, err := l.HoldTx(tx, "buyer", 400, "trans_1", "Escrow for item")
		return err
	})
	require.NoError(t, err)

	w, err := l.Account(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance-400, w.Balance)
	assert.Equal(t, int64(400), w.Escrow)
	assert.Equal(t, StatusProcessing, w.Transactions[0].Status)

	// Capture settles to the seller with linked completed records.
	err = kv.Update(ctx, func(tx store.Tx) error {
		return l.CaptureTx(tx, "buyer", "seller", 400, "trans_1", "Trade payment")
	})
	require.NoError(t, err)

	buyer, err := l.Account(ctx, "buyer")
	require.NoError(t, err)
	seller, err := l.Account(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, int64(0), buyer.Escrow)
	assert.Equal(t, StartingBalance-400, buyer.Balance)
	assert.Equal(t, StartingBalance+400, seller.Balance)
	assert.Equal(t, StatusCompleted, buyer.Transactions[0].Status)
	assert.Equal(t, buyer.Transactions[0].ID, seller.Transactions[0].ID)

	// Release returns a fresh hold to the balance.
	err = kv.Update(ctx, func(tx store.Tx) error {
		_, err := l.HoldTx(tx, "buyer", 100, "trans_2", "Escrow for item")
		return err
	})
	require.NoError(t, err)
	err = kv.Update(ctx, func(tx store.Tx) error {
		return l.ReleaseTx(tx, "buyer", 100, "trans_2")
	})
	require.NoError(t, err)

	buyer, err = l.Account(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance-400, buyer.Balance)
	assert.Equal(t, int64(0), buyer.Escrow)
	assert.Equal(t, StatusFailed, buyer.Transactions[0].Status)
}

func TestHoldInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	err := l.kv.Update(ctx, func(tx store.Tx) error {
		_, err := l.HoldTx(tx, "buyer", StartingBalance+1, "trans_1", "Escrow")
		return err
	})
	assert.Equal(t, apperr.CodeInsufficientBal, apperr.CodeOf(err))

	w, err := l.Account(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, w.Balance)
	assert.Equal(t, int64(0), w.Escrow)
}
