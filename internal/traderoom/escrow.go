package traderoom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

// Escrow lifecycle. Funds are held from the buyer at initiation and captured
// to the seller at confirmation; a dispute freezes the hold until an admin
// resolves it. Each transition commits the room state and the wallet
// movement in one store update.
//
//	room=open            --purchase-->  room=pending, txn=in_escrow   (hold)
//	txn=in_escrow        --deliver-->   txn=awaiting_delivery
//	txn=awaiting_delivery --confirm-->  txn=completed, room=sold      (capture)
//	txn=awaiting_delivery --dispute-->  txn=disputed
//	txn=disputed         --resolve-->   release (sold) or refund (reopen)

const (
	ResolutionRelease = "release"
	ResolutionRefund  = "refund"
)

// InitiatePurchase starts a trade on an open room, holding the buyer's coins.
func (r *Registry) InitiatePurchase(ctx context.Context, roomID, buyerID string) (*Transaction, error) {
	var txn *Transaction
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		var room Room
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		if room.Status != StatusOpen {
			return apperr.New(apperr.CodeNotAvailable, "this item is no longer available for purchase")
		}
		if room.Seller.ID == buyerID {
			return apperr.New(apperr.CodeSelfTrade, "you cannot buy your own listing")
		}

		now := time.Now().UTC()
		txn = &Transaction{
			ID:        "trans_" + uuid.New().String(),
			BuyerID:   buyerID,
			SellerID:  room.Seller.ID,
			Amount:    room.Price,
			Status:    TxnInEscrow,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// Hold fails with InsufficientBalance when the buyer cannot cover
		// the price, rolling the whole initiation back.
		desc := fmt.Sprintf("Escrow for %q", room.Title)
		if _, err := r.ledger.HoldTx(tx, buyerID, room.Price, txn.ID, desc); err != nil {
			return err
		}

		room.Status = StatusPending
		room.Transaction = txn
		room.UpdatedAt = now
		return tx.Put(store.BucketRooms, roomID, &room)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("purchase initiated",
		zap.String("room_id", roomID), zap.String("buyer", buyerID), zap.Int64("amount", txn.Amount))
	r.publish(roomID, "trade_update", txn)
	return txn, nil
}

// MarkDelivered is the seller's claim that the goods went out.
func (r *Registry) MarkDelivered(ctx context.Context, roomID, callerID string) (*Transaction, error) {
	return r.transition(ctx, roomID, func(room *Room) error {
		if room.Seller.ID != callerID {
			return apperr.New(apperr.CodeForbidden, "only the seller can mark the item delivered")
		}
		if room.Transaction.Status != TxnInEscrow {
			return apperr.Newf(apperr.CodeInvalidTransition,
				"cannot mark delivered from %s", room.Transaction.Status)
		}
		room.Transaction.Status = TxnAwaitingDelivery
		return nil
	})
}

// ConfirmReceipt completes the trade: buyer acknowledges delivery, the hold
// is captured to the seller, and the room is sold.
func (r *Registry) ConfirmReceipt(ctx context.Context, roomID, callerID string) (*Transaction, error) {
	return r.transition(ctx, roomID, func(room *Room) error {
		if room.Transaction.BuyerID != callerID {
			return apperr.New(apperr.CodeForbidden, "only the buyer can confirm receipt")
		}
		if room.Transaction.Status != TxnAwaitingDelivery {
			return apperr.Newf(apperr.CodeInvalidTransition,
				"cannot confirm receipt from %s", room.Transaction.Status)
		}
		room.Transaction.Status = TxnCompleted
		room.Status = StatusSold
		return nil
	}, func(tx store.Tx, room *Room) error {
		desc := fmt.Sprintf("Trade payment for %q", room.Title)
		return r.ledger.CaptureTx(tx, room.Transaction.BuyerID, room.Seller.ID,
			room.Transaction.Amount, room.Transaction.ID, desc)
	})
}

// FileDispute freezes the trade from awaiting_delivery; funds stay held for
// admin resolution.
func (r *Registry) FileDispute(ctx context.Context, roomID, callerID, reason string) (*Transaction, error) {
	return r.transition(ctx, roomID, func(room *Room) error {
		if room.Transaction.BuyerID != callerID {
			return apperr.New(apperr.CodeForbidden, "only the buyer can file a dispute")
		}
		if room.Transaction.Status != TxnAwaitingDelivery {
			return apperr.Newf(apperr.CodeInvalidTransition,
				"cannot dispute from %s", room.Transaction.Status)
		}
		room.Transaction.Status = TxnDisputed
		room.Transaction.DisputeReason = strings.TrimSpace(reason)
		return nil
	})
}

// ResolveDispute is the admin decision on a disputed trade: release captures
// the hold to the seller and closes the room sold; refund returns the hold
// to the buyer and reopens the listing.
func (r *Registry) ResolveDispute(ctx context.Context, roomID, resolution string) (*Room, error) {
	if resolution != ResolutionRelease && resolution != ResolutionRefund {
		return nil, apperr.New(apperr.CodeValidation, "resolution must be release or refund").
			WithDetail("resolution", "unknown value")
	}

	var room Room
	var resolved *Transaction
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		if room.Transaction == nil || room.Transaction.Status != TxnDisputed {
			return apperr.New(apperr.CodeInvalidTransition, "no disputed trade on this room")
		}

		// The refund branch detaches the transaction from the room, so keep
		// a handle for the trade_update event.
		txn := room.Transaction
		resolved = txn
		now := time.Now().UTC()
		if resolution == ResolutionRelease {
			desc := fmt.Sprintf("Dispute resolved: payment for %q", room.Title)
			if err := r.ledger.CaptureTx(tx, txn.BuyerID, txn.SellerID, txn.Amount, txn.ID, desc); err != nil {
				return err
			}
			txn.Status = TxnCompleted
			txn.UpdatedAt = now
			room.Status = StatusSold
		} else {
			if err := r.ledger.ReleaseTx(tx, txn.BuyerID, txn.Amount, txn.ID); err != nil {
				return err
			}
			// Refund reopens the listing; the failed wallet record keeps
			// the audit trail, the room drops its transaction.
			txn.UpdatedAt = now
			room.Status = StatusOpen
			room.Transaction = nil
		}
		room.UpdatedAt = now
		return tx.Put(store.BucketRooms, roomID, &room)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("dispute resolved",
		zap.String("room_id", roomID), zap.String("resolution", resolution))
	r.publish(roomID, "trade_update", resolved)
	return &room, nil
}

// transition runs guards and the status change, then optional fund moves,
// inside one update. The room must carry a live transaction.
func (r *Registry) transition(ctx context.Context, roomID string, mutate func(*Room) error,
	funds ...func(store.Tx, *Room) error) (*Transaction, error) {

	var room Room
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		if room.Transaction == nil {
			return apperr.New(apperr.CodeInvalidTransition, "no trade in progress on this room")
		}
		if err := mutate(&room); err != nil {
			return err
		}
		room.Transaction.UpdatedAt = time.Now().UTC()
		room.UpdatedAt = room.Transaction.UpdatedAt
		for _, fn := range funds {
			if err := fn(tx, &room); err != nil {
				return err
			}
		}
		return tx.Put(store.BucketRooms, roomID, &room)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("trade transition",
		zap.String("room_id", roomID), zap.String("status", room.Transaction.Status))
	r.publish(roomID, "trade_update", room.Transaction)
	return room.Transaction, nil
}
