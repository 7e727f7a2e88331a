// Package traderoom holds the listing catalog and the escrow state machine
// that moves a purchase from open through delivery to completion or dispute.
package traderoom

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
	"github.com/ayaan09TTT/tradeforge/internal/wallet"
)

// Publisher receives room events for realtime fan-out. The chat hub
// implements it; a nil publisher is a no-op.
type Publisher interface {
	Publish(roomID, event string, data any)
}

type Registry struct {
	kv     store.KV
	ledger *wallet.Ledger
	pub    Publisher
}

func NewRegistry(kv store.KV, ledger *wallet.Ledger) *Registry {
	return &Registry{kv: kv, ledger: ledger}
}

// SetPublisher attaches the realtime transport after construction (the hub
// needs the registry first).
func (r *Registry) SetPublisher(p Publisher) { r.pub = p }

func (r *Registry) publish(roomID, event string, data any) {
	if r.pub != nil {
		r.pub.Publish(roomID, event, data)
	}
}

type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	PreviewFile string   `json:"preview_file"`
}

func (in *CreateInput) validate() error {
	ve := apperr.New(apperr.CodeValidation, "invalid trade room data")
	ok := true
	if len(strings.TrimSpace(in.Title)) < 5 {
		ve.WithDetail("title", "title must be at least 5 characters")
		ok = false
	}
	if len(strings.TrimSpace(in.Description)) < 20 {
		ve.WithDetail("description", "description must be at least 20 characters")
		ok = false
	}
	if in.Price <= 0 {
		ve.WithDetail("price", "price must be a positive number")
		ok = false
	}
	if !validCategory(in.Category) {
		ve.WithDetail("category", "unknown category")
		ok = false
	}
	if ok {
		return nil
	}
	return ve
}

// Create lists a new room for the seller with status open.
func (r *Registry) Create(ctx context.Context, seller Seller, in CreateInput) (*Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	room := &Room{
		ID:          "room_" + uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    in.Category,
		Tags:        in.Tags,
		Seller:      seller,
		Status:      StatusOpen,
		Images:      in.Images,
		PreviewFile: in.PreviewFile,
		Messages:    []Message{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		return tx.Put(store.BucketRooms, room.ID, room)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("trade room created",
		zap.String("room_id", room.ID), zap.String("seller", seller.ID))
	return room, nil
}

// Get returns the room by id.
func (r *Registry) Get(ctx context.Context, roomID string) (*Room, error) {
	var room Room
	err := store.GetOne(ctx, r.kv, store.BucketRooms, roomID, &room)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "trade room not found")
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns rooms matching the filters. Pure read; search is a
// case-insensitive substring over title, description, and category.
func (r *Registry) List(ctx context.Context, f Filters) ([]Room, error) {
	var rooms []Room
	err := r.kv.View(ctx, func(tx store.Tx) error {
		all, err := tx.List(store.BucketRooms)
		if err != nil {
			return err
		}
		needle := strings.ToLower(strings.TrimSpace(f.Search))
		for _, raw := range all {
			var room Room
			if err := json.Unmarshal(raw, &room); err != nil {
				return err
			}
			if f.Category != "" && room.Category != f.Category {
				continue
			}
			if f.MinPrice > 0 && room.Price < f.MinPrice {
				continue
			}
			if f.MaxPrice > 0 && room.Price > f.MaxPrice {
				continue
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(room.Title), needle) &&
				!strings.Contains(strings.ToLower(room.Description), needle) &&
				!strings.Contains(strings.ToLower(room.Category), needle) {
				continue
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rooms, func(i, j int) bool {
		switch f.Sort {
		case "oldest":
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		case "price_asc":
			return rooms[i].Price < rooms[j].Price
		case "price_desc":
			return rooms[i].Price > rooms[j].Price
		default: // newest
			return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
		}
	})
	return rooms, nil
}

type UpdateInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *int64    `json:"price"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	Images      *[]string `json:"images"`
	PreviewFile *string   `json:"preview_file"`
}

// Update edits a listing. Seller only; price and category freeze once the
// room has left open so an in-flight escrow never diverges from its price.
func (r *Registry) Update(ctx context.Context, roomID, callerID string, in UpdateInput) (*Room, error) {
	var room Room
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		if room.Seller.ID != callerID {
			return apperr.New(apperr.CodeForbidden, "you can only update your own trade rooms")
		}
		if room.Status != StatusOpen && (in.Price != nil || in.Category != nil) {
			return apperr.New(apperr.CodeConflict, "price and category are locked while a trade is active")
		}
		if in.Title != nil {
			if len(strings.TrimSpace(*in.Title)) < 5 {
				return apperr.New(apperr.CodeValidation, "invalid trade room data").
					WithDetail("title", "title must be at least 5 characters")
			}
			room.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			if len(strings.TrimSpace(*in.Description)) < 20 {
				return apperr.New(apperr.CodeValidation, "invalid trade room data").
					WithDetail("description", "description must be at least 20 characters")
			}
			room.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			if *in.Price <= 0 {
				return apperr.New(apperr.CodeValidation, "invalid trade room data").
					WithDetail("price", "price must be a positive number")
			}
			room.Price = *in.Price
		}
		if in.Category != nil {
			if !validCategory(*in.Category) {
				return apperr.New(apperr.CodeValidation, "invalid trade room data").
					WithDetail("category", "unknown category")
			}
			room.Category = *in.Category
		}
		if in.Tags != nil {
			room.Tags = *in.Tags
		}
		if in.Images != nil {
			room.Images = *in.Images
		}
		if in.PreviewFile != nil {
			room.PreviewFile = *in.PreviewFile
		}
		room.UpdatedAt = time.Now().UTC()
		return tx.Put(store.BucketRooms, room.ID, &room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Delete removes a listing. Seller only; refused while an escrow is live.
func (r *Registry) Delete(ctx context.Context, roomID, callerID string) error {
	return r.kv.Update(ctx, func(tx store.Tx) error {
		var room Room
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		if room.Seller.ID != callerID {
			return apperr.New(apperr.CodeForbidden, "you can only delete your own trade rooms")
		}
		// A disputed trade still holds buyer funds, so only rooms with no
		// trade or a fully completed one may go.
		if room.Transaction != nil && room.Transaction.Status != TxnCompleted {
			return apperr.New(apperr.CodeConflict, "cannot delete a room with an active trade")
		}
		return tx.Delete(store.BucketRooms, roomID)
	})
}

// PostMessage appends to the room's message log and fans the message out to
// connected clients.
func (r *Registry) PostMessage(ctx context.Context, roomID string, senderID, senderName, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.New(apperr.CodeValidation, "message content cannot be empty").
			WithDetail("content", "required")
	}

	msg := Message{
		ID:         "msg_" + uuid.New().String(),
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		var room Room
		if err := getRoom(tx, roomID, &room); err != nil {
			return err
		}
		room.Messages = append(room.Messages, msg)
		return tx.Put(store.BucketRooms, roomID, &room)
	})
	if err != nil {
		return nil, err
	}
	r.publish(roomID, "message_new", msg)
	return &msg, nil
}

func getRoom(tx store.Tx, roomID string, out *Room) error {
	err := tx.Get(store.BucketRooms, roomID, out)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.CodeNotFound, "trade room not found")
	}
	return err
}
