// Package seed populates an empty store with demo listings so a fresh
// install shows a working marketplace.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
	"github.com/ayaan09TTT/tradeforge/internal/traderoom"
)

// Rooms inserts the demo listings when the rooms bucket is empty.
func Rooms(ctx context.Context, kv store.KV) error {
	return kv.Update(ctx, func(tx store.Tx) error {
		existing, err := tx.List(store.BucketRooms)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		now := time.Now().UTC()
		demo := []traderoom.Room{
			{
				Title:       "Premium Fortnite Account",
				Description: "Level 100 account with rare skins and battle pass items from Season 1-10.",
				Price:       2500,
				Category:    "Gaming Accounts",
				Tags:        []string{"gaming", "fortnite", "account"},
				Seller:      traderoom.Seller{ID: "user-example-1", Name: "John Doe", Rating: 4.9},
				CreatedAt:   now.Add(-2 * 24 * time.Hour),
			},
			{
				Title:       "Adobe Creative Suite License",
				Description: "Full Adobe Creative Suite license with 1 year of updates remaining.",
				Price:       3500,
				Category:    "Software & Applications",
				Tags:        []string{"software", "design", "adobe"},
				Seller:      traderoom.Seller{ID: "user-example-2", Name: "Jane Smith", Rating: 4.7},
				CreatedAt:   now.Add(-5 * 24 * time.Hour),
			},
			{
				Title:       "Digital Marketing Course Bundle",
				Description: "Complete digital marketing course covering SEO, SEM, social media marketing, and email campaigns.",
				Price:       1200,
				Category:    "Courses & E-Learning",
				Tags:        []string{"marketing", "education", "digital"},
				Seller:      traderoom.Seller{ID: "user-example-3", Name: "Mike Johnson", Rating: 4.8},
				CreatedAt:   now.Add(-1 * 24 * time.Hour),
			},
		}
		for i := range demo {
			room := demo[i]
			room.ID = "room_" + uuid.New().String()
			room.Status = traderoom.StatusOpen
			room.Messages = []traderoom.Message{}
			room.UpdatedAt = room.CreatedAt
			if err := tx.Put(store.BucketRooms, room.ID, &room); err != nil {
				return err
			}
		}
		logger.Log.Info("seeded demo trade rooms", zap.Int("count", len(demo)))
		return nil
	})
}
