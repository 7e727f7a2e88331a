// Promotes an existing account to admin by email. Run against the same
// DATABASE_URL as the server:
//
//	go run ./cmd/adminutil/promote_admin admin@example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ayaan09TTT/tradeforge/internal/account"
	"github.com/ayaan09TTT/tradeforge/internal/config"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: promote_admin <email>")
		os.Exit(2)
	}
	email := os.Args[1]

	cfg := config.Load()
	ctx := context.Background()

	kv, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store init failed: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	err = kv.Update(ctx, func(tx store.Tx) error {
		var id string
		if err := tx.Get(store.BucketAccountEmails, email, &id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no account with email %s", email)
			}
			return err
		}
		var acct account.Account
		if err := tx.Get(store.BucketAccounts, id, &acct); err != nil {
			return err
		}
		acct.Role = account.RoleAdmin
		return tx.Put(store.BucketAccounts, id, &acct)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "promote failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s is now an admin\n", email)
}
