package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/logger"
)

// Postgres keeps every record in a single kv_records table with a version
// column bumped on each write. Update wraps a database transaction and row
// locks reads with FOR UPDATE, so concurrent writers to the same keys
// serialize instead of losing updates.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Log.Info("connected to postgres store")
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_records (
			bucket     TEXT   NOT NULL,
			key        TEXT   NOT NULL,
			value      JSONB  NOT NULL,
			version    BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (bucket, key)
		)`)
	if err != nil {
		return fmt.Errorf("ensure kv_records: %w", err)
	}
	return nil
}

func (p *Postgres) Close() { p.pool.Close() }

type pgTx struct {
	ctx     context.Context
	tx      pgx.Tx
	locking bool
}

func (t *pgTx) Get(bucket, key string, out any) error {
	raw, err := t.selectValue(bucket, key)
	if errors.Is(err, pgx.ErrNoRows) && t.locking {
		// FOR UPDATE on a missing row locks nothing, so two transactions
		// creating the same key could both see not-found and the later
		// commit would overwrite the earlier one. Reserve the key with a
		// null placeholder: the unique key makes concurrent creators block
		// on each other's insert, and the re-read then holds the row lock.
		_, err = t.tx.Exec(t.ctx, `
			INSERT INTO kv_records (bucket, key, value)
			VALUES ($1, $2, 'null'::jsonb)
			ON CONFLICT (bucket, key) DO NOTHING`, bucket, key)
		if err != nil {
			return err
		}
		raw, err = t.selectValue(bucket, key)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	// A null value is a creation placeholder, not a record.
	if isPlaceholder(raw) {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (t *pgTx) selectValue(bucket, key string) ([]byte, error) {
	q := `SELECT value FROM kv_records WHERE bucket = $1 AND key = $2`
	if t.locking {
		q += ` FOR UPDATE`
	}
	var raw []byte
	err := t.tx.QueryRow(t.ctx, q, bucket, key).Scan(&raw)
	return raw, err
}

func isPlaceholder(raw []byte) bool {
	return string(raw) == "null"
}

func (t *pgTx) Put(bucket, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(t.ctx, `
		INSERT INTO kv_records (bucket, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (bucket, key) DO UPDATE
		SET value = EXCLUDED.value,
		    version = kv_records.version + 1,
		    updated_at = NOW()`,
		bucket, key, raw)
	return err
}

func (t *pgTx) Delete(bucket, key string) error {
	_, err := t.tx.Exec(t.ctx,
		`DELETE FROM kv_records WHERE bucket = $1 AND key = $2`, bucket, key)
	return err
}

func (t *pgTx) List(bucket string) (map[string]json.RawMessage, error) {
	rows, err := t.tx.Query(t.ctx,
		`SELECT key, value FROM kv_records WHERE bucket = $1`, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		if isPlaceholder(raw) {
			continue
		}
		out[key] = json.RawMessage(raw)
	}
	return out, rows.Err()
}

func (p *Postgres) View(ctx context.Context, fn func(Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Update(ctx context.Context, fn func(Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{ctx: ctx, tx: tx, locking: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		logger.Log.Warn("store commit failed", zap.Error(err))
		return err
	}
	return nil
}
