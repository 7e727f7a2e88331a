package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is the in-process store used by tests and STORE_DRIVER=memory runs.
// A single mutex gives Update the same single-writer boundary the Postgres
// driver gets from row locks; writes are staged and applied only when the
// update function returns nil, so a failed update leaves nothing behind.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string][]byte)}
}

func (m *Memory) Close() {}

type memTx struct {
	m      *Memory
	staged map[string]map[string][]byte // nil value slice = delete
}

func (t *memTx) read(bucket, key string) ([]byte, bool) {
	if t.staged != nil {
		if b, ok := t.staged[bucket]; ok {
			if raw, ok := b[key]; ok {
				return raw, raw != nil
			}
		}
	}
	if b, ok := t.m.buckets[bucket]; ok {
		raw, ok := b[key]
		return raw, ok
	}
	return nil, false
}

func (t *memTx) Get(bucket, key string, out any) error {
	raw, ok := t.read(bucket, key)
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (t *memTx) Put(bucket, key string, v any) error {
	if t.staged == nil {
		return ErrReadOnly
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if t.staged[bucket] == nil {
		t.staged[bucket] = make(map[string][]byte)
	}
	t.staged[bucket][key] = raw
	return nil
}

func (t *memTx) Delete(bucket, key string) error {
	if t.staged == nil {
		return ErrReadOnly
	}
	if t.staged[bucket] == nil {
		t.staged[bucket] = make(map[string][]byte)
	}
	t.staged[bucket][key] = nil
	return nil
}

func (t *memTx) List(bucket string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	for key, raw := range t.m.buckets[bucket] {
		out[key] = append(json.RawMessage(nil), raw...)
	}
	if t.staged != nil {
		for key, raw := range t.staged[bucket] {
			if raw == nil {
				delete(out, key)
				continue
			}
			out[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return out, nil
}

func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{m: m})
}

func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{m: m, staged: make(map[string]map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for bucket, entries := range tx.staged {
		if m.buckets[bucket] == nil {
			m.buckets[bucket] = make(map[string][]byte)
		}
		for key, raw := range entries {
			if raw == nil {
				delete(m.buckets[bucket], key)
			} else {
				m.buckets[bucket][key] = raw
			}
		}
	}
	return nil
}
