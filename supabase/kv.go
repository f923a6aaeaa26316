package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"mentorai/tutor/store"
)

// Querier is satisfied by both *supabase.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

type kvRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KVBackend stores values in a two-column table:
//
//	create table kv_store (key text primary key, value text not null);
//
// postgrest-go has no context support, so ctx is only checked before each call.
type KVBackend struct {
	client Querier
	table  string
}

func NewKVBackend(client Querier, table string) *KVBackend {
	if table == "" {
		table = "kv_store"
	}
	return &KVBackend{client: client, table: table}
}

func (b *KVBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, b.fail("get", key, err)
	}

	resp, _, err := b.client.From(b.table).
		Select("key, value", "", false).
		Eq("key", key).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, false, b.fail("get", key, err)
	}

	var rows []kvRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, false, b.fail("get", key, fmt.Errorf("failed to decode rows: %w", err))
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return []byte(rows[0].Value), true, nil
}

func (b *KVBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return b.fail("put", key, err)
	}

	_, _, err := b.client.From(b.table).
		Upsert(kvRow{Key: key, Value: string(value)}, "key", "minimal", "").
		Execute()
	if err != nil {
		return b.fail("put", key, err)
	}
	return nil
}

func (b *KVBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return b.fail("delete", key, err)
	}

	_, _, err := b.client.From(b.table).
		Delete("minimal", "").
		Eq("key", key).
		Execute()
	if err != nil {
		return b.fail("delete", key, err)
	}
	return nil
}

func (b *KVBackend) fail(op, key string, err error) error {
	return &store.StorageError{Backend: "supabase", Op: op, Key: key, Err: err}
}
