package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"highlight-saver/internal/domain"
)

// SupabaseKVStore keeps extension storage in a Supabase table with
// "key" (primary key) and "value" (text) columns.
type SupabaseKVStore struct {
	supabaseClient domain.SupabaseClient
	table          string
	logger         domain.Logger
}

func NewSupabaseKVStore(supabaseClient domain.SupabaseClient, table string, logger domain.Logger) domain.KeyValueStore {
	return &SupabaseKVStore{
		supabaseClient: supabaseClient,
		table:          table,
		logger:         logger,
	}
}

type kvRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *SupabaseKVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := s.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	data, _, err := client.From(s.table).
		Select("key,value", "", false).
		In("key", keys).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", keys, err)
	}

	var rows []kvRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, row := range rows {
		out[row.Key] = []byte(row.Value)
	}
	return out, nil
}

func (s *SupabaseKVStore) Set(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := s.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}
	if len(values) == 0 {
		return nil
	}

	rows := make([]kvRow, 0, len(values))
	for key, value := range values {
		rows = append(rows, kvRow{Key: key, Value: string(value)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	// Upsert on the primary key so both keys can be written in one round trip.
	_, _, err := client.From(s.table).
		Insert(rows, true, "key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to write %d keys: %w", len(rows), err)
	}
	s.logger.Debug("Supabase storage updated", "table", s.table, "keys", len(rows))
	return nil
}

func (s *SupabaseKVStore) Close() error {
	return nil
}
