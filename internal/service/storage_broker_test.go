package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

func TestStorageBroker_AddPrependsNewest(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := broker.Add(ctx, testHighlight(id, "text "+id)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	list, err := broker.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 highlights, got %d", len(list))
	}
	if list[0].ID != "3" || list[1].ID != "2" || list[2].ID != "1" {
		t.Fatalf("expected newest first, got %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestStorageBroker_ListEmpty(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()

	list, err := broker.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", list)
	}
}

func TestStorageBroker_AddRejectsDuplicateAndInvalid(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	if err := broker.Add(ctx, testHighlight("1", "a")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := broker.Add(ctx, testHighlight("1", "b")); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error for duplicate id, got %v", err)
	}
	if err := broker.Add(ctx, testHighlight("2", "   ")); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}

	list, _ := broker.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected only the first highlight stored, got %d", len(list))
	}
}

func TestStorageBroker_DeletePreservesOrder(t *testing.T) {
	broker, store := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4"} {
		_ = broker.Add(ctx, testHighlight(id, "text"))
	}

	if err := broker.Delete(ctx, "3"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	list, _ := broker.List(ctx)
	got := ""
	for _, h := range list {
		got += h.ID
	}
	if got != "421" {
		t.Fatalf("expected order 421, got %s", got)
	}

	writes := store.SetCalls()
	if err := broker.Delete(ctx, "missing"); err != nil {
		t.Fatalf("expected no-op for unknown id, got %v", err)
	}
	if store.SetCalls() != writes {
		t.Fatalf("expected no write for unknown id")
	}
	list, _ = broker.List(ctx)
	if len(list) != 3 {
		t.Fatalf("expected 3 highlights after no-op delete, got %d", len(list))
	}

	if err := broker.Delete(ctx, ""); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestStorageBroker_Clear(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	_ = broker.Add(ctx, testHighlight("1", "a"))
	_ = broker.Add(ctx, testHighlight("2", "b"))

	if err := broker.Clear(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	list, _ := broker.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty collection, got %d", len(list))
	}
}

func TestStorageBroker_APIKey(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	key, err := broker.GetAPIKey(ctx)
	if err != nil || key != "" {
		t.Fatalf("expected empty default key, got %q (%v)", key, err)
	}
	if err := broker.SetAPIKey(ctx, "secret-key"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	key, err = broker.GetAPIKey(ctx)
	if err != nil || key != "secret-key" {
		t.Fatalf("expected secret-key, got %q (%v)", key, err)
	}
}

func TestStorageBroker_StoreFailures(t *testing.T) {
	broker, store := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	store.failSet = true
	if err := broker.Add(ctx, testHighlight("1", "a")); !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error on write failure, got %v", err)
	}
	if err := broker.SetAPIKey(ctx, "k"); !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error on key write failure, got %v", err)
	}

	store.failSet = false
	store.failGet = true
	if _, err := broker.List(ctx); !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error on read failure, got %v", err)
	}
	if _, err := broker.GetAPIKey(ctx); !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error on key read failure, got %v", err)
	}
}

func TestStorageBroker_CorruptCollection(t *testing.T) {
	broker, store := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	_ = store.MemoryKVStore.Set(ctx, map[string][]byte{domain.HighlightsKey: []byte("{not json")})

	if _, err := broker.List(ctx); !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error for corrupt data, got %v", err)
	}
}

func TestStorageBroker_ConcurrentAddsAreNotLost(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := broker.Add(ctx, testHighlight(fmt.Sprintf("h-%d", i), "text")); err != nil {
				t.Errorf("add %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	list, err := broker.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != writers {
		t.Fatalf("expected %d highlights, got %d", writers, len(list))
	}
}

func TestStorageBroker_Closed(t *testing.T) {
	broker, _ := newTestBroker()
	if err := broker.Close(); err != nil {
		t.Fatalf("expected no error on close, got %v", err)
	}
	_ = broker.Close()

	if _, err := broker.List(context.Background()); !apperrors.IsType(err, apperrors.ErrorTypeMessaging) {
		t.Fatalf("expected messaging error after close, got %v", err)
	}
}

func TestStorageBroker_CanceledContext(t *testing.T) {
	broker, _ := newTestBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := broker.List(ctx); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
