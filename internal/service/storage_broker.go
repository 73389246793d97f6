package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

// StorageBroker serializes every read-modify-write of the collection through a
// single goroutine, so concurrent saves and deletes cannot lose updates.
// Nothing is cached: each operation reads the store.
type StorageBroker struct {
	store  domain.KeyValueStore
	logger domain.Logger

	requests chan brokerRequest
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

type brokerRequest struct {
	ctx   context.Context
	fn    func(ctx context.Context) error
	reply chan error
}

func NewStorageBroker(store domain.KeyValueStore, logger domain.Logger) *StorageBroker {
	b := &StorageBroker{
		store:    store,
		logger:   logger,
		requests: make(chan brokerRequest),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *StorageBroker) run() {
	defer close(b.stopped)
	for {
		select {
		case req := <-b.requests:
			req.reply <- req.fn(req.ctx)
		case <-b.done:
			return
		}
	}
}

// Close stops the writer goroutine. Pending callers get ErrBrokerClosed.
// The underlying store is left open; its owner closes it.
func (b *StorageBroker) Close() error {
	b.once.Do(func() { close(b.done) })
	<-b.stopped
	return nil
}

func (b *StorageBroker) do(ctx context.Context, fn func(ctx context.Context) error) error {
	req := brokerRequest{ctx: ctx, fn: fn, reply: make(chan error, 1)}
	select {
	case b.requests <- req:
	case <-b.done:
		return apperrors.NewMessagingError("Storage is unavailable", domain.ErrBrokerClosed)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns the collection, newest first.
func (b *StorageBroker) List(ctx context.Context) (domain.Collection, error) {
	var out domain.Collection
	err := b.do(ctx, func(ctx context.Context) error {
		c, err := b.readCollection(ctx)
		out = c
		return err
	})
	return out, err
}

// Add prepends highlight to the collection.
func (b *StorageBroker) Add(ctx context.Context, highlight domain.Highlight) error {
	if err := highlight.Validate(); err != nil {
		return apperrors.NewValidationError("Invalid highlight", err.Error())
	}
	return b.do(ctx, func(ctx context.Context) error {
		c, err := b.readCollection(ctx)
		if err != nil {
			return err
		}
		if c.Contains(highlight.ID) {
			return apperrors.NewValidationError("Highlight already exists", highlight.ID)
		}
		if err := b.writeCollection(ctx, c.Prepend(highlight)); err != nil {
			return err
		}
		b.logger.Info("Highlight saved", "highlight_id", highlight.ID, "url", highlight.URL, "count", len(c)+1)
		return nil
	})
}

// Delete removes the entry with id. Unknown ids are a no-op.
func (b *StorageBroker) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("Highlight ID is required")
	}
	return b.do(ctx, func(ctx context.Context) error {
		c, err := b.readCollection(ctx)
		if err != nil {
			return err
		}
		if !c.Contains(id) {
			b.logger.Debug("Delete of unknown highlight ignored", "highlight_id", id)
			return nil
		}
		if err := b.writeCollection(ctx, c.Without(id)); err != nil {
			return err
		}
		b.logger.Info("Highlight deleted", "highlight_id", id)
		return nil
	})
}

// Clear empties the collection.
func (b *StorageBroker) Clear(ctx context.Context) error {
	return b.do(ctx, func(ctx context.Context) error {
		if err := b.writeCollection(ctx, domain.Collection{}); err != nil {
			return err
		}
		b.logger.Info("All highlights cleared")
		return nil
	})
}

// GetAPIKey returns the stored key, empty when never set.
func (b *StorageBroker) GetAPIKey(ctx context.Context) (string, error) {
	var key string
	err := b.do(ctx, func(ctx context.Context) error {
		values, err := b.store.Get(ctx, domain.APIKeyKey)
		if err != nil {
			return apperrors.NewStorageError("Failed to read API key", err)
		}
		raw, ok := values[domain.APIKeyKey]
		if !ok || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, &key); err != nil {
			return apperrors.NewStorageError("Stored API key is corrupt", err)
		}
		return nil
	})
	return key, err
}

// SetAPIKey overwrites the stored key. An empty key is allowed and disables summaries.
func (b *StorageBroker) SetAPIKey(ctx context.Context, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return apperrors.NewInternalError("Failed to encode API key", err)
	}
	return b.do(ctx, func(ctx context.Context) error {
		if err := b.store.Set(ctx, map[string][]byte{domain.APIKeyKey: data}); err != nil {
			return apperrors.NewStorageError("Failed to save API key", err)
		}
		b.logger.Info("API key updated", "set", key != "")
		return nil
	})
}

func (b *StorageBroker) readCollection(ctx context.Context) (domain.Collection, error) {
	values, err := b.store.Get(ctx, domain.HighlightsKey)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to read highlights", err)
	}
	raw, ok := values[domain.HighlightsKey]
	if !ok || len(raw) == 0 {
		return domain.Collection{}, nil
	}
	var c domain.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, apperrors.NewStorageError("Stored highlights are corrupt", err)
	}
	if c == nil {
		c = domain.Collection{}
	}
	return c, nil
}

func (b *StorageBroker) writeCollection(ctx context.Context, c domain.Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return apperrors.NewInternalError("Failed to encode highlights", err)
	}
	if err := b.store.Set(ctx, map[string][]byte{domain.HighlightsKey: data}); err != nil {
		return apperrors.NewStorageError("Failed to save highlights", fmt.Errorf("write %d highlights: %w", len(c), err))
	}
	return nil
}

var _ domain.StorageBroker = (*StorageBroker)(nil)
