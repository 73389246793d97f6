package service

import (
	"context"
	"errors"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/popup"
	apperrors "highlight-saver/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// PopupService runs the side effects of the highlight list. Each method
// performs one request against the broker or summarizer and returns the
// popup.Action describing its outcome; callers feed it to popup.Reduce.
type PopupService struct {
	broker     domain.StorageBroker
	summarizer domain.Summarizer
	logger     domain.Logger
}

func NewPopupService(broker domain.StorageBroker, summarizer domain.Summarizer, logger domain.Logger) *PopupService {
	return &PopupService{
		broker:     broker,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Load fetches the collection and the API key concurrently.
func (s *PopupService) Load(ctx context.Context) popup.Action {
	var (
		highlights domain.Collection
		apiKey     string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.broker.List(gctx)
		if err != nil {
			return err
		}
		highlights = list
		return nil
	})
	g.Go(func() error {
		key, err := s.broker.GetAPIKey(gctx)
		if err != nil {
			return err
		}
		apiKey = key
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load popup state", err)
		return popup.LoadFailed{Message: apperrors.UserMessage(err)}
	}
	return popup.Loaded{Highlights: highlights, APIKey: apiKey}
}

// Delete removes one highlight.
func (s *PopupService) Delete(ctx context.Context, id string) popup.Action {
	if err := s.broker.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete highlight", err, "id", id)
		return popup.OperationFailed{Message: apperrors.UserMessage(err)}
	}
	s.logger.Info("Highlight deleted", "id", id)
	return popup.HighlightDeleted{ID: id}
}

// Clear empties the collection. Unconfirmed requests only ask for confirmation.
func (s *PopupService) Clear(ctx context.Context, confirmed bool) popup.Action {
	if !confirmed {
		return popup.ClearRequested{}
	}
	if err := s.broker.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear highlights", err)
		return popup.OperationFailed{Message: apperrors.UserMessage(err)}
	}
	s.logger.Info("Highlights cleared")
	return popup.Cleared{}
}

// SaveAPIKey stores the Gemini key.
func (s *PopupService) SaveAPIKey(ctx context.Context, key string) popup.Action {
	if err := s.broker.SetAPIKey(ctx, key); err != nil {
		s.logger.Error("Failed to save API key", err)
		return popup.OperationFailed{Message: apperrors.UserMessage(err)}
	}
	return popup.APIKeySaved{Key: key}
}

// Summarize summarizes the highlight with the given id, or the whole
// collection when id is empty. A missing key opens the key panel without any
// network request.
func (s *PopupService) Summarize(ctx context.Context, state popup.State, id string) popup.Action {
	if state.APIKey == "" {
		return popup.APIKeyMissing{}
	}

	targets := state.Highlights
	if id != "" {
		h, ok := state.Highlights.Find(id)
		if !ok {
			return popup.SummarizeFailed{ID: id, Message: "Highlight not found"}
		}
		targets = domain.Collection{h}
	}
	if len(targets) == 0 {
		return popup.SummarizeFailed{ID: id, Message: "No highlights to summarize"}
	}

	summary, err := s.summarizer.Summarize(ctx, state.APIKey, targets)
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyRequired) {
			return popup.APIKeyMissing{}
		}
		s.logger.Error("Summary request failed", err, "count", len(targets))
		return popup.SummarizeFailed{ID: id, Message: apperrors.UserMessage(err)}
	}
	return popup.SummarizeSucceeded{ID: id, Summary: *summary}
}
