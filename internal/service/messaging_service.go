package service

import (
	"context"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

// BrokerMessenger dispatches typed messages to the storage broker in process.
// It is what the HTTP messaging endpoint and the CLI talk to.
type BrokerMessenger struct {
	broker domain.StorageBroker
	logger domain.Logger
}

func NewBrokerMessenger(broker domain.StorageBroker, logger domain.Logger) *BrokerMessenger {
	return &BrokerMessenger{broker: broker, logger: logger}
}

// Send always returns a response. On failure the response carries
// Success=false and the user-facing error, and err is the cause.
func (m *BrokerMessenger) Send(ctx context.Context, msg domain.Message) (*domain.MessageResponse, error) {
	if m.broker == nil {
		err := apperrors.NewMessagingError("Extension storage is not available", nil)
		return failure(err), err
	}
	if err := msg.Validate(); err != nil {
		appErr := apperrors.NewValidationError("Invalid message", err.Error())
		return failure(appErr), appErr
	}

	m.logger.Debug("Message received", "action", msg.Action)

	switch msg.Action {
	case domain.ActionGetHighlights:
		highlights, err := m.broker.List(ctx)
		if err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true, Highlights: highlights}, nil

	case domain.ActionSaveHighlight:
		if err := m.broker.Add(ctx, *msg.Highlight); err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true}, nil

	case domain.ActionDeleteHighlight:
		if err := m.broker.Delete(ctx, msg.HighlightID); err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true}, nil

	case domain.ActionClearHighlights:
		if err := m.broker.Clear(ctx); err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true}, nil

	case domain.ActionGetAPIKey:
		key, err := m.broker.GetAPIKey(ctx)
		if err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true, APIKey: &key}, nil

	case domain.ActionSetAPIKey:
		if err := m.broker.SetAPIKey(ctx, *msg.APIKey); err != nil {
			return failure(err), err
		}
		return &domain.MessageResponse{Success: true}, nil
	}

	// Validate rejects unknown actions; this is unreachable.
	err := apperrors.NewValidationError("Unknown action", string(msg.Action))
	return failure(err), err
}

func failure(err error) *domain.MessageResponse {
	return &domain.MessageResponse{Success: false, Error: apperrors.UserMessage(err)}
}

var _ domain.Messenger = (*BrokerMessenger)(nil)
