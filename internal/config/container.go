package config

import (
	"errors"
	"time"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/repository"
	"highlight-saver/internal/service"
	"highlight-saver/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config domain.Config
	Logger domain.Logger

	Store         domain.KeyValueStore
	StorageBroker *service.StorageBroker
	Messenger     domain.Messenger

	Generator     domain.Generator
	Summarizer    domain.Summarizer
	Capture       *service.CaptureService
	PopupRegistry *service.PopupRegistry
	PopupService  *service.PopupService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	return NewContainerWithConfig(cfg, logger.NewLogger(cfg.GetLogLevel()))
}

// NewContainerWithConfig wires the application around an existing config and logger.
func NewContainerWithConfig(cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	store, err := repository.NewKeyValueStore(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	broker := service.NewStorageBroker(store, appLogger)
	messenger := service.NewBrokerMessenger(broker, appLogger)

	timeout := time.Duration(cfg.GetSummaryTimeoutSeconds()) * time.Second
	generator := service.NewGeminiClient(cfg.GetGeminiBaseURL(), cfg.GetGeminiModel(), timeout)
	summarizer := service.NewSummarizeService(generator, appLogger, timeout)

	capture := service.NewCaptureService(messenger, appLogger)

	return &Container{
		Config:        cfg,
		Logger:        appLogger,
		Store:         store,
		StorageBroker: broker,
		Messenger:     messenger,
		Generator:     generator,
		Summarizer:    summarizer,
		Capture:       capture,
		PopupRegistry: service.NewPopupRegistry(capture),
		PopupService:  service.NewPopupService(broker, summarizer, appLogger),
	}, nil
}

// Close stops the broker and popups, then closes the store.
func (c *Container) Close() error {
	c.PopupRegistry.Close()
	return errors.Join(c.StorageBroker.Close(), c.Store.Close())
}
