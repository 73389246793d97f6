package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"highlight-saver/internal/config"
	"highlight-saver/internal/handler"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			container.Logger.Error("Failed to close storage", err)
		}
	}()

	// Handlers
	handlers := handler.Handlers{
		Messaging:  handler.NewMessagingHandler(container.Messenger, container.Logger),
		Highlights: handler.NewHighlightHandler(container.StorageBroker, container.Logger),
		Settings:   handler.NewSettingsHandler(container.StorageBroker, container.Logger),
		Summaries:  handler.NewSummaryHandler(container.StorageBroker, container.Summarizer, container.Logger),
		Capture:    handler.NewCaptureHandler(container.Capture, container.PopupRegistry, container.Logger),
		Popup:      handler.NewPopupHandler(container.PopupService, container.Logger),
	}

	tokenMiddleware := handler.NewExtensionTokenMiddleware(
		container.Config.GetExtensionToken(),
		container.Logger,
	)

	// Router
	router := handler.NewRouter(
		handlers,
		container.Config.GetAllowedOrigins(),
		mux.MiddlewareFunc(tokenMiddleware.Middleware),
	)

	// start server
	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           handler.RequestLogger(container.Logger)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr, "store", container.Config.GetStoreDriver())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		container.Logger.Error("Server failed to start", err)
		return
	}

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
	}

	container.Logger.Info("Server exited")
}
