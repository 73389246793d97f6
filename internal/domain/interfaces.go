package domain

import "context"

// KeyValueStore is the persistent store behind the storage broker. Values are
// opaque JSON documents addressed by key.
type KeyValueStore interface {
	// Get returns the values for the requested keys. Missing keys are absent from the map.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Set writes every entry of values.
	Set(ctx context.Context, values map[string][]byte) error
	Close() error
}

// StorageBroker owns every read and write of the highlight collection and API key.
type StorageBroker interface {
	List(ctx context.Context) (Collection, error)
	Add(ctx context.Context, highlight Highlight) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	GetAPIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
}

// Messenger sends a typed request to the storage broker and returns its reply.
type Messenger interface {
	Send(ctx context.Context, msg Message) (*MessageResponse, error)
}

// Generator calls a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, apiKey string, req GenerationRequest) (string, error)
}

// Summarizer turns one or more highlights into a formatted summary.
type Summarizer interface {
	Summarize(ctx context.Context, apiKey string, highlights []Highlight) (*Summary, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetStoreDriver() string
	GetBoltPath() string
	GetSQLitePath() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseTable() string
	GetGeminiBaseURL() string
	GetGeminiModel() string
	GetSummaryTimeoutSeconds() int
	GetExtensionToken() string
	GetAllowedOrigins() []string
}
