package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Messaging  *MessagingHandler
	Highlights *HighlightHandler
	Settings   *SettingsHandler
	Summaries  *SummaryHandler
	Capture    *CaptureHandler
	Popup      *PopupHandler
}

// NewRouter creates a new HTTP router with all routes configured. apiMiddleware
// wraps the /api/v1 routes only; the popup page and health check are public.
func NewRouter(h Handlers, allowedOrigins []string, apiMiddleware ...mux.MiddlewareFunc) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"highlight-saver"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	for _, mw := range apiMiddleware {
		api.Use(mw)
	}

	api.HandleFunc("/messages", h.Messaging.Send).Methods(http.MethodPost)

	api.HandleFunc("/highlights", h.Highlights.ListHighlights).Methods(http.MethodGet)
	api.HandleFunc("/highlights", h.Highlights.CreateHighlight).Methods(http.MethodPost)
	api.HandleFunc("/highlights", h.Highlights.ClearHighlights).Methods(http.MethodDelete)
	api.HandleFunc("/highlights/{id}", h.Highlights.DeleteHighlight).Methods(http.MethodDelete)

	api.HandleFunc("/settings/api-key", h.Settings.GetAPIKey).Methods(http.MethodGet)
	api.HandleFunc("/settings/api-key", h.Settings.UpdateAPIKey).Methods(http.MethodPut)

	api.HandleFunc("/summaries", h.Summaries.Summarize).Methods(http.MethodPost)

	api.HandleFunc("/capture", h.Capture.Capture).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{tab}/selection", h.Capture.Select).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{tab}/dismiss", h.Capture.Dismiss).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{tab}/save", h.Capture.Save).Methods(http.MethodPost)
	api.HandleFunc("/tabs/{tab}/popup", h.Capture.Popup).Methods(http.MethodGet)
	api.HandleFunc("/tabs/{tab}", h.Capture.CloseTab).Methods(http.MethodDelete)

	router.HandleFunc("/popup", h.Popup.Page).Methods(http.MethodGet)
	router.HandleFunc("/popup/highlights/{id}/delete", h.Popup.Delete).Methods(http.MethodPost)
	router.HandleFunc("/popup/clear", h.Popup.Clear).Methods(http.MethodPost)
	router.HandleFunc("/popup/api-key", h.Popup.SaveAPIKey).Methods(http.MethodPost)
	router.HandleFunc("/popup/summarize", h.Popup.Summarize).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			ExtensionTokenHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
