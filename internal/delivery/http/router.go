package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"liveask/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, streamController *controllers.StreamController) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /api/event", eventController.CreateEvent)
	mux.HandleFunc("GET /api/event/{eventID}", eventController.GetEvent)
	mux.HandleFunc("GET /api/event/{eventID}/mod/{secret}", eventController.GetEventMod)

	// Questions
	mux.HandleFunc("POST /api/event/{eventID}/question", eventController.AddQuestion)
	mux.HandleFunc("PUT /api/event/{eventID}/like", eventController.EditLike)
	mux.HandleFunc("POST /api/event/{eventID}/mod/{secret}/question/{questionID}", eventController.ModerateQuestion)

	// Push synchronization
	mux.HandleFunc("GET /api/event/{eventID}/stream", streamController.Stream)

	// Health
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
