package api

import (
	"net/http"
	"time"

	"github.com/futig/planner-backend/internal/api/docs"
	"github.com/futig/planner-backend/internal/api/middleware"
	questionapi "github.com/futig/planner-backend/internal/api/question"
	"github.com/futig/planner-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(questionHandler *questionapi.Handler, logger *zap.Logger, handlerTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.CORS)           // Handle CORS

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	docs.RegisterRoutes(r)

	questionapi.RegisterRoutes(r, questionHandler, handlerTimeout)

	return r
}
