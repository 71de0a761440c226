package httpserver

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"net/http"
	"time"
)

type Server struct{ mux *chi.Mux }

// New builds the router. An export walks a storefront's whole review history
// in one request, so the handler timeout is far above the usual API default.
func New(timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	m := chi.NewRouter()

	// ✅ All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer) // chi's built-in recover
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"}, // browsers need the filename
		AllowCredentials: false,
		MaxAge:           300,
	}))
	m.Use(Timeout(timeout)) // timeout wrapper
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
