package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ayush/todolist/backend/internal/auth"
	"github.com/ayush/todolist/backend/internal/httpjson"
	"github.com/ayush/todolist/backend/internal/middleware"
	"github.com/ayush/todolist/backend/internal/todo"
)

// Deps are the collaborators the router wires together. Auth and Exports
// may be nil, in which case their routes are not registered.
type Deps struct {
	Logger         zerolog.Logger
	Sessions       middleware.SessionResolver
	Auth           *auth.Handler
	Todos          *todo.Handler
	Exports        *todo.ExportHandler
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(d.Sessions)

	if d.Auth != nil {
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)
			r.With(requireAuth).Get("/me", d.Auth.Me)
		})
	}

	r.Route("/api/todos", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", d.Todos.List)
		r.Post("/", d.Todos.Create)
		r.Put("/", d.Todos.Update)
		r.Delete("/", d.Todos.Delete)
		r.Delete("/clear", d.Todos.Clear)
		if d.Exports != nil {
			r.Post("/export", d.Exports.Create)
			r.Get("/export/{name}", d.Exports.Download)
		}
	})

	return r
}
