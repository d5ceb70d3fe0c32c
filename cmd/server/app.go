package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/auth"
	"github.com/soundscene/accounts/internal/config"
	"github.com/soundscene/accounts/internal/handlers"
	"github.com/soundscene/accounts/internal/services"
	"github.com/soundscene/accounts/internal/token"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux    *http.ServeMux
	tokens *token.Manager
	db     *gorm.DB
}

// NewApp creates the application with all routes configured. Route
// authorization lives in the handlers themselves as guard chains; the
// mux only dispatches.
func NewApp(db *gorm.DB, cfg config.Config) *App {
	app := &App{
		mux:    http.NewServeMux(),
		tokens: token.NewManager([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL),
		db:     db,
	}

	mutations := services.NewMutationService(db)
	queries := services.NewQueryService(db)

	handlers.NewAuthHandler(db, mutations, app.tokens).Register(app.mux)
	handlers.NewUserHandler(queries, mutations).Register(app.mux)

	app.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return app
}

// ServeHTTP implements http.Handler, resolving the requesting account
// before dispatch.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.tokens, a.db)(a.mux).ServeHTTP(w, r)
}
