package api

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mkataria09/sealdrop/internal/api/handlers"
	"github.com/mkataria09/sealdrop/internal/api/middleware"
	"github.com/mkataria09/sealdrop/internal/config"
	"github.com/mkataria09/sealdrop/internal/envelope"
	"github.com/mkataria09/sealdrop/internal/identity"
	"github.com/mkataria09/sealdrop/internal/repositories"
)

// Deps carries everything the HTTP layer needs, injected from main.
type Deps struct {
	Identity *identity.Service
	Issuer   *identity.TokenIssuer
	Manager  *envelope.Manager
	Store    *repositories.Store
	Logger   zerolog.Logger
}

func SetupRouter(cfg config.Config, deps Deps) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig)

	authHandler := handlers.NewAuthHandler(deps.Identity, deps.Issuer, cfg.Environment)
	userHandler := handlers.NewUserHandler(deps.Identity, deps.Store)
	docHandler := handlers.NewDocumentHandler(deps.Manager)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("POST /api/v1/auth/token", authHandler.Token)
	mainMux.HandleFunc("POST /api/v1/users", userHandler.Create)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("POST /auth/logout", authHandler.Logout)

	protectedMux.HandleFunc("GET /users", userHandler.List)
	protectedMux.HandleFunc("GET /users/me", userHandler.Me)

	protectedMux.HandleFunc("POST /documents", docHandler.Upload)
	protectedMux.HandleFunc("GET /documents", docHandler.List)
	protectedMux.HandleFunc("GET /documents/{id}", docHandler.Get)
	protectedMux.HandleFunc("GET /documents/{id}/download", docHandler.Download)
	protectedMux.HandleFunc("POST /documents/{id}/share", docHandler.Share)
	protectedMux.HandleFunc("POST /documents/{id}/revoke", docHandler.Revoke)
	protectedMux.HandleFunc("DELETE /documents/{id}", docHandler.Delete)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.Auth(deps.Issuer, deps.Identity)(protectedMux),
		),
	)

	handler := c.Handler(mainMux)
	handler = middleware.Logger(deps.Logger)(handler)
	return handler
}
