package api

import (
	"net/http"
	"time"

	"billed/internal/api/handler"
	"billed/internal/app/service"
	"billed/internal/common/security"
	"billed/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// Deps are the services and settings the HTTP layer is built from.
type Deps struct {
	AuthService *service.AuthService
	BillService *service.BillService
	Sessions    storage.Provider
	Pages       handler.PageConfig
	Logger      *zap.Logger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" and puts the verified token in the
	// context; pages authenticate with their session cookie instead.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService, deps.Logger)
		v1.Route("/auth", authHandler.RegisterRoutes)

		billHandler := handler.NewBillHandler(deps.BillService, deps.Pages.MaxUploadBytes, deps.Logger)
		v1.Route("/bills", billHandler.RegisterRoutes)
	})

	fileHandler := handler.NewFileHandler(deps.BillService, deps.Logger)
	r.Route("/files", fileHandler.RegisterRoutes)

	pageHandler := handler.NewPageHandler(deps.AuthService, deps.BillService, deps.Sessions, deps.Pages, deps.Logger)
	r.Group(pageHandler.RegisterRoutes)

	return r
}
