package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/coffee-shop/app"
	"github.com/upb/coffee-shop/handlers"
	"github.com/upb/coffee-shop/middleware"
	"github.com/upb/coffee-shop/utils"
)

// Permissions granted by the identity provider for the drink menu
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(deps),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(healthChecker(deps), deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	drinks := handlers.NewDrinkHandler(deps.DrinkService, deps.Logger)
	auth := deps.AuthMiddleware

	// The public menu; everything else needs a permission
	r.Get("/drinks", drinks.HandleList)
	r.With(auth.RequirePermission(PermissionGetDrinksDetail)).Get("/drinks-detail", drinks.HandleListDetail)
	r.With(auth.RequirePermission(PermissionPostDrinks)).Post("/drinks", drinks.HandleCreate)
	r.With(auth.RequirePermission(PermissionPatchDrinks)).Patch("/drinks/{id}", drinks.HandleUpdate)
	r.With(auth.RequirePermission(PermissionDeleteDrinks)).Delete("/drinks/{id}", drinks.HandleDelete)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	return r
}

func allowedOrigins(deps *app.Dependencies) []string {
	if deps.Config == nil || len(deps.Config.Server.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return deps.Config.Server.AllowedOrigins
}

// healthChecker avoids handing a typed nil to the readiness check
func healthChecker(deps *app.Dependencies) handlers.HealthChecker {
	if deps.DB == nil {
		return nil
	}
	return deps.DB
}
