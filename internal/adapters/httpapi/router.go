package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: handlers decode and validate the
// request shape and delegate to the application services.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", s.getStores)
			r.Get("/clearance", s.getClearances)
			r.Get("/countstorecalls", s.countStoreCalls)
			r.Get("/countzipcodecalls", s.countZipcodeCalls)
		})
		r.Get("/products/count", s.countProducts)
		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", s.generateRecipe)
			r.Post("/save-recipe", s.saveRecipe)
			r.Get("/", s.listRecipes)
			r.Patch("/{id}", s.updateRecipe)
			r.Delete("/{id}", s.deleteRecipe)
		})
		r.Route("/shopping-list", func(r chi.Router) {
			r.Post("/save-shopping-list", s.saveShoppingList)
			r.Get("/", s.listShoppingLists)
			r.Delete("/{id}", s.deleteShoppingList)
		})
	})

	return r
}
