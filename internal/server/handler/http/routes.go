package http

import (
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the FaultKeeper API handler.
//
// Routes:
//
//	GET    /api/brands                 → catalog.ListBrands
//	GET    /api/brands/{id}            → catalog.GetBrand
//	GET    /api/brands/{id}/models     → catalog.ListBrandModels
//	GET    /api/models/{id}            → catalog.GetModel
//	GET    /api/faults                 → catalog.ListFaults
//	GET    /api/search                 → catalog.SearchFaults
//	GET    /api/faults/{id}            → account.GetFault    (user, quota)
//	GET    /api/account                → account.GetAccount  (user)
//	POST   /api/account/upgrade        → account.Upgrade     (user)
//	POST   /api/account/downgrade      → account.Downgrade   (user)
//	GET    /api/favorites              → favorites.List      (user, pro)
//	GET    /api/favorites/count        → favorites.Count     (user, pro)
//	GET    /api/favorites/{faultId}    → favorites.Get       (user, pro)
//	PUT    /api/favorites/{faultId}    → favorites.Put       (user, pro)
//	DELETE /api/favorites/{faultId}    → favorites.Delete    (user, pro)
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. AllowContentType("application/json") (rejects non-JSON bodies)
//  3. WithRequestLogging(logger)
//  4. Recoverer
//  5. Locale                               (?lang= or Accept-Language)
//  6. Authenticate(jwtSecret)              (optional bearer identity)
func NewRouter(
	catalog *CatalogHandler,
	account *AccountHandler,
	favorites *FavoritesHandler,
	jwtSecret []byte,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Locale)
	r.Use(middleware.Authenticate(jwtSecret))

	r.Route("/api", func(r chi.Router) {
		// Public catalog
		r.Get("/brands", catalog.ListBrands)
		r.Get("/brands/{id}", catalog.GetBrand)
		r.Get("/brands/{id}/models", catalog.ListBrandModels)
		r.Get("/models/{id}", catalog.GetModel)
		r.Get("/faults", catalog.ListFaults)
		r.Get("/search", catalog.SearchFaults)

		// Signed-in users
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/faults/{id}", account.GetFault)
			r.Get("/account", account.GetAccount)
			r.Post("/account/upgrade", account.Upgrade)
			r.Post("/account/downgrade", account.Downgrade)

			r.Route("/favorites", func(r chi.Router) {
				r.Use(account.RequirePro)

				r.Get("/", favorites.List)
				r.Get("/count", favorites.Count)
				r.Get("/{faultId}", favorites.Get)
				r.Put("/{faultId}", favorites.Put)
				r.Delete("/{faultId}", favorites.Delete)
			})
		})
	})

	return r
}
