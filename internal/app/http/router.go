package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"logolate/go_backend/internal/app/config"
	"logolate/go_backend/internal/app/http/handlers"
	"logolate/go_backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{id}", h.UpdateCartItem)
			r.Delete("/items/{id}", h.RemoveCartItem)
			r.Post("/validate-minimums", h.ValidateCartMinimums)
			r.Get("/events", h.CartEvents)
		})

		r.Post("/quotes/validate", h.ValidateQuote)
		r.Post("/quotes", h.CreateQuote)
		r.Get("/catalog/{carousel}", h.Carousel)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.InternalAuth(cfg.InternalToken))

			r.Get("/products", h.AdminListProducts)
			r.Post("/products", h.AdminCreateProduct)
			r.Get("/products/{id}", h.AdminGetProduct)
			r.Put("/products/{id}", h.AdminUpdateProduct)
			r.Delete("/products/{id}", h.AdminDeleteProduct)

			r.Get("/categories", h.AdminListCategories)
			r.Post("/categories", h.AdminCreateCategory)
			r.Put("/categories/{id}", h.AdminUpdateCategory)
			r.Delete("/categories/{id}", h.AdminDeleteCategory)

			r.Get("/budgets", h.AdminListBudgets)
			r.Get("/budgets/{id}", h.AdminGetBudget)
			r.Put("/budgets/{id}/status", h.AdminUpdateBudgetStatus)
			r.Get("/budgets/{id}/pdf", h.AdminBudgetPDF)

			r.Get("/configuration", h.AdminGetConfiguration)
			r.Put("/configuration", h.AdminUpdateConfiguration)
		})
	})

	return r
}
