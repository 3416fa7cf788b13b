/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  Structured request logging (zerolog)
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the front-desk UI

SECURITY NOTE:
  No authentication middleware. The engine is deployed on the gym's
  local network behind the front-desk machine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gymflex/ops-engine/logging"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.RegisterClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Post("/{id}/measurements", h.AddMeasurement)
			r.Post("/{id}/renew", h.RenewClient)
			r.Post("/{id}/installment-plans", h.CreateInstallmentPlan)
			r.Get("/{id}/installment-plans", h.ListInstallmentPlans)
		})

		// Membership plan catalog
		r.Route("/memberships", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.SavePlan)
			r.Delete("/{id}", h.DeletePlan)
		})

		// Product inventory and point of sale
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.SaveProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/{id}/sell", h.SellProduct)
		})

		// Installment settlement
		r.Route("/installments", func(r chi.Router) {
			r.Get("/overdue", h.ListOverdueInstallments)
			r.Post("/{id}/pay", h.PayInstallment)
		})

		// Check-in kiosk
		r.Post("/checkin", h.CheckIn)
		r.Get("/attendance", h.ListAttendanceLogs)

		// Ledger and configuration
		r.Get("/transactions", h.ListTransactions)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
	})

	return r
}
