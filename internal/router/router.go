// Package router wires handlers and middleware into the HTTP route table.
package router

import (
	"net/http"

	"carhub/internal/auth"
	"carhub/internal/handler"
	"carhub/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers bundles the per-resource handlers the router mounts.
type Handlers struct {
	Vehicle   *handler.VehicleHandler
	User      *handler.UserHandler
	Promotion *handler.PromotionHandler
	Order     *handler.OrderHandler
	Complaint *handler.ComplaintHandler
	Scan      *handler.ScanHandler
}

// New creates the HTTP router with all routes and middleware configured.
// Health and auth are public, reads and order placement need a valid token,
// catalogue and promotion mutations need the admin role.
func New(h Handlers, issuer *auth.TokenIssuer, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.User.Register)
		r.Post("/auth/login", h.User.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(issuer, logger))
			admin := middleware.RequireAdmin(logger)

			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", h.Vehicle.List)
				r.Get("/stats", h.Vehicle.Stats)
				r.Post("/lookup", h.Scan.Lookup)
				r.Get("/{id}", h.Vehicle.GetByID)
				r.Get("/{id}/scans", h.Scan.ListByVehicle)
				r.Get("/{id}/scans/stats", h.Scan.Stats)

				r.With(admin).Post("/", h.Vehicle.Create)
				r.With(admin).Put("/{id}", h.Vehicle.Update)
				r.With(admin).Patch("/{id}/status", h.Vehicle.UpdateStatus)
				r.With(admin).Post("/{id}/qrcode", h.Vehicle.GenerateQR)
				r.With(admin).Delete("/{id}", h.Vehicle.Delete)
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", h.Promotion.List)
				r.Get("/active", h.Promotion.Active)
				r.Get("/vehicle/{id}", h.Promotion.ListForVehicle)
				r.Post("/validate", h.Promotion.ValidateCode)
				r.Post("/apply", h.Promotion.ApplyCode)
				r.Get("/{id}", h.Promotion.GetByID)

				r.With(admin).Post("/", h.Promotion.Create)
				r.With(admin).Get("/analytics", h.Promotion.Analytics)
				r.With(admin).Put("/{id}", h.Promotion.Update)
				r.With(admin).Patch("/{id}/status", h.Promotion.UpdateStatus)
				r.With(admin).Post("/{id}/regenerate-code", h.Promotion.RegenerateCode)
				r.With(admin).Delete("/{id}", h.Promotion.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Order.Create)
				r.Get("/{id}", h.Order.GetByID)
				r.Get("/user/{userId}", h.Order.ByUser)
				r.Delete("/{id}", h.Order.Cancel)

				r.With(admin).Get("/", h.Order.List)
				r.With(admin).Get("/stats", h.Order.Stats)
				r.With(admin).Get("/vehicle/{vehicleId}", h.Order.ByVehicle)
				r.With(admin).Put("/{id}/status", h.Order.UpdateStatus)
				r.With(admin).Put("/{id}/payment", h.Order.UpdatePayment)
			})

			r.Post("/scans", h.Scan.Record)

			r.Route("/complaints", func(r chi.Router) {
				r.Post("/", h.Complaint.Create)

				r.With(admin).Get("/", h.Complaint.List)
				r.With(admin).Get("/{id}", h.Complaint.GetByID)
				r.With(admin).Put("/{id}", h.Complaint.Update)
				r.With(admin).Delete("/{id}", h.Complaint.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(admin).Get("/", h.User.List)
				r.With(admin).Get("/{id}", h.User.GetByID)
				r.With(admin).Patch("/{id}/blocked", h.User.SetBlocked)
				r.With(admin).Delete("/{id}", h.User.Delete)
			})
		})
	})

	return r
}
