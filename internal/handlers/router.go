package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter собирает маршруты API. frontendURL - разрешённый CORS-источник.
func NewRouter(h *Handler, frontendURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger, h.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		r.Get("/email/test", h.EmailTestHandler)
		r.Get("/metrics", h.MetricsHandler)

		// RFP
		r.Post("/rfps", h.CreateRFPHandler)
		r.Get("/rfps", h.GetRFPsHandler)
		r.Get("/rfps/{rfpId}", h.GetRFPHandler)
		r.Put("/rfps/{rfpId}", h.UpdateRFPHandler)
		r.Put("/rfps/{rfpId}/status", h.UpdateRFPStatusHandler)
		r.Delete("/rfps/{rfpId}", h.DeleteRFPHandler)
		r.Post("/rfps/{rfpId}/send", h.SendRFPHandler)
		r.Post("/rfps/{rfpId}/compare", h.CompareProposalsHandler)

		// поставщики
		r.Post("/vendors", h.CreateVendorHandler)
		r.Get("/vendors", h.GetVendorsHandler)
		r.Get("/vendors/{vendorId}", h.GetVendorHandler)
		r.Put("/vendors/{vendorId}", h.UpdateVendorHandler)
		r.Delete("/vendors/{vendorId}", h.DeleteVendorHandler)

		// предложения
		r.Post("/proposals/inbound", h.InboundProposalHandler)
		r.Get("/proposals/rfp/{rfpId}", h.GetProposalsForRFPHandler)
		r.Get("/proposals/{proposalId}", h.GetProposalHandler)
		r.Post("/proposals/{proposalId}/reparse", h.ReparseProposalHandler)
		r.Put("/proposals/{proposalId}/status", h.UpdateProposalStatusHandler)
		r.Delete("/proposals/{proposalId}", h.DeleteProposalHandler)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	return r
}
