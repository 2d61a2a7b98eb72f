package order

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/chat", h.HandleChat)
	r.Get("/api/orders", h.ListOrders)
	r.Get("/api/orders/{id}", h.GetOrder)
}
