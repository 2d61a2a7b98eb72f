package order

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/orderbot/internal/ai"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc    Service
	orders OrderReader
}

// NewHandler: orders may be nil when no store is configured.
func NewHandler(svc Service, orders OrderReader) *Handler {
	return &Handler{svc: svc, orders: orders}
}

type chatResponse struct {
	Reply   string     `json:"reply"`
	Context OrderState `json:"context"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// HandleChat runs one conversational turn.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message *string         `json:"message"`
		Context json.RawMessage `json:"context"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid json"})
		return
	}
	if payload.Message == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "missing message"})
		return
	}

	res, err := h.svc.HandleTurn(r.Context(), TurnRequest{
		Message: *payload.Message,
		Context: payload.Context,
	})
	if err != nil {
		if errors.Is(err, ai.ErrBlocked) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: res.Reply})
			return
		}
		log.Printf("[http] turn error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "processing error"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: res.Reply, Context: res.State})
}

type ordersResponse struct {
	Orders []Record `json:"orders"`
}

// ListOrders returns every saved order, oldest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "order store not configured"})
		return
	}

	list, err := h.orders.ListOrders(r.Context())
	if err != nil {
		log.Printf("[http] list orders error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "processing error"})
		return
	}

	writeJSON(w, http.StatusOK, ordersResponse{Orders: list})
}

// GetOrder returns a saved order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "order store not configured"})
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.orders.GetOrder(r.Context(), id)
	if errors.Is(err, ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "order not found"})
		return
	}
	if err != nil {
		log.Printf("[http] get order id=%s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "processing error"})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[http] encode response: %v", err)
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Detail: "processing error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(b, '\n'))
}
