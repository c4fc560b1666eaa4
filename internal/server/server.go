package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"printworks/internal/bulkadjust"
	"printworks/internal/checkout"
	"printworks/internal/pricing"
	"printworks/internal/store"
)

// Catalog is the read side the quote endpoint needs.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*store.Product, error)
	GetPreset(ctx context.Context, id uuid.UUID) (*pricing.Preset, error)
}

// Repricer reprices carts and places orders.
type Repricer interface {
	Reprice(ctx context.Context, lines []checkout.CartLine) (*checkout.Totals, error)
	PlaceOrder(ctx context.Context, lines []checkout.CartLine) (*store.Order, error)
}

// Adjuster runs bulk price adjustments.
type Adjuster interface {
	Run(ctx context.Context, req bulkadjust.Request) (*bulkadjust.Report, error)
}

type Server struct {
	catalog  Catalog
	engine   *pricing.Engine
	repricer Repricer
	adjuster Adjuster
}

// New wires the default production dependencies on top of the store.
func New(st *store.Store) http.Handler {
	engine := pricing.NewEngine()
	return NewWith(st, engine, checkout.New(st, st, engine), bulkadjust.New(st, engine))
}

// NewWith allows injecting custom collaborators, mainly for tests.
func NewWith(catalog Catalog, engine *pricing.Engine, repricer Repricer, adjuster Adjuster) http.Handler {
	s := &Server{catalog: catalog, engine: engine, repricer: repricer, adjuster: adjuster}
	r := chi.NewRouter()
	// Observability: Request ID and basic logger
	r.Use(requestIDMiddleware)
	r.Use(middleware.Logger)
	r.Get("/healthz", s.handleHealth)
	r.Post("/quote", s.handleQuote)
	r.Post("/checkout/reprice", s.handleReprice)
	r.Post("/orders", s.handleCreateOrder)
	r.Post("/admin/price-adjust", s.handlePriceAdjust)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	productID, params, err := req.Normalize()
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "product not found")
			return
		}
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
		return
	}
	if !product.IsActive || product.PresetID == nil {
		writeErrorJSON(w, http.StatusUnprocessableEntity, "unpriceable", "product has no active pricing preset")
		return
	}
	preset, err := s.catalog.GetPreset(ctx, *product.PresetID)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
		return
	}

	quote, err := s.engine.Quote(preset, params)
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleReprice(w http.ResponseWriter, r *http.Request) {
	lines, ok := s.decodeCart(w, r)
	if !ok {
		return
	}
	totals, err := s.repricer.Reprice(r.Context(), lines)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	lines, ok := s.decodeCart(w, r)
	if !ok {
		return
	}
	order, err := s.repricer.PlaceOrder(r.Context(), lines)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{
		OrderID:       order.ID.String(),
		Status:        order.Status,
		SubtotalCents: order.SubtotalCents,
		TotalCents:    order.TotalCents,
	})
}

func (s *Server) handlePriceAdjust(w http.ResponseWriter, r *http.Request) {
	var req bulkadjust.Request
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	report, err := s.adjuster.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrVersionConflict):
			writeErrorJSON(w, http.StatusConflict, "version_conflict", "presets changed since preview; re-run preview")
		case errors.Is(err, bulkadjust.ErrBadPercent):
			writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		case isBadRequest(err):
			writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			log.Println("price adjust error:", err)
			writeErrorJSON(w, http.StatusInternalServerError, "adjust_error", "price adjustment failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) decodeCart(w http.ResponseWriter, r *http.Request) ([]checkout.CartLine, bool) {
	var req CartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return nil, false
	}
	lines, err := req.Normalize()
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}
	return lines, true
}

func writePricingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidDimensions),
		errors.Is(err, pricing.ErrUnknownMaterial),
		errors.Is(err, pricing.ErrUnknownPrintMode),
		errors.Is(err, pricing.ErrUnknownSize),
		errors.Is(err, pricing.ErrUnknownCutType):
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, pricing.ErrNoActivePreset),
		errors.Is(err, pricing.ErrUnpriceable),
		errors.Is(err, pricing.ErrInvalidConfig):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "unpriceable", err.Error())
	default:
		log.Println("quote error:", err)
		writeErrorJSON(w, http.StatusInternalServerError, "quote_error", "failed to compute quote")
	}
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	if errors.Is(err, checkout.ErrUnavailable) {
		writeErrorJSON(w, http.StatusUnprocessableEntity, "product_unavailable", err.Error())
		return
	}
	if isBadRequest(err) {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	log.Println("checkout error:", err)
	writeErrorJSON(w, http.StatusInternalServerError, "checkout_error", "failed to reprice cart")
}

// isBadRequest covers plain validation messages that carry no sentinel.
func isBadRequest(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "empty") ||
		strings.Contains(msg, "selected")
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
