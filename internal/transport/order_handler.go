package transport

import (
	"net/http"

	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes behind the given middleware
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware...)
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List handles GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	orders, err := h.orderService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	raw, err := middleware.DecodeJSONObject(r)
	if err != nil {
		h.logger.Debug("Order body rejected", zap.Error(err))
		middleware.RespondWithValidationErrors(w, middleware.FieldErrors{middleware.BodyField: {err.Error()}})
		return
	}

	in, fieldErrs := ParseCreateOrderRequest(raw)
	if len(fieldErrs) > 0 {
		h.logger.Debug("Order validation failed", zap.Strings("fields", fieldErrs.Fields()))
		middleware.RespondWithValidationErrors(w, fieldErrs)
		return
	}

	order, err := h.orderService.Create(r.Context(), userID, in)
	if err != nil {
		h.logger.Error("Failed to create order", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("Order created",
		zap.String("user_id", userID.String()),
		zap.Int64("order_id", order.ID),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
