package transport

import (
	"net/http"

	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes behind the given middleware
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Use(authMiddleware...)
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	products, err := h.productService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	raw, err := middleware.DecodeJSONObject(r)
	if err != nil {
		middleware.RespondWithValidationErrors(w, middleware.FieldErrors{middleware.BodyField: {err.Error()}})
		return
	}

	in, fieldErrs := ParseCreateProductRequest(raw)
	if len(fieldErrs) > 0 {
		h.logger.Debug("Product validation failed", zap.Strings("fields", fieldErrs.Fields()))
		middleware.RespondWithValidationErrors(w, fieldErrs)
		return
	}

	product, err := h.productService.Create(r.Context(), userID, in)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}
