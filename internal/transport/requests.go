package transport

import (
	"strconv"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the coerced form of a POST /orders body. Fields stay
// nil when absent or when they could not be coerced.
type CreateOrderRequest struct {
	CustomerID      *int64             `json:"customerId" validate:"required"`
	PaymentMethodID *int64             `json:"paymentMethodId"`
	Total           *decimal.Decimal   `json:"total" validate:"required"`
	Status          *string            `json:"status" validate:"omitnil,oneof=completed pending cancelled"`
	CreatedAt       *time.Time         `json:"created_at"`
	Products        []OrderLineRequest `json:"products" validate:"dive"`
}

// OrderLineRequest is one entry of the products array
type OrderLineRequest struct {
	ID       *int64           `json:"id" validate:"required"`
	Quantity *int64           `json:"quantity" validate:"required,gte=0"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
}

// CreateProductRequest is the coerced form of a POST /products body
type CreateProductRequest struct {
	Name        *string          `json:"name" validate:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	InStock     *int64           `json:"in_stock" validate:"required"`
	Category    *string          `json:"category"`
}

// ParseCreateOrderRequest coerces and validates a decoded order body.
// Top-level numbers also accept numeric strings; product lines take JSON
// numbers only. A null value counts as absent.
func ParseCreateOrderRequest(raw map[string]interface{}) (service.CreateOrderInput, middleware.FieldErrors) {
	errs := middleware.FieldErrors{}
	req := CreateOrderRequest{
		CustomerID:      intField(errs, raw, "customerId", middleware.Coerce),
		PaymentMethodID: intField(errs, raw, "paymentMethodId", middleware.Coerce),
		Total:           moneyField(errs, raw, "total", middleware.Coerce),
		Status:          stringField(errs, raw, "status"),
	}

	if createdAt := stringField(errs, raw, "created_at"); createdAt != nil {
		t, err := middleware.ToTimestamp(*createdAt)
		if err != nil {
			errs.Add("created_at", err.Error())
		} else {
			req.CreatedAt = &t
		}
	}

	if v, ok := raw["products"]; ok && v != nil {
		lines, isArray := v.([]interface{})
		if !isArray {
			errs.Add("products", middleware.ErrExpectedArray.Error())
		}
		for i, entry := range lines {
			path := "products." + strconv.Itoa(i)
			object, isObject := entry.(map[string]interface{})
			if !isObject {
				errs.Add(path, middleware.ErrBodyNotObject.Error())
				req.Products = append(req.Products, OrderLineRequest{})
				continue
			}
			req.Products = append(req.Products, OrderLineRequest{
				ID:       intField(errs, object, "id", middleware.Strict, path),
				Quantity: intField(errs, object, "quantity", middleware.Strict, path),
				Price:    moneyField(errs, object, "price", middleware.Strict, path),
			})
		}
	}

	errs.Merge(middleware.ValidateStruct(req))
	if len(errs) > 0 {
		return service.CreateOrderInput{}, errs
	}

	in := service.CreateOrderInput{
		CustomerID:      *req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		Total:           *req.Total,
		CreatedAt:       req.CreatedAt,
		Products:        make([]service.OrderLineInput, 0, len(req.Products)),
	}
	if req.Status != nil {
		in.Status = domain.OrderStatus(*req.Status)
	}
	for _, line := range req.Products {
		in.Products = append(in.Products, service.OrderLineInput{
			ProductID: *line.ID,
			Quantity:  int(*line.Quantity),
			Price:     *line.Price,
		})
	}

	return in, nil
}

// ParseCreateProductRequest coerces and validates a decoded product body
func ParseCreateProductRequest(raw map[string]interface{}) (service.CreateProductInput, middleware.FieldErrors) {
	errs := middleware.FieldErrors{}
	req := CreateProductRequest{
		Name:        stringField(errs, raw, "name"),
		Description: stringField(errs, raw, "description"),
		Price:       moneyField(errs, raw, "price", middleware.Coerce),
		InStock:     intField(errs, raw, "in_stock", middleware.Coerce),
		Category:    stringField(errs, raw, "category"),
	}

	errs.Merge(middleware.ValidateStruct(req))
	if len(errs) > 0 {
		return service.CreateProductInput{}, errs
	}

	return service.CreateProductInput{
		Name:        *req.Name,
		Description: req.Description,
		Price:       *req.Price,
		InStock:     int(*req.InStock),
		Category:    req.Category,
	}, nil
}

func fieldKey(key string, prefix []string) string {
	if len(prefix) == 0 {
		return key
	}
	return prefix[0] + "." + key
}

func intField(errs middleware.FieldErrors, raw map[string]interface{}, key string, mode middleware.NumberMode, prefix ...string) *int64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	n, err := middleware.ToInt64(v, mode)
	if err != nil {
		errs.Add(fieldKey(key, prefix), err.Error())
		return nil
	}
	return &n
}

func moneyField(errs middleware.FieldErrors, raw map[string]interface{}, key string, mode middleware.NumberMode, prefix ...string) *decimal.Decimal {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	d, err := middleware.ToMoney(v, mode)
	if err != nil {
		errs.Add(fieldKey(key, prefix), err.Error())
		return nil
	}
	return &d
}

func stringField(errs middleware.FieldErrors, raw map[string]interface{}, key string) *string {
	v, present := raw[key]
	s, err := middleware.ToOptionalString(v, present)
	if err != nil {
		errs.Add(key, err.Error())
		return nil
	}
	return s
}
