package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"logistock/internal/domain"
	"logistock/internal/middleware"
	"logistock/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products and their stock
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

// Guards wraps groups of product routes. Nil guards leave the routes open.
type Guards struct {
	Read   func(http.Handler) http.Handler
	Write  func(http.Handler) http.Handler
	Delete func(http.Handler) http.Handler
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/v1/product", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if guards.Read != nil {
				r.Use(guards.Read)
			}
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
			r.Get("/barcode/{barcode}", h.GetProductByBarcode)
		})

		r.Group(func(r chi.Router) {
			if guards.Write != nil {
				r.Use(guards.Write)
			}
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Patch("/{id}/increase", h.IncreaseStock)
			r.Patch("/{id}/decrease", h.DecreaseStock)
		})

		r.Group(func(r chi.Router) {
			if guards.Delete != nil {
				r.Use(guards.Delete)
			}
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// CreateProduct registers a new product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := h.productService.Create(r.Context(), req.toInput())
	if err != nil {
		h.logger.Debug("Product creation rejected", zap.String("barcode", req.Barcode), zap.Error(err))
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", detail.Product.ID.String()),
		zap.String("barcode", detail.Product.Barcode),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(detail))
}

// ListProducts returns one page of products matching the query filter
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	details, err := h.productService.ListAll(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	response := make([]ProductResponse, 0, len(details))
	for _, detail := range details {
		response = append(response, toProductResponse(detail))
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProduct returns a single product by id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	detail, err := h.productService.FindByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(detail))
}

// GetProductByBarcode returns a single product by its barcode
func (h *ProductHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	detail, err := h.productService.FindByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(detail))
}

// UpdateProduct replaces the editable fields of a product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := h.productService.UpdateByID(r.Context(), id, req.toInput())
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(detail))
}

// DeleteProduct removes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// IncreaseStock adds to the stock quantity of a product
func (h *ProductHandler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.productService.IncreaseStock)
}

// DecreaseStock removes from the stock quantity of a product
func (h *ProductHandler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.productService.DecreaseStock)
}

type stockAdjustment func(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error)

func (h *ProductHandler) adjustStock(w http.ResponseWriter, r *http.Request, adjust stockAdjustment) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req QuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := adjust(r.Context(), id, *req.Quantity)
	if err != nil {
		h.logger.Debug("Stock adjustment rejected",
			zap.String("product_id", id.String()),
			zap.Int("quantity", *req.Quantity),
			zap.Error(err),
		)
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.String("path", r.URL.Path),
		zap.Int("quantity", *req.Quantity),
		zap.Int("stock_quantity", detail.Product.StockQuantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(detail))
}

// decode reads and validates the body, writing the 400 response itself when it fails
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

// parseProductFilter reads pageNumber, pageSize, search and categories.
// Categories may be repeated or comma separated.
func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	query := r.URL.Query()

	var q ListProductsQuery
	var err error
	if q.PageNumber, err = optionalInt(query.Get("pageNumber")); err != nil {
		return domain.ProductFilter{}, err
	}
	if q.PageSize, err = optionalInt(query.Get("pageSize")); err != nil {
		return domain.ProductFilter{}, err
	}
	q.Search = strings.TrimSpace(query.Get("search"))
	for _, value := range query["categories"] {
		for _, category := range strings.Split(value, ",") {
			if category = strings.TrimSpace(category); category != "" {
				q.Categories = append(q.Categories, strings.ToUpper(category))
			}
		}
	}

	if err := middleware.ValidateRequest(&q); err != nil {
		return domain.ProductFilter{}, err
	}

	filter := domain.ProductFilter{
		PageNumber: *q.PageNumber,
		PageSize:   *q.PageSize,
		Search:     q.Search,
	}
	for _, category := range q.Categories {
		filter.Categories = append(filter.Categories, domain.Category(category))
	}
	return filter, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
