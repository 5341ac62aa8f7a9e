package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

type productRequest struct {
	Name         string          `json:"name" validate:"required"`
	SKU          string          `json:"sku" validate:"required"`
	BasePrice    decimal.Decimal `json:"base_price"`
	OfferPercent decimal.Decimal `json:"offer_percent"`
}

type sizePriceRequest struct {
	SizeName string          `json:"size_name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
}

type sizePriceResponse struct {
	ID       int64           `json:"id"`
	SizeName string          `json:"size_name"`
	Price    decimal.Decimal `json:"price"`
}

type productResponse struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	SKU          string              `json:"sku"`
	BasePrice    decimal.Decimal     `json:"base_price"`
	OfferPercent decimal.Decimal     `json:"offer_percent"`
	Sizes        []sizePriceResponse `json:"sizes,omitempty"`
}

func toProductResponse(p product.Product, sizes []product.SizePrice) productResponse {
	resp := productResponse{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		BasePrice:    p.BasePrice,
		OfferPercent: p.OfferPercent,
	}
	for _, sp := range sizes {
		resp.Sizes = append(resp.Sizes, sizePriceResponse{
			ID:       sp.ID,
			SizeName: sp.SizeName,
			Price:    sp.Price,
		})
	}
	return resp
}

// validateProductRequest checks field presence plus price sanity: prices must
// not be negative. Offer percent above 100 is accepted and clamped at pricing
// time.
func (h *Handler) validateProductRequest(req productRequest) string {
	if err := h.validate.Struct(req); err != nil {
		return "name and sku are required"
	}
	if req.BasePrice.IsNegative() {
		return "base_price must not be negative"
	}
	return ""
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		sizes, err := h.products.ListSizePrices(ctx, p.ID)
		if err != nil {
			respondDomainError(ctx, w, err)
			return
		}
		resp = append(resp, toProductResponse(p, sizes))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if msg := h.validateProductRequest(req); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, msg)
		return
	}

	p := product.Product{
		Name:         req.Name,
		SKU:          req.SKU,
		BasePrice:    req.BasePrice,
		OfferPercent: req.OfferPercent,
	}
	if err := h.products.Create(ctx, &p); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toProductResponse(p, nil))
}

// GetProduct handles GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	sizes, err := h.products.ListSizePrices(ctx, id)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toProductResponse(*p, sizes))
}

// UpdateProduct handles PUT /products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if msg := h.validateProductRequest(req); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, msg)
		return
	}

	p := product.Product{
		ID:           id,
		Name:         req.Name,
		SKU:          req.SKU,
		BasePrice:    req.BasePrice,
		OfferPercent: req.OfferPercent,
	}
	if err := h.products.Update(ctx, &p); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toProductResponse(p, nil))
}

// DeleteProduct handles DELETE /products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := h.products.Delete(ctx, id); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSizePrice handles POST /products/{id}/sizes.
func (h *Handler) CreateSizePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	// The product must exist before attaching a size override.
	if _, err := h.products.GetByID(ctx, id); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	var req sizePriceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "size_name is required")
		return
	}
	if req.Price.IsNegative() {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "price must not be negative")
		return
	}

	sp := product.SizePrice{
		ProductID: id,
		SizeName:  req.SizeName,
		Price:     req.Price,
	}
	if err := h.products.CreateSizePrice(ctx, &sp); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, sizePriceResponse{
		ID:       sp.ID,
		SizeName: sp.SizeName,
		Price:    sp.Price,
	})
}
