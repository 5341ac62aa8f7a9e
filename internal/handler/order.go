package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkarpenko/mini-crm/internal/domain/order"
)

type orderItemRequest struct {
	ProductID     int64  `json:"product_id"`
	SizeName      string `json:"size_name"`
	Qty           int    `json:"qty"`
	Extras        any    `json:"extras"`
	Customization string `json:"customization"`
}

type createOrderRequest struct {
	Contact int64              `json:"contact"`
	Items   []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	SizeName      string          `json:"size_name"`
	Qty           int             `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Extras        any             `json:"extras,omitempty"`
	Customization string          `json:"customization,omitempty"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	OrderNo   string              `json:"order_no"`
	ContactID int64               `json:"contact"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []orderItemResponse `json:"items,omitempty"`
}

// CreateOrder handles POST /orders. The request carries a contact ID and raw
// cart lines; the order service normalizes, prices and persists them
// atomically. On success the response holds the order number, the priced
// lines and the exact order total.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	lines := make([]order.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = order.CartLine{
			ProductID:     item.ProductID,
			SizeName:      item.SizeName,
			Qty:           item.Qty,
			Extras:        item.Extras,
			Customization: item.Customization,
		}
	}

	result, err := h.orderService.CreateOrder(ctx, req.Contact, lines)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, result)
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderResponse{
			ID:        o.ID,
			OrderNo:   o.OrderNo,
			ContactID: o.ContactID,
			CreatedAt: o.CreatedAt,
		})
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	o, err := h.orders.GetByID(ctx, id)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := orderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		ContactID: o.ContactID,
		CreatedAt: o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			SizeName:      item.SizeName,
			Qty:           item.Qty,
			UnitPrice:     item.UnitPrice,
			LineTotal:     item.LineTotal,
			Extras:        item.Extras,
			Customization: item.Customization,
		})
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}
