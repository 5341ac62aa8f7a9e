package handler

import (
	"net/http"
)

type statsResponse struct {
	TotalOrganizations int64 `json:"total_organizations"`
	TotalContacts      int64 `json:"total_contacts"`
	TotalProducts      int64 `json:"total_products"`
	TotalOrders        int64 `json:"total_orders"`
}

// AdminStats handles GET /admin/stats. Restricted to admins by middleware.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		resp statsResponse
		err  error
	)
	if resp.TotalOrganizations, err = h.organizations.Count(ctx); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	if resp.TotalContacts, err = h.contacts.Count(ctx); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	if resp.TotalProducts, err = h.products.Count(ctx); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	if resp.TotalOrders, err = h.orders.Count(ctx); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}
