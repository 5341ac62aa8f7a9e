package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/vkarpenko/mini-crm/internal/domain/organization"
)

type organizationRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	GSTNo   string `json:"gst_no"`
}

type organizationResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTNo   string `json:"gst_no"`
}

func toOrganizationResponse(o organization.Organization) organizationResponse {
	return organizationResponse{
		ID:      o.ID,
		Name:    o.Name,
		Address: o.Address,
		GSTNo:   o.GSTNo,
	}
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// ListOrganizations handles GET /organizations.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.organizations.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]organizationResponse, 0, len(orgs))
	for _, o := range orgs {
		resp = append(resp, toOrganizationResponse(o))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// CreateOrganization handles POST /organizations.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req organizationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "name is required")
		return
	}

	o := organization.Organization{
		Name:    req.Name,
		Address: req.Address,
		GSTNo:   req.GSTNo,
	}
	if err := h.organizations.Create(ctx, &o); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toOrganizationResponse(o))
}

// GetOrganization handles GET /organizations/{id}.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	o, err := h.organizations.GetByID(ctx, id)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toOrganizationResponse(*o))
}

// UpdateOrganization handles PUT /organizations/{id}.
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	var req organizationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "name is required")
		return
	}

	o := organization.Organization{
		ID:      id,
		Name:    req.Name,
		Address: req.Address,
		GSTNo:   req.GSTNo,
	}
	if err := h.organizations.Update(ctx, &o); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toOrganizationResponse(o))
}

// DeleteOrganization handles DELETE /organizations/{id}.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := h.organizations.Delete(ctx, id); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
