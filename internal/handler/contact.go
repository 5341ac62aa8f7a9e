package handler

import (
	"net/http"

	"github.com/vkarpenko/mini-crm/internal/domain/contact"
)

type contactRequest struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	OrganizationID int64  `json:"organization" validate:"required,gt=0"`
}

type contactResponse struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	OrganizationID   int64  `json:"organization"`
	OrganizationName string `json:"organization_name,omitempty"`
}

func toContactResponse(c contact.Contact) contactResponse {
	return contactResponse{
		ID:               c.ID,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		Phone:            c.Phone,
		OrganizationID:   c.OrganizationID,
		OrganizationName: c.OrganizationName,
	}
}

// ListContacts handles GET /contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contacts, err := h.contacts.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, toContactResponse(c))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// CreateContact handles POST /contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation,
			"first_name, last_name, a valid email and organization are required")
		return
	}

	c := contact.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		OrganizationID: req.OrganizationID,
	}
	if err := h.contacts.Create(ctx, &c); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toContactResponse(c))
}

// GetContact handles GET /contacts/{id}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	c, err := h.contacts.GetByID(ctx, id)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toContactResponse(*c))
}

// UpdateContact handles PUT /contacts/{id}.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation,
			"first_name, last_name, a valid email and organization are required")
		return
	}

	c := contact.Contact{
		ID:             id,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		OrganizationID: req.OrganizationID,
	}
	if err := h.contacts.Update(ctx, &c); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toContactResponse(c))
}

// DeleteContact handles DELETE /contacts/{id}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := h.contacts.Delete(ctx, id); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
