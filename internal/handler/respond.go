package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vkarpenko/mini-crm/internal/domain/contact"
	"github.com/vkarpenko/mini-crm/internal/domain/order"
	"github.com/vkarpenko/mini-crm/internal/domain/organization"
	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

// Machine-readable error kinds returned in the error envelope.
const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindInternal     = "internal"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(ctx).Error("encode response", zap.Error(err))
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, kind, msg string) {
	respondJSON(ctx, w, status, errorEnvelope{Error: errorBody{Code: kind, Message: msg}})
}

// respondDomainError maps domain errors to structured HTTP error responses.
// Unrecognized errors are logged and reported as internal.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		pnfErr *order.ProductNotFoundError
		iqErr  *order.InvalidQuantityError
	)

	switch {
	case errors.Is(err, order.ErrContactRequired),
		errors.Is(err, order.ErrEmptyItems):
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
	case errors.As(err, &iqErr):
		respondError(ctx, w, http.StatusBadRequest, kindValidation, iqErr.Error())
	case errors.As(err, &pnfErr):
		respondError(ctx, w, http.StatusNotFound, kindNotFound, pnfErr.Error())
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, organization.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, contact.ErrDuplicateEmail),
		errors.Is(err, product.ErrDuplicateSKU),
		errors.Is(err, product.ErrDuplicateSize):
		respondError(ctx, w, http.StatusConflict, kindConflict, err.Error())
	case errors.Is(err, order.ErrOrderNumberConflict):
		respondError(ctx, w, http.StatusConflict, kindConflict,
			"order number conflict, retry the request")
	default:
		zctx.From(ctx).Error("request failed", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, kindInternal, "internal error")
	}
}

// decodeBody parses a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
