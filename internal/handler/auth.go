package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/vkarpenko/mini-crm/internal/auth"
	"github.com/vkarpenko/mini-crm/internal/domain/user"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
}

// Login authenticates a user by username and password and issues an access
// token. Credential failures are reported uniformly to avoid leaking which
// part was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "username and password are required")
		return
	}

	u, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(ctx, w, err)
		return
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{
		AccessToken: token,
		User: userResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		},
	})
}
