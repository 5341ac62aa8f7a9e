// Package handler exposes the HTTP API: auth, CRUD for organizations,
// contacts and products, order creation, and admin stats.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vkarpenko/mini-crm/internal/auth"
	"github.com/vkarpenko/mini-crm/internal/domain/contact"
	"github.com/vkarpenko/mini-crm/internal/domain/order"
	"github.com/vkarpenko/mini-crm/internal/domain/organization"
	"github.com/vkarpenko/mini-crm/internal/domain/product"
	"github.com/vkarpenko/mini-crm/internal/domain/user"
)

// Handler wires HTTP routes to domain services and repositories.
type Handler struct {
	organizations organization.Repository
	contacts      contact.Repository
	products      product.Repository
	orders        order.Repository
	users         user.Repository
	orderService  *order.Service
	tokens        *auth.Tokens
	validate      *validator.Validate
}

// New constructs a Handler with the required dependencies.
func New(
	organizations organization.Repository,
	contacts contact.Repository,
	products product.Repository,
	orders order.Repository,
	users user.Repository,
	orderService *order.Service,
	tokens *auth.Tokens,
) *Handler {
	return &Handler{
		organizations: organizations,
		contacts:      contacts,
		products:      products,
		orders:        orders,
		users:         users,
		orderService:  orderService,
		tokens:        tokens,
		validate:      validator.New(),
	}
}

// Routes returns the API router. Everything except login requires a valid
// bearer token; admin stats additionally require the admin role.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.With(h.requireAdmin).Get("/admin/stats", h.AdminStats)

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.ListOrganizations)
			r.Post("/", h.CreateOrganization)
			r.Get("/{id}", h.GetOrganization)
			r.Put("/{id}", h.UpdateOrganization)
			r.Delete("/{id}", h.DeleteOrganization)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Get("/{id}", h.GetContact)
			r.Put("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/{id}/sizes", h.CreateSizePrice)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Get("/{id}", h.GetOrder)
		})
	})

	return r
}
