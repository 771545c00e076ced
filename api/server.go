/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the storefront frontend

ADMIN GATING:
  requireStaff checks the session user's role before admin routes run. Role
  mutations are additionally policy-checked inside the engine; the
  middleware only keeps students off the admin surface.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/NOUR0003/star-academy/engine"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Session routes
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/logout", h.Logout)
		r.Get("/session", h.GetSession)

		// Lesson routes
		r.Route("/lessons", func(r chi.Router) {
			r.Get("/", h.ListLessons)
			r.With(h.requireStaff).Post("/", h.CreateLesson)
			r.With(h.requireStaff).Delete("/{id}", h.DeleteLesson)
			r.Post("/{id}/purchase", h.PurchaseLesson)
			r.Get("/{id}/access", h.GetAccess)
			r.Post("/{id}/views", h.RecordView)
			r.Get("/{id}/companion", h.GetCompanion)
		})

		// Deposit routes
		r.Route("/deposits", func(r chi.Router) {
			r.Post("/", h.CreateDeposit)
			r.With(h.requireStaff).Get("/", h.ListDeposits)
			r.With(h.requireStaff).Post("/{id}/approve", h.ApproveDeposit)
			r.With(h.requireStaff).Post("/{id}/reject", h.RejectDeposit)
		})

		// User routes (admin surface)
		r.Route("/users", func(r chi.Router) {
			r.Use(h.requireStaff)
			r.Get("/", h.ListUsers)
			r.Post("/{id}/role", h.ChangeRole)
			r.Post("/{id}/balance", h.AdjustBalance)
		})
	})

	return r
}

// requireStaff rejects requests unless the session user is ADMIN or OWNER.
func (h *Handler) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.Engine.CurrentUser()
		if !ok {
			writeError(w, engine.ErrNoSession)
			return
		}
		if !user.Role.IsStaff() {
			writeError(w, &engine.PermissionDeniedError{Reason: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
