package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/cardhub-api/internal/api"
	apimw "github.com/phrazzld/cardhub-api/internal/api/middleware"
	"github.com/phrazzld/cardhub-api/internal/domain"
)

// setupRouter builds the HTTP surface. Public account endpoints are rate
// limited when a limiter is configured; avatar routes exist only when object
// storage is configured.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.Trace(app.logger))
	r.Use(app.metrics.Middleware)
	r.Use(middleware.Recoverer)

	authGuard := apimw.NewAuthGuard(app.jwt, app.users, app.metrics, app.logger)
	ownership := apimw.NewOwnershipGuard(app.jwt, app.metrics)

	accounts := api.NewAccountHandler(app.accounts, app.logger)
	codes := api.NewVerificationHandler(app.accounts)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			if app.limiter != nil {
				r.Use(apimw.RateLimit(app.limiter, app.metrics))
			}

			r.Post("/users/register", accounts.Register)
			r.Post("/users/login", accounts.Login(domain.RoleUser))
			r.Post("/users/forgot-password", accounts.ForgotPassword)
			r.Post("/users/reset-password", accounts.ResetPassword)
			r.Post("/merchants/login", accounts.Login(domain.RoleMerchant))
			r.Post("/admin/login", accounts.Login(domain.RoleAdmin))

			r.Post("/verification/send/register", codes.SendRegisterCode)
			r.Post("/verification/verify/register", codes.VerifyRegisterCode)
		})

		r.With(authGuard.RequireRoles(domain.RoleAdmin)).Post("/admin/merchants", accounts.CreateMerchant)

		r.Group(func(r chi.Router) {
			r.Use(authGuard.RequireRoles(domain.RoleUser, domain.RoleMerchant))
			r.Post("/verification/send/withdrawal", codes.SendWithdrawalCode)
			r.Post("/verification/verify/withdrawal", codes.VerifyWithdrawalCode)
		})

		r.With(authGuard.RequireRoles()).Get("/me", accounts.Me)

		if app.avatars != nil {
			avatars := api.NewAvatarHandler(app.avatars, app.logger)
			r.Get("/avatars/view/{type}/{id}", avatars.View)
			r.Get("/avatars/{type}/{id}", avatars.Get)
			r.With(ownership.Protect).Post("/avatars/{type}/{id}", avatars.Upload)
			r.With(ownership.Protect).Delete("/avatars/{type}/{id}", avatars.Delete)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
