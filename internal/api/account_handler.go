package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/cardhub-api/internal/api/middleware"
	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/service"
)

// AccountHandler serves registration, login, password reset and the
// admin's merchant management.
type AccountHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "account_handler")),
	}
}

// decodeAndValidate reads a JSON body into v and validates it, writing a 400
// response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

func (req AccountRequest) toNewAccount() service.NewAccount {
	return service.NewAccount{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	}
}

// Register handles POST /api/users/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req.toNewAccount())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, principalResponse(user))
}

// CreateMerchant handles POST /api/admin/merchants.
func (h *AccountHandler) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	merchant, err := h.accounts.CreateMerchant(r.Context(), req.toNewAccount())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create merchant")
		return
	}

	if admin, ok := middleware.GetPrincipal(r.Context()); ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Info("merchant created",
			slog.Int64("admin_id", admin.ID),
			slog.Int64("merchant_id", merchant.ID))
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, principalResponse(merchant))
}

// Login returns the login handler for role. Each role has its own endpoint
// so a merchant cannot obtain a user credential and vice versa.
func (h *AccountHandler) Login(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		session, err := h.accounts.Login(r.Context(), role, req.Email, req.Password)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to log in")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
			Principal: principalResponse(session.Principal),
		})
	}
}

// ForgotPassword handles POST /api/users/forgot-password.
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sendCode(w, r, h.accounts, req.Email, domain.PurposePasswordReset)
}

// ResetPassword handles POST /api/users/reset-password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to reset password")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}

// Me handles GET /api/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, principalResponse(principal))
}
