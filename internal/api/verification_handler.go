package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/cardhub-api/internal/api/middleware"
	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
)

// VerificationHandler serves the code endpoints under /api/verification.
// Registration codes are addressed by email; withdrawal codes go to the
// authenticated principal's own address.
type VerificationHandler struct {
	accounts AccountService
}

// NewVerificationHandler creates a VerificationHandler.
func NewVerificationHandler(accounts AccountService) *VerificationHandler {
	return &VerificationHandler{accounts: accounts}
}

func sendCode(w http.ResponseWriter, r *http.Request, accounts AccountService, email string, purpose domain.Purpose) {
	expiresAt, err := accounts.RequestCode(r.Context(), email, purpose)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send verification code")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CodeSentResponse{
		Message:   "Verification code sent",
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// SendRegisterCode handles POST /api/verification/send/register.
func (h *VerificationHandler) SendRegisterCode(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sendCode(w, r, h.accounts, req.Email, domain.PurposeRegistration)
}

// VerifyRegisterCode handles POST /api/verification/verify/register.
func (h *VerificationHandler) VerifyRegisterCode(w http.ResponseWriter, r *http.Request) {
	var req EmailCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.accounts.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		HandleAPIError(w, r, err, "Failed to verify code")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Email verified"})
}

// SendWithdrawalCode handles POST /api/verification/send/withdrawal.
func (h *VerificationHandler) SendWithdrawalCode(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	sendCode(w, r, h.accounts, principal.Email, domain.PurposeWithdrawal)
}

// VerifyWithdrawalCode handles POST /api/verification/verify/withdrawal.
func (h *VerificationHandler) VerifyWithdrawalCode(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req CodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.accounts.RedeemCode(r.Context(), principal.Email, req.Code, domain.PurposeWithdrawal); err != nil {
		HandleAPIError(w, r, err, "Failed to verify code")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Withdrawal approved"})
}
