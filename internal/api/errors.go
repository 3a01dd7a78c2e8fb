package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service"
	"github.com/phrazzld/cardhub-api/internal/service/auth"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// domainValidationErrors are input errors raised by domain constructors.
var domainValidationErrors = []error{
	domain.ErrValidation,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrEmptyUsername,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrInvalidRole,
	domain.ErrInvalidStatus,
	domain.ErrInvalidPurpose,
	domain.ErrInvalidCodeFormat,
	domain.ErrUnsupportedFileType,
	domain.ErrFileTooLarge,
	domain.ErrEmptyFile,
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.Is(err, store.ErrInvalidEntity) || errors.Is(err, service.ErrInvalidAvatar)
}

// MapErrorToStatusCode maps service and store errors to HTTP status codes.
// Unknown errors are 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden

	case errors.Is(err, verification.ErrPrincipalNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, verification.ErrCodeAlreadyIssued):
		return http.StatusTooManyRequests

	case errors.Is(err, verification.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest

	case errors.Is(err, verification.ErrDelivery):
		return http.StatusBadGateway

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case isValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// contains internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, service.ErrAccountInactive):
		return "Account is not active"
	case errors.Is(err, service.ErrEmailNotVerified):
		return "Please verify your email before logging in"

	case errors.Is(err, verification.ErrPrincipalNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return "Account not found"
	case errors.Is(err, store.ErrAvatarNotFound):
		return "Avatar not found"
	case errors.Is(err, verification.ErrCodeAlreadyIssued):
		return "A verification code was already sent, please wait before requesting another"
	case errors.Is(err, verification.ErrInvalidOrExpiredCode):
		return "Invalid or expired verification code"
	case errors.Is(err, verification.ErrDelivery):
		return "Failed to send verification code"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	case errors.Is(err, domain.ErrInvalidPurpose):
		return "Invalid verification purpose"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return "Only image files (jpg, jpeg, png, gif) are allowed"
	case errors.Is(err, domain.ErrFileTooLarge):
		return "File exceeds the 5 MB limit"
	case errors.Is(err, domain.ErrEmptyFile):
		return "File is empty"
	case isValidationError(err):
		return SanitizeValidationError(err)

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator and domain validation failures
// into a short message naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
	}
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			msg := target.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and
// logs err with redaction. fallback, when set, replaces the generic message
// of 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
