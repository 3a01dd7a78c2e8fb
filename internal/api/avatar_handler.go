package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardhub-api/internal/api/middleware"
	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
)

const (
	// AvatarFormField is the multipart field carrying the image.
	AvatarFormField = "avatar"

	// multipart framing allowance on top of the image itself
	multipartOverhead = 64 << 10
)

// AvatarHandler serves /api/avatars. Writes run behind the ownership
// guard; reads are public.
type AvatarHandler struct {
	avatars AvatarService
	logger  *slog.Logger
}

// NewAvatarHandler creates an AvatarHandler.
func NewAvatarHandler(avatars AvatarService, logger *slog.Logger) *AvatarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarHandler{
		avatars: avatars,
		logger:  logger.With(slog.String("component", "avatar_handler")),
	}
}

// owner returns the (type, id) pair the request addresses. Behind the
// ownership guard it comes from the verified claims; otherwise from the path.
func owner(w http.ResponseWriter, r *http.Request) (domain.Role, int64, bool) {
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		return claims.Role, claims.PrincipalID, true
	}

	ownerType, err := domain.ParseRole(chi.URLParam(r, "type"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid resource type", err)
		return "", 0, false
	}
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || ownerID <= 0 {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid resource id", err)
		return "", 0, false
	}
	return ownerType, ownerID, true
}

// Upload handles POST /api/avatars/{type}/{id}.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxAvatarSize+multipartOverhead)
	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, domain.ErrFileTooLarge, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer func() { _ = file.Close() }()

	avatar, err := h.avatars.Upload(r.Context(), ownerType, ownerID, header.Filename, header.Size, file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload avatar")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, avatarResponse(avatar))
}

// Get handles GET /api/avatars/{type}/{id}.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	avatar, err := h.avatars.Get(r.Context(), ownerType, ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get avatar")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, avatarResponse(avatar))
}

// View handles GET /api/avatars/view/{type}/{id} by streaming the image.
func (h *AvatarHandler) View(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	avatar, body, err := h.avatars.Open(r.Context(), ownerType, ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load avatar")
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", avatar.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(avatar.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("avatar stream interrupted",
			slog.String("error", err.Error()))
	}
}

// Delete handles DELETE /api/avatars/{type}/{id}.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.avatars.Delete(r.Context(), ownerType, ownerID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete avatar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
