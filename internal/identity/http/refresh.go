package http

import (
	"errors"
	"net/http"

	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. Each submitted refresh token
// is single use; the response carries a fresh pair.
type RefreshHandler struct {
	AuthService *service.AuthService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.AuthService.RotateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrExpiredToken):
			httpx.WriteError(w, http.StatusUnauthorized, "refresh token expired")
		default:
			log.Error("token refresh failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair.AccessToken, pair.RefreshToken, pair.ExpiresIn))
}
