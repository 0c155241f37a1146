package http

import (
	"net/http"

	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. Revocation is idempotent and
// the response never reveals whether the token was known, so repeated or
// garbage submissions all look the same to a caller.
type LogoutHandler struct {
	AuthService *service.AuthService
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutResponse struct {
	Message string `json:"message"`
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, logoutResponse{Message: "logged out"})
}
