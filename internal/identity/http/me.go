package http

import (
	"net/http"

	"github.com/feiralabs/feira/pkg/httpx"
)

// MeHandler serves GET /v1/auth/me. The response is built entirely from the
// verified access token claims; no database round trip happens here.
type MeHandler struct{}

type meResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:    claims.Subject,
		Email: claims.Email,
		Roles: roles,
	})
}
