package http

import (
	"errors"
	"net/http"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register. A successful registration
// signs the new account straight in, so the response carries tokens as well
// as the created identity.
type RegisterHandler struct {
	UserService *service.UserService
	AuthService *service.AuthService
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email, name and password are required")
		return
	}

	if _, err := h.UserService.Register(ctx, req.Email, req.Name, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, domain.ErrInvalidEmail):
			httpx.WriteError(w, http.StatusBadRequest, "invalid email address")
		default:
			log.Error("registration failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		// The account exists at this point; surface the error rather than
		// pretending registration failed.
		log.Error("post-registration login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := loginResponse{
		tokenResponse: newTokenResponse(result.AccessToken, result.RefreshToken, result.ExpiresIn),
		User:          result.User,
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, response)
}
