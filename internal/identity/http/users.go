package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// UsersHandler groups the admin user management endpoints.
type UsersHandler struct {
	UserService  *service.UserService
	RolesService *service.RolesService
}

type userInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserInfo(user domain.User) userInfo {
	return userInfo{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type listUsersResponse struct {
	Users []userInfo `json:"users"`
}

// HandleList serves GET /v1/admin/users with limit/offset paging.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	users, err := h.UserService.ListUsers(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list users", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := listUsersResponse{Users: make([]userInfo, len(users))}
	for i, user := range users {
		response.Users[i] = newUserInfo(user)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// HandleUpdate serves PATCH /v1/admin/users/{id}. Absent fields are left
// untouched. A password change revokes every refresh session the user has.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := r.PathValue("id")

	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password != nil && *req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "password must not be empty")
		return
	}

	user, err := h.UserService.UpdateUser(ctx, userID, service.UserUpdate{
		Name:     req.Name,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		default:
			log.Error("failed to update user", "error", err, "target_user_id", userID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserInfo(user))
}

// HandleDelete serves DELETE /v1/admin/users/{id}. Accounts are soft
// deleted and all of their refresh sessions revoked.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := r.PathValue("id")

	if err := h.UserService.SoftDeleteUser(ctx, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		default:
			log.Error("failed to delete user", "error", err, "target_user_id", userID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type assignRoleRequest struct {
	RoleID string `json:"roleId"`
}

// HandleAssignRole serves POST /v1/admin/users/{id}/roles. Assignment is
// idempotent; granting a role the user already holds succeeds quietly.
func (h *UsersHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := r.PathValue("id")

	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoleID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "roleId is required")
		return
	}

	if err := h.RolesService.AssignRole(ctx, userID, req.RoleID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user or role not found")
		default:
			log.Error("failed to assign role", "error", err, "target_user_id", userID, "role_id", req.RoleID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
