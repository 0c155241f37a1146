package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// RolesHandler groups the admin role management endpoints.
type RolesHandler struct {
	RolesService *service.RolesService
}

type roleInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newRoleInfo(role domain.Role) roleInfo {
	return roleInfo{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

type listRolesResponse struct {
	Roles []roleInfo `json:"roles"`
}

// HandleList serves GET /v1/admin/roles.
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	roles, err := h.RolesService.ListRoles(ctx)
	if err != nil {
		log.Error("failed to list roles", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := listRolesResponse{Roles: make([]roleInfo, len(roles))}
	for i, role := range roles {
		response.Roles[i] = newRoleInfo(role)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate serves POST /v1/admin/roles.
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	role, err := h.RolesService.CreateRole(ctx, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNameTaken):
			httpx.WriteError(w, http.StatusConflict, "role name is already in use")
		default:
			log.Error("failed to create role", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newRoleInfo(role))
}

type updateRoleRequest struct {
	Description string `json:"description"`
}

// HandleUpdate serves PATCH /v1/admin/roles/{id}. Only the description is
// mutable; role names are referenced by authorization rules.
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	roleID := r.PathValue("id")

	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.RolesService.UpdateRoleDescription(ctx, roleID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "role not found")
		default:
			log.Error("failed to update role", "error", err, "role_id", roleID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newRoleInfo(role))
}

// HandleDelete serves DELETE /v1/admin/roles/{id}.
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	roleID := r.PathValue("id")

	if err := h.RolesService.DeleteRole(ctx, roleID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "role not found")
		case errors.Is(err, service.ErrProtectedRole):
			httpx.WriteError(w, http.StatusBadRequest, "system roles cannot be deleted")
		default:
			log.Error("failed to delete role", "error", err, "role_id", roleID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
