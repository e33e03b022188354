package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/interfaces/http/dto"
	"github.com/ipede/user-manager-service/internal/interfaces/http/errors"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type HandlerUser struct {
	userService domain.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService domain.UserService, logger *zap.Logger) *HandlerUser {
	return &HandlerUser{
		userService: userService,
		logger:      logger,
	}
}

func (h *HandlerUser) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	req, err := dto.ParseUserQuery(r.URL.Query())
	if err != nil {
		errors.RespondWithValidation(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		errors.RespondWithValidation(w, err)
		return
	}

	users, err := h.userService.ListUsers(r.Context(), req.Query())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	response := make([]*dto.UserResponse, len(users))
	for i, user := range users {
		response[i] = dto.NewUserResponse(user)
	}
	h.writeJSON(w, response)
}

func (h *HandlerUser) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	h.writeJSON(w, dto.NewUserResponse(user))
}

func (h *HandlerUser) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		errors.RespondWithValidation(w, err)
		return
	}

	created, err := h.userService.CreateUser(r.Context(), req.Input())
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	h.writeJSON(w, dto.NewUserEcho(created))
}

func (h *HandlerUser) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	var req dto.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		errors.RespondWithValidation(w, err)
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), id, req.Input())
	if err != nil {
		h.logger.Error("failed to update user", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	h.writeJSON(w, dto.NewUserResponse(updated))
}

func (h *HandlerUser) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUserID(w, r)
	if !ok {
		return
	}

	deleted, err := h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete user", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	h.writeJSON(w, dto.NewUserResponse(deleted))
}

func (h *HandlerUser) AddRolesHandler(w http.ResponseWriter, r *http.Request) {
	userID, roleIDs, ok := h.parseRoleForm(w, r)
	if !ok {
		return
	}

	if err := h.userService.AddRoles(r.Context(), userID, roleIDs); err != nil {
		h.logger.Error("failed to add roles", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *HandlerUser) RemoveRolesHandler(w http.ResponseWriter, r *http.Request) {
	userID, roleIDs, ok := h.parseRoleForm(w, r)
	if !ok {
		return
	}

	if err := h.userService.RemoveRoles(r.Context(), userID, roleIDs); err != nil {
		h.logger.Error("failed to remove roles", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *HandlerUser) parseUserID(w http.ResponseWriter, r *http.Request) (domain.ULID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := ulid.Parse(raw)
	if err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid user ID"))
		return domain.ULID{}, false
	}
	return id, true
}

// parseRoleForm reads the UserId and RoleIds form fields. RoleIds accepts
// both repeated keys and comma-separated values. ParseForm skips the body
// on DELETE, so it is decoded by hand there.
func (h *HandlerUser) parseRoleForm(w http.ResponseWriter, r *http.Request) (domain.ULID, []int, bool) {
	if err := r.ParseForm(); err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid form body"))
		return domain.ULID{}, nil, false
	}

	form := r.Form
	if r.Method == http.MethodDelete {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			errors.RespondWithValidation(w, domain.NewValidationError("invalid form body"))
			return domain.ULID{}, nil, false
		}
		parsed, err := url.ParseQuery(string(body))
		if err != nil {
			errors.RespondWithValidation(w, domain.NewValidationError("invalid form body"))
			return domain.ULID{}, nil, false
		}
		for key, values := range parsed {
			form[key] = append(form[key], values...)
		}
	}

	userID, err := ulid.Parse(form.Get("UserId"))
	if err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid user ID"))
		return domain.ULID{}, nil, false
	}

	var roleIDs []int
	for _, value := range form["RoleIds"] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				errors.RespondWithValidation(w, domain.NewValidationError("RoleIds must be integers"))
				return domain.ULID{}, nil, false
			}
			roleIDs = append(roleIDs, id)
		}
	}

	return userID, roleIDs, true
}

func (h *HandlerUser) writeJSON(w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
