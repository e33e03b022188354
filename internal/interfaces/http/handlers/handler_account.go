package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/interfaces/http/dto"
	"github.com/ipede/user-manager-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type HandlerAccount struct {
	authService domain.AuthService
	logger      *zap.Logger
}

func NewAccountHandler(authService domain.AuthService, logger *zap.Logger) *HandlerAccount {
	return &HandlerAccount{
		authService: authService,
		logger:      logger,
	}
}

// SignInHandler exchanges credentials for a bearer token. The credentials
// arrive as the Login and Password query parameters.
func (h *HandlerAccount) SignInHandler(w http.ResponseWriter, r *http.Request) {
	req := dto.AccountRequest{
		Login:    r.URL.Query().Get("Login"),
		Password: r.URL.Query().Get("Password"),
	}
	if err := req.Validate(); err != nil {
		errors.RespondWithValidation(w, err)
		return
	}

	token, err := h.authService.SignIn(r.Context(), req.Credentials())
	if err != nil {
		h.logger.Error("failed to sign in", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	// bare token, not a JSON string
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(token)); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *HandlerAccount) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.RespondWithValidation(w, domain.NewValidationError("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		errors.RespondWithValidation(w, err)
		return
	}

	account, err := h.authService.SignUp(r.Context(), req.Credentials())
	if err != nil {
		h.logger.Error("failed to register account", zap.Error(err))
		errors.RespondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dto.NewAccountResponse(account)); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
