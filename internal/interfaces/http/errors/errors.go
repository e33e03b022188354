package errors

import (
	"encoding/json"
	"net/http"

	"github.com/ipede/user-manager-service/internal/domain"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func statusOf(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeAlreadyExists, domain.CodeInvalidRoles, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeInvalidRange:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// RespondWithError maps err to its status code and writes the uniform
// error body.
func RespondWithError(w http.ResponseWriter, err error) {
	respond(w, statusOf(err), err.Error())
}

// RespondWithValidation reports a pre-core validation failure.
func RespondWithValidation(w http.ResponseWriter, err error) {
	respond(w, http.StatusBadRequest, err.Error())
}

func respond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		StatusCode: status,
		Message:    message,
	})
}
