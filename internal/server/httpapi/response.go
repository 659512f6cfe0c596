package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avelins/cliptube/internal/common"
)

// apiResponse is the uniform JSON envelope for success and error responses.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, apiResponse{StatusCode: status, Data: data, Message: message, Success: true})
}

// writeError maps service sentinels to HTTP status codes. Messages stay
// generic except for refresh-token reuse, which is deliberately
// distinguishable: it is the alerting signal for a possibly stolen token.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"

	switch {
	case errors.Is(err, common.ErrorBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrRefreshTokenReused):
		status, message = http.StatusUnauthorized, "refresh token is expired or used"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorConflict):
		status, message = http.StatusConflict, "already exists"
	}

	writeJSON(w, status, apiResponse{StatusCode: status, Message: message, Success: false})
}

// decodeJSON decodes a request body into v, mapping malformed input to
// common.ErrorBadRequest.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorBadRequest
	}
	return nil
}
