package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/architeacher/netinventory/internal/domain/model"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	codeNotFound         = "NOT_FOUND"
	codeValidationError  = "VALIDATION_ERROR"
	codeInternalError    = "INTERNAL_ERROR"
	codeInvalidID        = "INVALID_ID"
	codeInvalidJSON      = "INVALID_JSON"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	msgDeviceNotFound     = "device not found"
	msgDeviceDeleted      = "device removed successfully"
	msgInvalidDeviceID    = "invalid device ID"
	msgInvalidRequestBody = "invalid request body"
	msgResourceNotFound   = "resource not found"
	msgMethodNotAllowed   = "method not allowed"
)

type (
	ErrorResponse struct {
		Code      string                  `json:"code"`
		Message   string                  `json:"message"`
		Details   []model.ValidationError `json:"details,omitempty"`
		Timestamp time.Time               `json:"timestamp"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func writeValidationErrorResponse(w http.ResponseWriter, errs *model.ValidationErrors) {
	writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
		Code:      codeValidationError,
		Message:   errs.Error(),
		Details:   errs.Errors,
		Timestamp: time.Now().UTC(),
	})
}

// NotFound answers unmatched routes, including non-numeric device IDs.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeErrorResponse(w, http.StatusNotFound, codeNotFound, msgResourceNotFound)
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeErrorResponse(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, msgMethodNotAllowed)
}
