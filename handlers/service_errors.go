package handlers

import (
	"net/http"

	"github.com/upb/coffee-shop/services"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Clients only see
// the generic envelope message; the cause is logged.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	errType := services.GetErrorType(err)
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(errType)))
		if werr := utils.WriteInternalServerError(w); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
		return
	}

	logger.Debug("handled service error",
		zap.String("type", string(errType)),
		zap.Error(err),
		zap.Any("details", services.GetErrorDetails(err)))

	if werr := utils.WriteError(w, status, "", string(errType)); werr != nil {
		logger.Error("failed to write error response",
			zap.Int("status", status),
			zap.Error(werr))
	}
}

func statusForError(err error) int {
	switch {
	case services.IsNotFoundError(err):
		return http.StatusNotFound
	case services.IsValidationError(err):
		return http.StatusBadRequest
	case services.IsConflictError(err):
		return http.StatusConflict
	case services.IsUnprocessableError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		logger.Debug("request validation failed", zap.Any("fields", utils.GetValidationFields(err)))
	} else {
		logger.Debug("malformed request body", zap.Error(err))
	}

	if werr := utils.WriteBadRequest(w, ""); werr != nil {
		logger.Error("failed to write validation error response", zap.Error(werr))
	}
}
