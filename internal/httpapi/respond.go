package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"coldroute/internal/apperror"
	"coldroute/internal/logger"
	"coldroute/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response body", "error", err)
	}
}

// writeError translates err into the standard error envelope, mapping
// repository sentinel errors the same way apperror.Error.HTTPStatus maps
// its own codes, since the repository layer itself stays transport-agnostic
// (SPEC_FULL.md §7's recovery policy).
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.HTTPStatus(), errorDTO{Error: errorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Field:   appErr.Field,
		}})
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Error: errorBody{
			Code: string(apperror.CodeNotFound), Message: err.Error(),
		}})
	case errors.Is(err, repository.ErrConflict):
		writeJSON(w, http.StatusConflict, errorDTO{Error: errorBody{
			Code: string(apperror.CodeConflict), Message: err.Error(),
		}})
	default:
		logger.Log.Error("unhandled httpapi error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorDTO{Error: errorBody{
			Code: string(apperror.CodeInternal), Message: "internal error",
		}})
	}
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, errorDTO{Error: errorBody{
		Code:    string(apperror.CodeValidation),
		Message: message,
		Field:   field,
	}})
}
