package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

type errorResponse struct {
	Error  string       `json:"error"`
	Detail string       `json:"detail,omitempty"`
	Line   *int         `json:"line,omitempty"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps a service error to its HTTP status and public message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrEmptyName):
		return http.StatusBadRequest, "ingredient name is empty"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "store unavailable"
	case errors.Is(err, domain.ErrRemoteWrite) && errors.Is(err, domain.ErrNotFound):
		// A record referenced an ingredient the store does not know,
		// typically a selected suggestion with a stale or forged id.
		return http.StatusBadRequest, "unknown ingredient"
	case errors.Is(err, domain.ErrRemoteRead), errors.Is(err, domain.ErrRemoteWrite):
		return http.StatusBadGateway, "store request failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	resp := errorResponse{Error: message}

	var lineErr *domain.LineError
	if errors.As(err, &lineErr) {
		line := lineErr.Index
		resp.Line = &line
	}
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		resp.Detail = remote.Err.Error()
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			resp.Fields = append(resp.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, resp)
}

// writeValidation reports struct validation failures as field errors.
func writeValidation(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "validation failed"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, fieldError{
				Field:   fe.Namespace(),
				Message: "failed on " + fe.Tag(),
			})
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
