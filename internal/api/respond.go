package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/services"
	"github.com/soaringjerry/Resilience/internal/utils"
)

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Missing []int             `json:"missing,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var incomplete *services.IncompleteError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		body.Code = "validation"
		body.Fields = make(map[string]string, len(ve))
		for _, fe := range ve {
			body.Fields[fe.Field()] = fe.Tag()
		}
	case errors.As(err, &incomplete):
		status = http.StatusConflict
		body.Code = "incomplete"
		body.Missing = incomplete.Missing
		body.Message = utils.T(locale, "assessment.incomplete")
	case errors.Is(err, services.ErrInvalidAnswerValue), errors.Is(err, services.ErrUnknownQuestion):
		status = http.StatusBadRequest
		body.Code = "invalid_answer"
	case errors.Is(err, services.ErrAuthRequired):
		status = http.StatusUnauthorized
		body.Code = "unauthorized"
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusNotFound
		body.Code = "not_found"
	case errors.Is(err, services.ErrSessionClosed):
		status = http.StatusConflict
		body.Code = "session_closed"
	case errors.Is(err, services.ErrPersistence):
		status = http.StatusServiceUnavailable
		body.Code = "persistence"
	default:
		if se, ok := services.AsServiceError(err); ok {
			body.Code = string(se.Code)
			switch se.Code {
			case services.ErrorInvalid:
				status = http.StatusBadRequest
			case services.ErrorNotFound:
				status = http.StatusNotFound
			case services.ErrorConflict:
				status = http.StatusConflict
			case services.ErrorUnauthorized:
				status = http.StatusUnauthorized
			}
		}
	}
	if status >= http.StatusInternalServerError {
		rt.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst and validates it. An empty body leaves
// dst zero, so required fields fail validation.
func (rt *Router) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return services.NewInvalidError("invalid json: " + err.Error())
	}
	return rt.validate.Struct(dst)
}
