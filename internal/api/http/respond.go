package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"

	"github.com/gorilla/mux"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	case domain.KindCapacityExceeded, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	code := string(kind)
	msg := err.Error()
	if kind == "" {
		code = "INTERNAL"
		msg = "internal error"
	}

	if kind == domain.KindDependencyFailure {
		msg = "a backing service is unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFrom(r.Context()))
	} else {
		logger.InfoContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("parse id", "invalid id %q", raw)
	}
	return id, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, domain.ValidationError("parse query", "invalid %s %q", name, raw)
	}
	return v, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ValidationError("decode body", "malformed request body: %v", err)
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates and returns UTC.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.ValidationError("parse date", "%s is required", field)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.ValidationError("parse date", "%s %q is not an RFC 3339 timestamp or YYYY-MM-DD date", field, raw)
}
