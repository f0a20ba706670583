package server

import (
	"encoding/json"
	"net/http"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Code    derrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code derrors.Code) int {
	switch code {
	case derrors.ErrCodeNotFound:
		return http.StatusNotFound
	case derrors.ErrCodeConfirmationRequired, derrors.ErrCodeCancelled:
		return http.StatusConflict
	case derrors.ErrCodeQuotaExceeded:
		return http.StatusInsufficientStorage
	case derrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if derrors.IsValidation(derrors.New(code, "")) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := derrors.GetCode(err)
	if code == "" {
		code = derrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: derrors.UserMessage(err)})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
