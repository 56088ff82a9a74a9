package server

import (
	"encoding/json"
	"net/http"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
)

// statusFor maps error codes to HTTP status codes.
func statusFor(code orerrors.Code) int {
	switch code {
	case orerrors.ErrCodeSchema,
		orerrors.ErrCodeDanglingReference,
		orerrors.ErrCodeCycle,
		orerrors.ErrCodeEmptyForest,
		orerrors.ErrCodeRecursionLimit,
		orerrors.ErrCodeDuplicateNode:
		return http.StatusUnprocessableEntity
	case orerrors.ErrCodeInvalidInput,
		orerrors.ErrCodeInvalidConfig,
		orerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case orerrors.ErrCodeNotFound, orerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case orerrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

type apiError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Nodes   []string `json:"nodes,omitempty"`
}

func errorBody(code, message string, nodes []string) map[string]apiError {
	return map[string]apiError{"error": {Code: code, Message: message, Nodes: nodes}}
}

// writeError writes err as a JSON error body. Internal errors are not
// echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	code := orerrors.GetCode(err)
	if code == "" {
		code = orerrors.ErrCodeInternal
	}
	status := statusFor(code)

	msg := orerrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(string(code), msg, orerrors.Nodes(err)))
}

func errNotFound(path string) error {
	return orerrors.New(orerrors.ErrCodeNotFound, "no route for %s", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
