package api

import (
	"encoding/json"
	"net/http"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/logging"
)

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("encoding JSON response failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondEngineError maps analysis errors onto HTTP statuses. Unrecognized
// errors become 500s with the detail kept out of the response body.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case attack.IsNotFound(err):
		s.respondError(w, http.StatusNotFound, err.Error())
	case attack.IsInvalidArgument(err), attack.IsInvalidRange(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("analysis request failed", logging.Error(err))
		s.respondError(w, http.StatusInternalServerError, "analysis failed")
	}
}
