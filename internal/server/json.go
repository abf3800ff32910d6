package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/session"
)

type errResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error to the HTTP status reported to the client.
func statusOf(err error) int {
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, session.ErrInvalidID):
		return http.StatusBadRequest
	case errors.IsCancelled(err):
		return 499
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeFormat, errors.ErrCodeConverter, errors.ErrCodeBuilder:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeExtraction:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeAppCall:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	body := errorBody{
		Code:    errors.GetCode(err),
		Title:   errors.TitleOf(err),
		Message: errors.UserMessage(err),
	}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		body.Code, body.Title, body.Message = errors.ErrCodeNotFound, "Not found", "The session or collection does not exist."
	case status == http.StatusInternalServerError:
		s.Logger.Error("request failed", "err", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, errResponse{Error: body})
}
