package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	errs "sgfkit/internal/errors"
)

type Response[T any] struct {
	Status int `json:"Status"`
	Body   any `json:"Body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"ErrorDescription"`
}

const INTERNALERRORJSON = "{\"Status\": 500,\"Body\":{\"ErrorDescription\": \"Internal server error\"}}"

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonByte)
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	marshal, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	return marshal, nil
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// same as http.Error, only the Content-Type differs
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrCollectionNotFound), errors.Is(err, errs.ErrGameNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrImportForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errs.ErrEmptyInput):
		return http.StatusBadRequest
	case errs.IsParseError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError logs err and writes it with the status from StatusFor. Details
// of internal errors are not sent to the client.
func WriteError(log *zap.SugaredLogger, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "error", err)
		WriteInternalErrorResponse(w)
		return
	}
	log.Debugw("request rejected", "status", status, "error", err)
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: err.Error()})
}
