package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/rs/zerolog/log"
)

// apiResponse is the envelope of every successful API response.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// apiError is the envelope of every failed API response.
type apiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// writeError serialises err. Internal errors are logged and their details
// never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusOf(err)
	if apperrors.KindOf(err) == apperrors.KindInternal {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, apiError{
		StatusCode: status,
		Message:    apperrors.MessageOf(err),
		Success:    false,
		Errors:     []string{},
	})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.BadRequest("Invalid request body", err)
	}
	return nil
}
