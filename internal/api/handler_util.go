package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/errors"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	io.WriteString(w, body)
}

// writeError maps coded errors onto status codes. Argument errors are the
// caller's fault; everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidName, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case "":
		code = errors.ErrCodeInternal
	}
	writeJson(w, status, errorResponse{Error: errorDetail{Code: string(code), Message: errors.UserMessage(err)}})
}

// readValue reads the request body as a value. JSON bodies are decoded as
// {"type": ..., "value": ...}; any other body is taken as TeX source.
func readValue(r *http.Request) (datamodel.Value, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "read body")
	}
	if len(data) > maxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "body exceeds %d bytes", maxBodySize)
	}

	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		v, err := datamodel.DecodeValue(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "decode value")
		}
		return v, nil
	}
	return datamodel.StringValue(strings.TrimSpace(string(data))), nil
}
