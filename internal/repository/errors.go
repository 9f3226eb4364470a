package repository

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrNotFound matches any RequestError with status 404.
var ErrNotFound = errors.New("not found")

// RequestError is a non-2xx response from the backend.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func newRequestError(method, path string, status int, body []byte) *RequestError {
	return &RequestError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: messageFromBody(body),
	}
}

// messageFromBody pulls a human-readable message out of an error body. The
// backend answers with a bare string, {"message": ...}, or a problem document
// whose "errors" object maps fields to message lists.
func messageFromBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !gjson.ValidBytes(trimmed) {
		return string(trimmed)
	}

	doc := gjson.ParseBytes(trimmed)
	if doc.Type == gjson.String {
		return doc.String()
	}
	for _, key := range []string{"message", "detail"} {
		if v := doc.Get(key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if errs := doc.Get("errors"); errs.IsObject() {
		var first string
		errs.ForEach(func(_, v gjson.Result) bool {
			if list := v.Array(); len(list) > 0 {
				first = list[0].String()
				return false
			}
			return true
		})
		if first != "" {
			return first
		}
	}
	for _, key := range []string{"title", "error"} {
		if v := doc.Get(key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
