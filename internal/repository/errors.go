package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrResourceConflict = errors.New("resource already exists")
)

// APIError is a non-2xx response from the inventory backend
type APIError struct {
	Method     string
	Resource   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Resource, e.StatusCode, e.Message)
}

// Status returns the HTTP status code of the response
func (e *APIError) Status() int {
	return e.StatusCode
}

// Is matches ErrResourceNotFound on 404 and ErrResourceConflict on 409
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrResourceNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrResourceConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// errorBody is the NestJS error response shape
type errorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

func newAPIError(method, resource string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		Resource:   resource,
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
			apiErr.Message = text
		}
		return apiErr
	}

	var single string
	var list []string
	switch {
	case json.Unmarshal(parsed.Message, &single) == nil && single != "":
		apiErr.Message = single
	case json.Unmarshal(parsed.Message, &list) == nil && len(list) > 0:
		apiErr.Message = strings.Join(list, "; ")
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	}

	return apiErr
}
