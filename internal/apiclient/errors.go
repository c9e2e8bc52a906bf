package apiclient

import (
	"fmt"
	"net/http"
)

// RequestError means the request never produced a response.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusError means the API answered with a status outside 200-299.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s answered %d %s", e.Endpoint, e.Code, http.StatusText(e.Code))
}

// CheckStatus is the single success rule: a response succeeded iff its status
// code is in 200-299. Callers run it before reading the body.
func CheckStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return nil
}
