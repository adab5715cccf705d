package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error is returned for every failed call: transport, non-2xx status or
// undecodable body. HTTPStatus is zero and Organization empty when the
// server did not report them.
type Error struct {
	Message      string
	Type         string
	HTTPStatus   int
	Organization string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) HasStatus() bool {
	return e.HTTPStatus != 0
}

type errorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func newError(resp *http.Response) *Error {
	b, _ := io.ReadAll(resp.Body)

	e := &Error{
		HTTPStatus:   resp.StatusCode,
		Organization: resp.Header.Get(_header_organization),
	}

	var body errorBody
	if err := json.Unmarshal(b, &body); err == nil && body.Error != nil {
		e.Message = body.Error.Message
		e.Type = body.Error.Type
		return e
	}

	e.Message = fmt.Sprintf("Invalid response object from API: %q", string(b))
	return e
}
