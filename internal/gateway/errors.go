package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrExtraction matches any ServerError raised by the extract operation.
var ErrExtraction = errors.New("text extraction failed")

// ServerError means the service answered with a non-success status.
type ServerError struct {
	Op         string
	StatusCode int
	StatusText string
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("gateway: %s: %d %s: %s", e.Op, e.StatusCode, e.StatusText, e.Detail)
	}
	return fmt.Sprintf("gateway: %s: %d %s", e.Op, e.StatusCode, e.StatusText)
}

// Is lets errors.Is(err, ErrExtraction) single out rejected uploads.
func (e *ServerError) Is(target error) bool {
	return target == ErrExtraction && e.Op == OpExtract
}

// TransportError means no response was received at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway: %s: no response: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedError covers local failures building a request or reading a
// success body.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// parseDetail pulls the FastAPI "detail" field out of an error body. It
// may be a string or a list of validation entries with a "msg" field.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
