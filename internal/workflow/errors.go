package workflow

import (
	"errors"

	"semcheck/internal/gateway"
)

// User-facing messages.
const (
	MsgBothTextsRequired = "both text fields required"
	MsgTextRequired      = "text field required"
	MsgNoFile            = "no file selected"
	MsgUnreachable       = "cannot reach server"
	MsgExtractFailed     = "failed to extract text from file"

	failurePrefix = "failed: "
)

// ValidationError is a local precondition failure. It never reaches the
// network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Normalize collapses any failure into the single message shown to the
// user. The order of the checks matters: validation, then server-reported,
// then transport, then everything else.
func Normalize(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var se *gateway.ServerError
	if errors.As(err, &se) {
		if se.Detail != "" {
			return failurePrefix + se.Detail
		}
		if errors.Is(err, gateway.ErrExtraction) {
			return MsgExtractFailed
		}
		return failurePrefix + se.StatusText
	}

	var te *gateway.TransportError
	if errors.As(err, &te) {
		return MsgUnreachable
	}

	msg := err.Error()
	var ue *gateway.UnexpectedError
	if errors.As(err, &ue) && ue.Err != nil {
		msg = ue.Err.Error()
	}
	return failurePrefix + "unexpected error: " + msg
}
