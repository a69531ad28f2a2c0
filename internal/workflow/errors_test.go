package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"semcheck/internal/gateway"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation two fields", &ValidationError{Message: MsgBothTextsRequired}, "both text fields required"},
		{"validation one field", &ValidationError{Message: MsgTextRequired}, "text field required"},
		{
			"server with detail",
			&gateway.ServerError{Op: gateway.OpCompare, StatusCode: 400, StatusText: "Bad Request", Detail: "Kedua teks tidak boleh kosong"},
			"failed: Kedua teks tidak boleh kosong",
		},
		{
			"server without detail",
			&gateway.ServerError{Op: gateway.OpCheck, StatusCode: 502, StatusText: "Bad Gateway"},
			"failed: Bad Gateway",
		},
		{
			"extraction with detail",
			&gateway.ServerError{Op: gateway.OpExtract, StatusCode: 400, StatusText: "Bad Request", Detail: "unsupported file format"},
			"failed: unsupported file format",
		},
		{
			"extraction without detail",
			&gateway.ServerError{Op: gateway.OpExtract, StatusCode: 500, StatusText: "Internal Server Error"},
			MsgExtractFailed,
		},
		{
			"transport",
			&gateway.TransportError{Op: gateway.OpCheck, Err: context.DeadlineExceeded},
			"cannot reach server",
		},
		{
			"unexpected from gateway",
			&gateway.UnexpectedError{Op: gateway.OpCompare, Err: errors.New("decode response: invalid character")},
			"failed: unexpected error: decode response: invalid character",
		},
		{"plain error", errors.New("bad url"), "failed: unexpected error: bad url"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Normalize(c.err))
		})
	}
}

func TestNormalizeSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &gateway.TransportError{Op: gateway.OpCompare, Err: errors.New("refused")})
	assert.Equal(t, MsgUnreachable, Normalize(err))

	err = fmt.Errorf("dispatch: %w", &ValidationError{Message: MsgNoFile})
	assert.Equal(t, MsgNoFile, Normalize(err))
}
