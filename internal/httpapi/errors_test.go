package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"orchd/internal/backend"
	"orchd/internal/orchestrator"
	"orchd/pkg/types"
)

type codedError struct {
	msg  string
	code int
}

func (e codedError) Error() string   { return e.msg }
func (e codedError) StatusCode() int { return e.code }

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", orchestrator.ErrNotFound("m"), http.StatusNotFound},
		{"in use", orchestrator.ErrModelInUse("m"), http.StatusConflict},
		{"invalid state", orchestrator.ErrInvalidState("m", types.StatusLoading, "unload"), http.StatusConflict},
		{"insufficient vram", orchestrator.ErrInsufficientVRAM("m", 20, 4), http.StatusServiceUnavailable},
		{"load timeout", backend.ErrLoadTimeout("m"), http.StatusServiceUnavailable},
		{"load refused", backend.ErrLoadRefused("m", errors.New("conn refused")), http.StatusServiceUnavailable},
		{"unavailable", backend.ErrUnavailable("m"), http.StatusServiceUnavailable},
		{"generation timeout", backend.ErrGenerationTimeout("m"), http.StatusGatewayTimeout},
		{"coded", codedError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("%s: status=%d want=%d", tc.name, got, tc.want)
		}
	}
}
