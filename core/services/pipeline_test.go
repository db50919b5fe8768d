package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordStage(name string, trace *[]string) Stage {
	return Stage{
		Name: name,
		Run: func(_ context.Context, _ *Call) error {
			*trace = append(*trace, name)
			return nil
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	var trace []string
	p := NewPipeline().
		Before(recordStage("auth", &trace), MethodCreate).
		Before(recordStage("hash", &trace), MethodCreate, MethodPatch).
		After(recordStage("populate", &trace)).
		After(recordStage("publish", &trace), MutatingMethods...)

	handler := func(_ context.Context, call *Call) error {
		trace = append(trace, "handler")
		call.Result = "done"
		return nil
	}

	tests := []struct {
		method   Method
		expected []string
	}{
		{MethodCreate, []string{"auth", "hash", "handler", "populate", "publish"}},
		{MethodPatch, []string{"hash", "handler", "populate", "publish"}},
		{MethodGet, []string{"handler", "populate"}},
		{MethodRemove, []string{"handler", "populate", "publish"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			trace = nil
			call := &Call{Method: tt.method}
			require.NoError(t, p.Run(context.Background(), call, handler))
			assert.Equal(t, tt.expected, trace)
			assert.Equal(t, tt.expected, p.Describe(tt.method))
			assert.Equal(t, "done", call.Result)
		})
	}
}

func TestPipeline_RunStopsOnError(t *testing.T) {
	errDenied := errors.New("denied")
	var trace []string

	p := NewPipeline().
		Before(Stage{Name: "deny", Run: func(context.Context, *Call) error { return errDenied }}).
		After(recordStage("after", &trace))

	handlerCalled := false
	err := p.Run(context.Background(), &Call{Method: MethodFind}, func(context.Context, *Call) error {
		handlerCalled = true
		return nil
	})

	assert.ErrorIs(t, err, errDenied)
	assert.False(t, handlerCalled)
	assert.Empty(t, trace)
}

func TestPipeline_HandlerErrorSkipsAfterStages(t *testing.T) {
	errStore := errors.New("store down")
	var trace []string

	p := NewPipeline().After(recordStage("publish", &trace))
	err := p.Run(context.Background(), &Call{Method: MethodCreate}, func(context.Context, *Call) error {
		return errStore
	})

	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, trace)
}

func TestPipeline_DuplicateMethodsRegisterOnce(t *testing.T) {
	var trace []string
	p := NewPipeline().
		Before(recordStage("once", &trace), MethodGet, MethodGet).
		After(recordStage("spread", &trace), MethodGet, MethodFind, MethodGet)

	assert.Equal(t, []string{"once", "handler", "spread"}, p.Describe(MethodGet))
	assert.Equal(t, []string{"handler", "spread"}, p.Describe(MethodFind))
}
