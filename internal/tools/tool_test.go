package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/stream"
)

func TestToolErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ToolError
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "<nil ToolError>",
		},
		{
			name: "type and message",
			err:  &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "url is required"},
			want: "InvalidArguments: url is required",
		},
		{
			name: "message only",
			err:  &ToolError{Message: "something went wrong"},
			want: "something went wrong",
		},
		{
			name: "type only",
			err:  &ToolError{ErrorType: ErrTypeExtractionFailed},
			want: "ExtractionFailed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsToolError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantType string
		wantOK   bool
	}{
		{
			name:     "typed tool error passes through",
			err:      &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "bad"},
			wantType: ErrTypeInvalidArguments,
			wantOK:   true,
		},
		{
			name:     "wrapped tool error",
			err:      fmt.Errorf("dispatch: %w", &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "bad"}),
			wantType: ErrTypeInvalidArguments,
			wantOK:   true,
		},
		{
			name:     "extraction failure sentinel",
			err:      fmt.Errorf("%w: upstream says no", extract.ErrFailed),
			wantType: ErrTypeExtractionFailed,
			wantOK:   true,
		},
		{
			name:     "unsupported kind sentinel",
			err:      fmt.Errorf("%w: %q", artifact.ErrUnsupportedKind, "image"),
			wantType: ErrTypeUnsupportedKind,
			wantOK:   true,
		},
		{
			name:   "plain error is not recoverable",
			err:    errors.New("database down"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te, ok := AsToolError(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("AsToolError() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && te.ErrorType != tt.wantType {
				t.Errorf("ErrorType = %q, want %q", te.ErrorType, tt.wantType)
			}
		})
	}
}

type echoInput struct {
	Message string `json:"message" jsonschema_description:"Text to echo back"`
}

type echoOutput struct {
	Echoed string `json:"echoed"`
}

func newEchoTool(t *testing.T) *Tool {
	t.Helper()

	tool, err := NewTool("echo", "Echo the message back.",
		func(_ context.Context, in echoInput, _ stream.Sink) (echoOutput, error) {
			return echoOutput{Echoed: in.Message}, nil
		})
	if err != nil {
		t.Fatalf("NewTool() error = %v", err)
	}
	return tool
}

func TestToolExecute(t *testing.T) {
	t.Parallel()

	tool := newEchoTool(t)

	out, err := tool.Execute(context.Background(), map[string]any{"message": "hello"}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	echoed, ok := out.(echoOutput)
	if !ok {
		t.Fatalf("Execute() returned %T, want echoOutput", out)
	}
	if echoed.Echoed != "hello" {
		t.Errorf("Echoed = %q, want %q", echoed.Echoed, "hello")
	}
}

func TestToolExecuteRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	tool := newEchoTool(t)

	tests := []struct {
		name  string
		input any
	}{
		{name: "wrong field type", input: map[string]any{"message": 42}},
		{name: "missing required field", input: map[string]any{}},
		{name: "nil input", input: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tool.Execute(context.Background(), tt.input, nil)
			te, ok := AsToolError(err)
			if !ok {
				t.Fatalf("Execute() error = %v, want a tool error", err)
			}
			if te.ErrorType != ErrTypeInvalidArguments {
				t.Errorf("ErrorType = %q, want %q", te.ErrorType, ErrTypeInvalidArguments)
			}
		})
	}
}
