package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/ai"

	"github.com/easel-ai/easel/internal/model"
)

// ScriptedStep is one pre-programmed model step.
type ScriptedStep struct {
	// Chunks are streamed to the callback in order before the step
	// completes.
	Chunks []string

	// ToolRequests are returned as the step's tool invocations.
	ToolRequests []*ai.ToolRequest

	// Err aborts the step after streaming Chunks.
	Err error
}

// ScriptedObject is one pre-programmed StreamObject call.
type ScriptedObject struct {
	// Snapshots are the accumulated values passed to the callback.
	Snapshots []string

	// Final is the returned value. Empty defaults to the last snapshot.
	Final string

	Err error
}

// FakeModel is a scripted model.Client. Steps and Objects are consumed
// in order; running past the script fails the call. Counters record how
// many calls of each kind were made.
type FakeModel struct {
	mu sync.Mutex

	Steps   []ScriptedStep
	Objects []ScriptedObject

	// Completion is returned by Complete.
	Completion  string
	CompleteErr error

	StepCalls     int
	ObjectCalls   int
	CompleteCalls int
}

var _ model.Client = (*FakeModel)(nil)

// Step implements model.Client.
func (f *FakeModel) Step(ctx context.Context, _ model.StepRequest, cb model.StreamCallback) (*model.StepResult, error) {
	f.mu.Lock()
	f.StepCalls++
	if len(f.Steps) == 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("fake model: no scripted step for call %d", f.StepCalls)
	}
	step := f.Steps[0]
	f.Steps = f.Steps[1:]
	f.mu.Unlock()

	for _, chunk := range step.Chunks {
		if cb != nil {
			if err := cb(ctx, &ai.ModelResponseChunk{
				Content: []*ai.Part{ai.NewTextPart(chunk)},
			}); err != nil {
				return nil, err
			}
		}
	}

	if step.Err != nil {
		return nil, step.Err
	}

	var parts []*ai.Part
	for _, chunk := range step.Chunks {
		parts = append(parts, ai.NewTextPart(chunk))
	}
	for _, req := range step.ToolRequests {
		parts = append(parts, &ai.Part{Kind: ai.PartToolRequest, ToolRequest: req})
	}

	return &model.StepResult{
		Message:      ai.NewModelMessage(parts...),
		ToolRequests: step.ToolRequests,
	}, nil
}

// Complete implements model.Client.
func (f *FakeModel) Complete(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CompleteCalls++
	if f.CompleteErr != nil {
		return "", f.CompleteErr
	}
	return f.Completion, nil
}

// StreamObject implements model.Client.
func (f *FakeModel) StreamObject(ctx context.Context, _ model.ObjectRequest, cb model.ObjectCallback) (string, error) {
	f.mu.Lock()
	f.ObjectCalls++
	if len(f.Objects) == 0 {
		f.mu.Unlock()
		return "", fmt.Errorf("fake model: no scripted object for call %d", f.ObjectCalls)
	}
	obj := f.Objects[0]
	f.Objects = f.Objects[1:]
	f.mu.Unlock()

	for _, snapshot := range obj.Snapshots {
		if cb != nil {
			if err := cb(ctx, snapshot); err != nil {
				return "", err
			}
		}
	}

	if obj.Err != nil {
		return "", obj.Err
	}

	final := obj.Final
	if final == "" && len(obj.Snapshots) > 0 {
		final = obj.Snapshots[len(obj.Snapshots)-1]
	}
	return final, nil
}
