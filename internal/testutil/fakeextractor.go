package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/easel-ai/easel/internal/extract"
)

// FakeExtractor is a scripted extract.Extractor for tests. Configure
// the result fields; zero values produce a failed extraction.
type FakeExtractor struct {
	mu sync.Mutex

	// ExtractRes is returned from Extract when ExtractErr is nil.
	ExtractRes *extract.ExtractResult
	ExtractErr error

	// MapRes is returned from MapURL when MapErr is nil.
	MapRes *extract.MapResult
	MapErr error

	// ExtractCalls and MapCalls record the URLs of each invocation.
	ExtractCalls [][]string
	MapCalls     []string
}

var _ extract.Extractor = (*FakeExtractor)(nil)

func (f *FakeExtractor) Extract(ctx context.Context, urls []string, prompt, schemaHint string) (*extract.ExtractResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ExtractCalls = append(f.ExtractCalls, urls)
	if f.ExtractErr != nil {
		return nil, f.ExtractErr
	}
	if f.ExtractRes == nil {
		return &extract.ExtractResult{Success: false, Error: "no scripted result"}, nil
	}
	return f.ExtractRes, nil
}

func (f *FakeExtractor) MapURL(ctx context.Context, url string) (*extract.MapResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.MapCalls = append(f.MapCalls, url)
	if f.MapErr != nil {
		return nil, f.MapErr
	}
	if f.MapRes == nil {
		return &extract.MapResult{Success: false, Error: "no scripted result"}, nil
	}
	return f.MapRes, nil
}

// ScriptedTeamMembers builds a successful extraction carrying n team
// member records.
func ScriptedTeamMembers(n int) *extract.ExtractResult {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"firstName":   fmt.Sprintf("Member%d", i+1),
			"lastName":    "Example",
			"designation": "Engineer",
		}
	}
	return &extract.ExtractResult{
		Success:  true,
		DataType: extract.DataTypeTeamMember,
		Items:    items,
	}
}
