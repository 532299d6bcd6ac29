package model

import (
	"strings"
	"testing"
)

// feedAll pushes chunks through a splitter and returns the collected
// reasoning and content.
func feedAll(t *testing.T, chunks []string) (string, string) {
	t.Helper()

	var s ThinkSplitter
	var reasoning, content strings.Builder
	for _, chunk := range chunks {
		r, c := s.Feed(chunk)
		reasoning.WriteString(r)
		content.WriteString(c)
	}
	r, c := s.Flush()
	reasoning.WriteString(r)
	content.WriteString(c)
	return reasoning.String(), content.String()
}

func TestThinkSplitter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		chunks        []string
		wantReasoning string
		wantContent   string
	}{
		{
			name:          "no tags",
			chunks:        []string{"plain ", "answer"},
			wantReasoning: "",
			wantContent:   "plain answer",
		},
		{
			name:          "single chunk with tags",
			chunks:        []string{"<think>reasoning here</think>the answer"},
			wantReasoning: "reasoning here",
			wantContent:   "the answer",
		},
		{
			name:          "tag split across chunks",
			chunks:        []string{"<thi", "nk>deep thought</thi", "nk>result"},
			wantReasoning: "deep thought",
			wantContent:   "result",
		},
		{
			name:          "tag split byte by byte",
			chunks:        strings.Split("<think>ab</think>cd", ""),
			wantReasoning: "ab",
			wantContent:   "cd",
		},
		{
			name:          "unclosed think routes to reasoning",
			chunks:        []string{"<think>never finished"},
			wantReasoning: "never finished",
			wantContent:   "",
		},
		{
			name:          "false tag prefix is content",
			chunks:        []string{"a < b and <thin air"},
			wantReasoning: "",
			wantContent:   "a < b and <thin air",
		},
		{
			name:          "multiple think spans",
			chunks:        []string{"<think>one</think>first<think>two</think>second"},
			wantReasoning: "onetwo",
			wantContent:   "firstsecond",
		},
		{
			name:          "empty input",
			chunks:        []string{""},
			wantReasoning: "",
			wantContent:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reasoning, content := feedAll(t, tt.chunks)
			if reasoning != tt.wantReasoning {
				t.Errorf("reasoning = %q, want %q", reasoning, tt.wantReasoning)
			}
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
		})
	}
}

func TestThinkSplitterHoldsPartialTag(t *testing.T) {
	t.Parallel()

	var s ThinkSplitter
	r, c := s.Feed("answer<thi")
	if r != "" || c != "answer" {
		t.Errorf("Feed() = (%q, %q), partial tag must be held back", r, c)
	}

	// The held prefix turns out not to be a tag.
	r, c = s.Feed("rd item")
	if r != "" || c != "<third item" {
		t.Errorf("Feed() = (%q, %q), want released prefix", r, c)
	}
}
