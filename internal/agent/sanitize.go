package agent

import (
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/easel-ai/easel/internal/model"
)

// sanitizeMessages prepares the step loop's output messages for
// persistence:
//   - tool request parts without a matching tool response anywhere in
//     the batch are dropped (an aborted loop leaves orphans),
//   - think-tag reasoning spans are separated out of text parts, so
//     stored content never carries raw reasoning markup,
//   - parts left empty and messages left without parts are dropped.
//
// The input messages are not mutated.
func sanitizeMessages(msgs []*ai.Message) []*ai.Message {
	answered := make(map[string]bool)
	for _, msg := range msgs {
		for _, part := range msg.Content {
			if part != nil && part.ToolResponse != nil {
				answered[part.ToolResponse.Ref] = true
			}
		}
	}

	out := make([]*ai.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}

		parts := make([]*ai.Part, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch {
			case part == nil:
				continue
			case part.ToolRequest != nil:
				if answered[part.ToolRequest.Ref] {
					parts = append(parts, part)
				}
			case part.IsText():
				content := stripReasoning(part.Text)
				if strings.TrimSpace(content) != "" {
					parts = append(parts, ai.NewTextPart(content))
				}
			default:
				parts = append(parts, part)
			}
		}

		if len(parts) == 0 {
			continue
		}
		out = append(out, &ai.Message{Role: msg.Role, Content: parts})
	}

	return out
}

// stripReasoning removes think-tag spans, returning only the
// user-facing content.
func stripReasoning(text string) string {
	var splitter model.ThinkSplitter
	_, content := splitter.Feed(text)
	_, rest := splitter.Flush()
	return content + rest
}
