package agent

import (
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"
)

// historyBudget caps the estimated tokens handed to a model step.
// Conservative default sized for the Gemini flash context window.
const historyBudget = 8000

// estimateTokens gives a rough token count: rune count divided by 2,
// conservative for both English and CJK text.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 2
}

func estimateMessagesTokens(msgs []*ai.Message) int {
	total := 0
	for _, msg := range msgs {
		for _, part := range msg.Content {
			if part != nil {
				total += estimateTokens(part.Text)
			}
		}
	}
	return total
}

// truncateHistory drops the oldest messages until the estimate fits
// the budget. The most recent message always survives, even when it
// alone exceeds the budget.
func truncateHistory(msgs []*ai.Message, budget int) []*ai.Message {
	if len(msgs) == 0 || estimateMessagesTokens(msgs) <= budget {
		return msgs
	}

	start := len(msgs) - 1
	total := estimateMessagesTokens(msgs[start:])
	for start > 0 {
		next := estimateMessagesTokens(msgs[start-1 : start])
		if total+next > budget {
			break
		}
		total += next
		start--
	}

	return msgs[start:]
}
