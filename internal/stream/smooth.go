package stream

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Smoother is a Sink decorator that re-chunks text-delta and reasoning
// events at word granularity. Model chunks arrive at arbitrary split
// points; the smoother buffers them and forwards whole words with their
// trailing whitespace, so no word and no multi-byte rune is ever split
// across events.
//
// All other event types flush the pending text first, preserving relative
// order, then pass through unchanged.
type Smoother struct {
	next Sink

	// Separate buffers: text and reasoning deltas interleave on the
	// reasoning model and must not bleed into each other.
	pending map[EventType]*strings.Builder
}

// NewSmoother wraps next with word-granularity re-chunking.
func NewSmoother(next Sink) *Smoother {
	return &Smoother{
		next: next,
		pending: map[EventType]*strings.Builder{
			EventTextDelta: {},
			EventReasoning: {},
		},
	}
}

// Write buffers text-like events and forwards everything else after a
// flush.
func (s *Smoother) Write(ctx context.Context, ev Event) error {
	buf, ok := s.pending[ev.Type]
	if !ok {
		if err := s.Flush(ctx); err != nil {
			return err
		}
		return s.next.Write(ctx, ev)
	}

	text, _ := ev.Content.(string)
	buf.WriteString(text)

	chunk, rest := splitWords(buf.String())
	if chunk == "" {
		return nil
	}
	buf.Reset()
	buf.WriteString(rest)
	return s.next.Write(ctx, Event{Type: ev.Type, Content: chunk})
}

// Flush forwards any buffered partial words. Call once after the
// producing step completes; the final fragment has no trailing
// whitespace to trigger emission on its own.
func (s *Smoother) Flush(ctx context.Context) error {
	// Reasoning precedes text within a step.
	for _, typ := range []EventType{EventReasoning, EventTextDelta} {
		buf := s.pending[typ]
		if buf.Len() == 0 {
			continue
		}
		chunk := buf.String()
		buf.Reset()
		if err := s.next.Write(ctx, Event{Type: typ, Content: chunk}); err != nil {
			return err
		}
	}
	return nil
}

// splitWords splits s at the last whitespace boundary: chunk holds every
// completed word including its trailing whitespace, rest holds the
// trailing partial word. Operates on runes so multi-byte characters are
// never cut.
func splitWords(s string) (chunk, rest string) {
	end := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			end = i + utf8.RuneLen(r)
		}
	}
	return s[:end], s[end:]
}
