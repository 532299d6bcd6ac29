package model

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ThinkSplitter separates reasoning from answer text in a model stream.
// Reasoning-tuned models wrap their chain of thought in <think> tags;
// the splitter routes the enclosed text to the reasoning channel and
// everything else to content, holding back partial tags that straddle
// chunk boundaries.
//
// Not safe for concurrent use; one splitter per stream.
type ThinkSplitter struct {
	pending string
	inThink bool
}

// Feed consumes one chunk and returns the reasoning and content text it
// completes. Either return value may be empty.
func (s *ThinkSplitter) Feed(chunk string) (reasoning, content string) {
	s.pending += chunk

	var r, c strings.Builder
	for s.pending != "" {
		if s.inThink {
			if !s.consumeUntil(thinkClose, &r) {
				return r.String(), c.String()
			}
			s.inThink = false
			continue
		}
		if !s.consumeUntil(thinkOpen, &c) {
			return r.String(), c.String()
		}
		s.inThink = true
	}
	return r.String(), c.String()
}

// Flush returns any held-back text. A partial tag at stream end was not
// a tag after all; route it to whichever side was active.
func (s *ThinkSplitter) Flush() (reasoning, content string) {
	out := s.pending
	s.pending = ""
	if out == "" {
		return "", ""
	}
	if s.inThink {
		return out, ""
	}
	return "", out
}

// consumeUntil moves text from pending into out up to the given tag.
// When the tag is found it is swallowed and the result is true.
// Otherwise everything safe is emitted, keeping only a suffix that could
// still be the start of the tag.
func (s *ThinkSplitter) consumeUntil(tag string, out *strings.Builder) bool {
	if idx := strings.Index(s.pending, tag); idx >= 0 {
		out.WriteString(s.pending[:idx])
		s.pending = s.pending[idx+len(tag):]
		return true
	}

	keep := overlapSuffix(s.pending, tag)
	emit := s.pending[:len(s.pending)-keep]
	out.WriteString(emit)
	s.pending = s.pending[len(emit):]
	return false
}

// overlapSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func overlapSuffix(s, tag string) int {
	max := min(len(s), len(tag)-1)
	for n := max; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
