// Package summarize implements a heuristic extractive text summarizer.
// Summarize is deterministic and side-effect-free.
package summarize

import (
	"fmt"
	"strings"
)

// ConciseMessage is returned when the input is too short to summarize.
const ConciseMessage = "Text is already concise. No summarization needed."

// Sentences shorter than this (after trimming) are discarded as fragments.
const minSentenceLen = 20

// Sentences containing any of these are preferred for extraction.
var keywords = []string{
	"important", "key", "main", "significant", "crucial",
	"essential", "summary", "conclusion",
}

// Result is the outcome of a summarization.
type Result struct {
	Summary       string
	Concise       bool
	OriginalWords int
	SummaryWords  int
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) > minSentenceLen {
			out = append(out, s)
		}
	}
	return out
}

func hasKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Summarize produces an extractive bulleted summary of free text.
//
// Selection: the first sentence, then up to two keyword-bearing sentences
// (or the middle sentence when none exist), then the last sentence. The
// chosen set is deduplicated by exact sentence text and composed in
// selection order. Texts with three or fewer qualifying sentences come back
// marked Concise with a fixed message.
func Summarize(text string) Result {
	originalWords := len(strings.Fields(text))
	sentences := splitSentences(text)

	if len(sentences) <= 3 {
		return Result{
			Summary:       ConciseMessage,
			Concise:       true,
			OriginalWords: originalWords,
		}
	}

	first := sentences[0]
	middle := sentences[len(sentences)/2]
	last := sentences[len(sentences)-1]

	var important []string
	for _, s := range sentences {
		if hasKeyword(s) {
			important = append(important, s)
			if len(important) == 2 {
				break
			}
		}
	}

	seen := make(map[string]bool)
	var chosen []string
	pick := func(s string) {
		if !seen[s] {
			seen[s] = true
			chosen = append(chosen, s)
		}
	}

	pick(first)
	if len(important) > 0 {
		for _, s := range important {
			pick(s)
		}
	} else {
		pick(middle)
	}
	pick(last)

	var b strings.Builder
	b.WriteString("## Key Points:\n\n")
	for _, s := range chosen {
		fmt.Fprintf(&b, "• %s.\n\n", s)
	}
	summaryWords := len(strings.Fields(b.String()))
	fmt.Fprintf(&b, "\n**Original Length:** %d words\n**Summary Length:** ~%d words", originalWords, summaryWords)

	return Result{
		Summary:       b.String(),
		OriginalWords: originalWords,
		SummaryWords:  summaryWords,
	}
}
