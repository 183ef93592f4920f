// Package services – reply classification.
//
// Provider replies are free text typed by hand on a phone, so classification
// is deliberately simple: normalized keyword containment, not NLP. The
// strategy sits behind the ReplyClassifier interface so it can be replaced
// (regex, interactive-button payloads, a model call) without touching the
// webhook orchestration.
package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classification is the outcome of inspecting an inbound reply body.
type Classification int

const (
	// Unrecognized means the reply matched neither keyword set; the message
	// is logged but no order transition happens.
	Unrecognized Classification = iota
	// Affirmative means the provider confirmed the order.
	Affirmative
	// Negative means the provider rejected the order.
	Negative
)

// String returns a stable label for logs and metrics.
func (c Classification) String() string {
	switch c {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "unrecognized"
	}
}

// ReplyClassifier classifies the free-text body of an inbound reply.
type ReplyClassifier interface {
	Classify(body string) Classification
}

// KeywordClassifier classifies by keyword containment over a normalized
// body. Normalization lowercases and strips diacritics, so "Sí!" matches
// the keyword "si". Matching is token-bounded: "si" does not fire inside
// "sin" or "siempre". Negative keywords win over affirmative ones so that
// "no confirmo" is read as a rejection.
//
// Ambiguous or sarcastic text will be misclassified; that is an accepted
// property of keyword matching, not a defect to paper over here.
type KeywordClassifier struct {
	affirmative []string
	negative    []string
}

// NewKeywordClassifier builds a classifier from raw keyword lists. The
// keywords are normalized once at construction; empty entries are dropped.
func NewKeywordClassifier(affirmative, negative []string) *KeywordClassifier {
	return &KeywordClassifier{
		affirmative: normalizeKeywords(affirmative),
		negative:    normalizeKeywords(negative),
	}
}

// Classify implements ReplyClassifier.
func (k *KeywordClassifier) Classify(body string) Classification {
	text := NormalizeReply(body)
	if text == "" {
		return Unrecognized
	}
	if containsAnyKeyword(text, k.negative) {
		return Negative
	}
	if containsAnyKeyword(text, k.affirmative) {
		return Affirmative
	}
	return Unrecognized
}

// NormalizeReply lowercases a reply, strips diacritics, replaces every
// non-alphanumeric rune with a space, and collapses runs of spaces. The
// result is a token stream suitable for word-boundary containment checks.
func NormalizeReply(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// stripDiacritics removes combining marks after NFD decomposition
// ("sí" → "si", "está" → "esta").
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// containsAnyKeyword reports whether any keyword occurs in text on token
// boundaries. Both text and keywords are already normalized, so a plain
// substring check over space-padded strings is enough.
func containsAnyKeyword(text string, keywords []string) bool {
	padded := " " + text + " "
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if n := NormalizeReply(kw); n != "" {
			out = append(out, n)
		}
	}
	return out
}
