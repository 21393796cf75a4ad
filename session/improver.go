package session

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoopImprover returns the reason unchanged
type NoopImprover struct{}

func (NoopImprover) ImproveReasonText(_ context.Context, raw, _ string) (string, error) {
	return raw, nil
}

// TidyImprover collapses whitespace, capitalizes the first letter and makes
// sure the reason ends with punctuation.
type TidyImprover struct{}

func (TidyImprover) ImproveReasonText(_ context.Context, raw, _ string) (string, error) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return raw, nil
	}

	first, size := utf8.DecodeRuneInString(text)
	text = string(unicode.ToUpper(first)) + text[size:]

	last, _ := utf8.DecodeLastRuneInString(text)
	if !unicode.IsPunct(last) && !unicode.IsSymbol(last) {
		text += "."
	}
	return text, nil
}
