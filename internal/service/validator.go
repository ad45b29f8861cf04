package service

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Veraticus/newscheck/internal/common"
)

// Default length bounds in runes.
const (
	DefaultMinLength = 10
	DefaultMaxLength = 50000
)

// Validator strips markup from submitted text and enforces length bounds.
type Validator struct {
	policy    *bluemonday.Policy
	minLength int
	maxLength int
}

// NewValidator creates a validator. Non-positive bounds fall back to the defaults.
func NewValidator(minLength, maxLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{
		policy:    bluemonday.StrictPolicy(),
		minLength: minLength,
		maxLength: maxLength,
	}
}

// MinLength is the shortest accepted text in runes.
func (v *Validator) MinLength() int { return v.minLength }

// MaxLength is the longest accepted text in runes.
func (v *Validator) MaxLength() int { return v.maxLength }

// Clean returns the plain text of input, or a *common.ValidationError when it
// is empty, too short or too long after cleaning.
func (v *Validator) Clean(input string) (string, error) {
	// StrictPolicy escapes entities, undo that so "&" stays "&".
	text := strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(input)))

	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "", common.NewValidationError("text", "empty text provided")
	case n < v.minLength:
		return "", common.NewValidationError("text", fmt.Sprintf("text too short (minimum %d characters)", v.minLength))
	case n > v.maxLength:
		return "", common.NewValidationError("text", fmt.Sprintf("text too long (maximum %d characters)", v.maxLength))
	}
	return text, nil
}
