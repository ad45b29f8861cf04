// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Label is the ground-truth or predicted class of an article.
type Label string

// Label constants.
const (
	LabelFake Label = "fake"
	LabelReal Label = "real"
)

// Class indices used by the classifier and metrics: 0 = real, 1 = fake.
const (
	ClassReal = 0
	ClassFake = 1
)

// ParseLabel accepts "fake" or "real" in any case, surrounding spaces ignored.
func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelFake:
		return LabelFake, nil
	case LabelReal:
		return LabelReal, nil
	default:
		return "", fmt.Errorf("unknown label %q", s)
	}
}

// Class returns the numeric class for the label.
func (l Label) Class() int {
	if l == LabelFake {
		return ClassFake
	}
	return ClassReal
}

// LabelForClass maps a numeric class back to its label.
func LabelForClass(class int) Label {
	if class == ClassFake {
		return LabelFake
	}
	return LabelReal
}

// Article is a single labelled training example.
type Article struct {
	Date    time.Time
	Title   string
	Content string
	Source  string
	Label   Label
}

// Text joins title and content into the string the model sees.
func (a Article) Text() string {
	return a.Title + " " + a.Content
}
