package core

import (
	"strings"
	"time"
)

// DateLayout is the canonical display and storage format of transaction dates.
const DateLayout = "2006-01-02"

var inputLayouts = []string{
	DateLayout,
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
}

// FormatDate renders t in the canonical layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate rewrites a date typed into the form to the canonical layout.
// Input that matches none of the known layouts is returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatDate(t)
		}
	}
	return s
}

// ValidDate reports whether s is a calendar date in the canonical layout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
