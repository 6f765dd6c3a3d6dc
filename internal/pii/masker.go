// Package pii strips personally identifying fragments from free text before
// it is sent to an external model or stored in the vector index.
package pii

import (
	"regexp"
	"strings"
)

const (
	EmailPlaceholder = "[email hidden]"
	PhonePlaceholder = "[phone hidden]"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[A-Za-z]{2,}`)

// A phone is 7 to 15 units of an optional '+', one digit and an optional
// single space or dash, with no digit directly before or after it.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Mask replaces email addresses and phone-like digit runs with placeholders.
// Blank input is returned unchanged.
func Mask(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	masked := emailPattern.ReplaceAllString(text, EmailPlaceholder)
	return maskPhones(masked)
}

func maskPhones(text string) string {
	var b strings.Builder
	last := 0
	for start := 0; start < len(text); {
		if start > 0 && isDigit(text[start-1]) {
			start++
			continue
		}
		end := phoneEnd(text, start)
		if end < 0 {
			start++
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(PhonePlaceholder)
		last = end
		start = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// phoneEnd returns the end of the phone number starting at start, or -1.
// Longer runs are tried first and a unit gives back its separator before a
// shorter run is tried, so "0123456789 0123456789" yields two numbers.
func phoneEnd(text string, start int) int {
	var m phoneMatcher
	m.text = text
	m.base = start
	return m.match(start, 0)
}

type phoneMatcher struct {
	text string
	base int
	// failed[pos-base][units] marks states already known not to match.
	failed [3*maxPhoneDigits + 1][maxPhoneDigits + 1]bool
}

func (m *phoneMatcher) match(pos, units int) int {
	if m.failed[pos-m.base][units] {
		return -1
	}
	if units < maxPhoneDigits {
		next := pos
		if next < len(m.text) && m.text[next] == '+' {
			next++
		}
		if next < len(m.text) && isDigit(m.text[next]) {
			next++
			if next < len(m.text) && isSeparator(m.text[next]) {
				if end := m.match(next+1, units+1); end >= 0 {
					return end
				}
			}
			if end := m.match(next, units+1); end >= 0 {
				return end
			}
		}
	}
	if units >= minPhoneDigits && (pos == len(m.text) || !isDigit(m.text[pos])) {
		return pos
	}
	m.failed[pos-m.base][units] = true
	return -1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\r', '\f', '-':
		return true
	}
	return false
}
