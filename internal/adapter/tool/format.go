package tool

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// commas formats n with thousands separators (12345 -> "12,345").
func commas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// roundCommas rounds f and formats it with thousands separators.
func roundCommas(f float64) string {
	return commas(int(math.Round(f)))
}

// num renders a float without trailing zeros (58.0 -> "58", 58.5 -> "58.5").
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scoreOrNA renders a 0-100 score, treating 0 as missing.
func scoreOrNA(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}

// titleCase uppercases the first letter of each word and lowercases the
// rest ("running" -> "Running", "HIIT session" -> "Hiit Session").
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
