package document

import (
	"strconv"
	"strings"
	"unicode"
)

// ContainsCJK reports whether text carries CJK ideographs, including the
// extension-A and compatibility blocks.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// IsNormalizedStem reports whether a filename stem follows the
// Author-Year-Title convention: hyphen-delimited, author segment alphabetic
// with no digits, year a four-digit token in [1900, 2099], and a non-empty
// title remainder.
func IsNormalizedStem(stem string) bool {
	if ContainsCJK(stem) {
		return false
	}
	parts := strings.Split(stem, "-")
	if len(parts) < 3 {
		return false
	}
	author, year, title := parts[0], parts[1], strings.Join(parts[2:], "-")

	if len(year) != 4 {
		return false
	}
	value, err := strconv.Atoi(year)
	if err != nil || value < 1900 || value > 2099 {
		return false
	}
	if strings.ContainsFunc(author, unicode.IsDigit) {
		return false
	}
	if !strings.ContainsFunc(author, unicode.IsLetter) {
		return false
	}
	if !strings.ContainsFunc(title, unicode.IsLetter) {
		return false
	}
	return true
}

// IsASCII reports whether name contains only ASCII characters, the safe set
// the external engine accepts on its command line.
func IsASCII(name string) bool {
	for _, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
