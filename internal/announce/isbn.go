package announce

import "strings"

var isbnSeparators = strings.NewReplacer("-", "", " ", "")

// NormalizeISBN strips hyphens and spaces and requires 10 or 13 digits.
func NormalizeISBN(raw string) (string, error) {
	s := isbnSeparators.Replace(strings.TrimSpace(raw))
	if len(s) != 10 && len(s) != 13 {
		return "", ErrInvalidISBN
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidISBN
		}
	}
	return s, nil
}
