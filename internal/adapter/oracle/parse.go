package oracle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseBool interprets a model answer as true or false. Models do not
// always obey "one word only", so the first recognizable token wins.
func ParseBool(text string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, token := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		switch token {
		case "true", "yes":
			return true, nil
		case "false", "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("no boolean answer in %q", text)
}

// ParseScalar extracts the first number from a model answer.
func ParseScalar(text string) (float64, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" || f == "-" {
			continue
		}
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("no number in %q", text)
}
