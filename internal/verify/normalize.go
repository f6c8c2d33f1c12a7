package verify

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var numericPart = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// dateFormats is the ordered list of literal layouts institutions are
// known to print. First parse wins.
var dateFormats = []string{
	"2006-01-02 15:04",
	"02-01-2006 15:04:05",
	"02/01/2006, 3:04:05 PM",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeAmount coerces a raw monetary string to a decimal. Thousands
// separators and trailing unit words ("1,000.00 Birr") are stripped.
// Text with no parseable number is absent, not an error.
func NormalizeAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	match := numericPart.FindString(cleaned)
	if match == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// NormalizeDate parses a raw timestamp against the known layouts.
func NormalizeDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeName title-cases a personal or institution name:
// "JOHN DOE" becomes "John Doe", regardless of input casing.
func NormalizeName(raw string) string {
	tokens := strings.Fields(strings.ToLower(raw))
	for i, token := range tokens {
		runes := []rune(token)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}
