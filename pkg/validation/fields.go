// Package validation holds the wizard's field validators and the
// schema check run against full form payloads. The field validators
// are pure functions; their messages take precedence over schema
// messages for the same field.
package validation

import (
	"strconv"
	"strings"
)

// MinPrice is the lowest price the wizard accepts, in dollars
const MinPrice = 75000

var priceCleaner = strings.NewReplacer("$", "", ",", "")

// ValidateLocation checks for a "City, State" string. The state
// segment must resolve to a US state code or name and the city must be
// at least 2 characters. Fails closed on a missing comma.
func ValidateLocation(input string) bool {
	parts := strings.SplitN(input, ",", 2)
	if len(parts) != 2 {
		return false
	}
	city := strings.TrimSpace(parts[0])
	if len(city) < 2 {
		return false
	}
	return IsUSState(parts[1])
}

// ValidatePrice strips $ and , then requires an all-digit value of at
// least MinPrice. Empty input is invalid.
func ValidatePrice(value string) bool {
	n, ok := parsePrice(value)
	return ok && n >= MinPrice
}

// ValidatePriceRange requires both bounds to pass ValidatePrice and
// max to be strictly greater than min
func ValidatePriceRange(min, max string) bool {
	if !ValidatePrice(min) || !ValidatePrice(max) {
		return false
	}
	lo, _ := parsePrice(min)
	hi, _ := parsePrice(max)
	return hi > lo
}

func parsePrice(value string) (int, bool) {
	cleaned := priceCleaner.Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0, false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}
