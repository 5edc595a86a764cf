// Package phone validates listing and claimant phone numbers.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "US"

var ErrInvalidNumber = errors.New("invalid phone number")

// Region maps a free-text country into an ISO 3166 region code understood by the parser.
// Unknown or empty values fall back to DefaultRegion.
func Region(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	switch c {
	case "", "USA", "UNITED STATES", "UNITED STATES OF AMERICA", "U.S.", "U.S.A.":
		return DefaultRegion
	case "UK", "UNITED KINGDOM", "GREAT BRITAIN":
		return "GB"
	case "CANADA":
		return "CA"
	}
	if len(c) == 2 {
		return c
	}
	return DefaultRegion
}

// Normalize parses number for the given country and formats it as E.164
func Normalize(number, country string) (string, error) {
	if strings.TrimSpace(number) == "" {
		return "", ErrInvalidNumber
	}

	parsed, err := phonenumbers.Parse(number, Region(country))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Valid reports whether number parses as a real number for country
func Valid(number, country string) bool {
	_, err := Normalize(number, country)
	return err == nil
}

// Same reports whether two numbers denote the same line once normalized
func Same(a, b, country string) bool {
	na, err := Normalize(a, country)
	if err != nil {
		return false
	}
	nb, err := Normalize(b, country)
	if err != nil {
		return false
	}
	return na == nb
}
