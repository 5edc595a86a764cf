package service

import "strings"

// FormatAddress joins the non-empty parts as "street, city, state postal, country"
func FormatAddress(street, city, state, postalCode, country string) string {
	stateZip := strings.TrimSpace(strings.TrimSpace(state) + " " + strings.TrimSpace(postalCode))

	parts := make([]string, 0, 4)
	for _, p := range []string{street, city, stateZip, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CityState returns "city, state", or "" when either is missing
func CityState(city, state string) string {
	city, state = strings.TrimSpace(city), strings.TrimSpace(state)
	if city == "" || state == "" {
		return ""
	}
	return city + ", " + state
}
