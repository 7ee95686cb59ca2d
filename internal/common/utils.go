package common

import (
	"math"
	"strings"
)

// HasAny returns true if s contains any of the substrings (case-insensitive).
func HasAny(s string, subs ...string) bool {
	ls := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(ls, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeCityName lowercases a city name and collapses separators so that
// "New-York", "new_york" and "New York" all map to the same key.
func NormalizeCityName(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CityNameMatches reports whether a search term refers to a city, accepting
// a match when either normalized string contains the other. Location is the
// "City, Country" display string and is checked as well.
func CityNameMatches(search, city, location string) bool {
	ns := NormalizeCityName(search)
	nc := NormalizeCityName(city)
	nl := NormalizeCityName(location)

	return strings.Contains(nl, ns) ||
		strings.Contains(nc, ns) ||
		strings.Contains(ns, nc)
}
