package models

import "strings"

// Units selects the unit system requested from upstream providers.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits lowercases the raw value and defaults an empty one to metric.
func ParseUnits(raw string) Units {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return UnitsMetric
	}
	return Units(raw)
}
