package models

import (
	"strconv"
	"strings"
)

// ProviderCity is a raw geocoding result as returned by a weather repository.
type ProviderCity struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CityCandidate is a deduplicated search result shown to the caller.
type CityCandidate struct {
	ID          string  `json:"id" example:"52.52,13.41"`
	Name        string  `json:"name" example:"Berlin"`
	State       string  `json:"state,omitempty" example:"Land Berlin"`
	Country     string  `json:"country" example:"DE"`
	Lat         float64 `json:"lat" example:"52.52"`
	Lon         float64 `json:"lon" example:"13.41"`
	DisplayName string  `json:"displayName" example:"Berlin, Land Berlin, DE"`
}

// CoordinateID formats coordinates as "{lat},{lon}" using the shortest decimal form.
func CoordinateID(lat, lon float64) string {
	return formatCoordinate(lat) + "," + formatCoordinate(lon)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DisplayName joins the non-empty name, state and country parts.
func (c ProviderCity) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.State, c.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// MapCityCandidates converts geocoding results into candidates. Entries sharing the
// same coordinates collapse into the first one; input order is kept.
func MapCityCandidates(entries []ProviderCity) []CityCandidate {
	seen := make(map[string]struct{}, len(entries))
	candidates := make([]CityCandidate, 0, len(entries))

	for _, entry := range entries {
		id := CoordinateID(entry.Lat, entry.Lon)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		candidates = append(candidates, CityCandidate{
			ID:          id,
			Name:        entry.Name,
			State:       entry.State,
			Country:     entry.Country,
			Lat:         entry.Lat,
			Lon:         entry.Lon,
			DisplayName: entry.DisplayName(),
		})
	}

	return candidates
}
