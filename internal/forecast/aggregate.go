// Package forecast buckets raw forecast samples into calendar days of the
// location's local time.
package forecast

import (
	"sort"
	"time"

	"weather-lookup/internal/models"
)

// DefaultDays is the number of days returned when a non-positive count is given.
const DefaultDays = 5

const (
	middayFromHour = 11
	middayToHour   = 14
	dateLayout     = "2006-01-02"
)

// Day is one aggregated forecast day.
type Day struct {
	Date        string
	Min         float64
	Max         float64
	Icon        string
	Description string
}

// LocalTime shifts a unix timestamp by a fixed UTC offset. The result is expressed
// in UTC so its calendar fields read as local wall-clock values.
func LocalTime(timestampSeconds, offsetSeconds int64) time.Time {
	return time.Unix(timestampSeconds+offsetSeconds, 0).UTC()
}

// LocalDateKey returns the YYYY-MM-DD local date of a unix timestamp.
func LocalDateKey(timestampSeconds, offsetSeconds int64) string {
	return LocalTime(timestampSeconds, offsetSeconds).Format(dateLayout)
}

// LocalHour returns the 0-23 local hour of a unix timestamp.
func LocalHour(timestampSeconds, offsetSeconds int64) int {
	return LocalTime(timestampSeconds, offsetSeconds).Hour()
}

type bucket struct {
	min, max float64
	samples  []models.ForecastSample
}

// AggregateByDay groups samples by local date and folds each group into a Day.
// Days are returned in ascending date order, at most days of them. Each day's
// icon and description come from its first midday sample, else its first daylight
// sample, else its first sample.
func AggregateByDay(samples []models.ForecastSample, offsetSeconds int64, days int) []Day {
	if days <= 0 {
		days = DefaultDays
	}
	if len(samples) == 0 {
		return []Day{}
	}

	buckets := make(map[string]*bucket)
	keys := make([]string, 0)

	for _, sample := range samples {
		key := LocalDateKey(sample.TimestampSeconds, offsetSeconds)

		b, ok := buckets[key]
		if !ok {
			b = &bucket{min: sample.MinTemperature, max: sample.MaxTemperature}
			buckets[key] = b
			keys = append(keys, key)
		}

		b.min = min(b.min, sample.MinTemperature)
		b.max = max(b.max, sample.MaxTemperature)
		b.samples = append(b.samples, sample)
	}

	sort.Strings(keys)
	if len(keys) > days {
		keys = keys[:days]
	}

	result := make([]Day, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		rep := representative(b.samples, offsetSeconds)

		result = append(result, Day{
			Date:        key,
			Min:         b.min,
			Max:         b.max,
			Icon:        rep.Icon,
			Description: rep.Description,
		})
	}

	return result
}

func representative(samples []models.ForecastSample, offsetSeconds int64) models.ForecastSample {
	for _, s := range samples {
		hour := LocalHour(s.TimestampSeconds, offsetSeconds)
		if hour >= middayFromHour && hour <= middayToHour {
			return s
		}
	}

	for _, s := range samples {
		if s.IsDaylight {
			return s
		}
	}

	return samples[0]
}
