package aggregate

import (
	"time"

	"weather-forecaster/models"
)

const (
	// DefaultMaxDays is the number of distinct days kept in a summary
	DefaultMaxDays = 5

	// DayLayout formats a day key as DD/MM/YYYY
	DayLayout = "02/01/2006"
)

// Aggregator reduces 3-hour forecast samples to per-day statistics
type Aggregator struct {
	loc     *time.Location
	maxDays int
}

// New creates an aggregator that buckets samples by calendar day in loc.
// A nil loc means local time, maxDays <= 0 means DefaultMaxDays.
func New(loc *time.Location, maxDays int) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	return &Aggregator{
		loc:     loc,
		maxDays: maxDays,
	}
}

// dayBucket accumulates the readings seen for one day
type dayBucket struct {
	sumTemp float64
	maxTemp float64
	minTemp float64
	sumWind float64
	count   int
}

func (b *dayBucket) add(s models.Sample) {
	if b.count == 0 {
		b.maxTemp = s.Main.TempMax
		b.minTemp = s.Main.TempMin
	} else {
		if s.Main.TempMax > b.maxTemp {
			b.maxTemp = s.Main.TempMax
		}
		if s.Main.TempMin < b.minTemp {
			b.minTemp = s.Main.TempMin
		}
	}
	b.sumTemp += s.Main.Temp
	b.sumWind += s.Wind.Speed
	b.count++
}

// DayKey formats the calendar day of a sample
func (a *Aggregator) DayKey(s models.Sample) string {
	return s.Time(a.loc).Format(DayLayout)
}

// Daily groups samples by day key, in the order each day was first seen, and
// summarises the first maxDays of them. Partial days are averaged over
// whatever samples they have.
func (a *Aggregator) Daily(city string, samples []models.Sample) models.DailySummary {
	buckets := make(map[string]*dayBucket)
	var order []string

	for _, s := range samples {
		day := a.DayKey(s)
		b, ok := buckets[day]
		if !ok {
			// Days past the cutoff are dropped, later samples of kept days are not
			if len(order) >= a.maxDays {
				continue
			}
			b = &dayBucket{}
			buckets[day] = b
			order = append(order, day)
		}
		b.add(s)
	}

	summary := models.DailySummary{
		City: city,
		Days: make([]models.DaySummary, 0, len(order)),
	}
	for _, day := range order {
		b := buckets[day]
		summary.Days = append(summary.Days, models.DaySummary{
			Day:     day,
			AvgTemp: b.sumTemp / float64(b.count),
			MaxTemp: b.maxTemp,
			MinTemp: b.minTemp,
			AvgWind: b.sumWind / float64(b.count),
			Samples: b.count,
		})
	}
	return summary
}
