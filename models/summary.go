package models

// DaySummary holds the aggregates for one calendar day
type DaySummary struct {
	Day     string  `json:"day"`     // DD/MM/YYYY
	AvgTemp float64 `json:"avgTemp"` // in Celsius
	MaxTemp float64 `json:"maxTemp"` // in Celsius
	MinTemp float64 `json:"minTemp"` // in Celsius
	AvgWind float64 `json:"avgWind"` // in m/s
	Samples int     `json:"samples"` // number of 3-hour samples aggregated
}

// DailySummary is the per-day reduction of a city's forecast.
// Days are kept in the order their first sample appeared.
type DailySummary struct {
	City string       `json:"city"`
	Days []DaySummary `json:"days"`
}

// Len returns the number of days in the summary
func (s DailySummary) Len() int {
	return len(s.Days)
}

// Lookup returns the summary for a day label
func (s DailySummary) Lookup(day string) (DaySummary, bool) {
	for _, d := range s.Days {
		if d.Day == day {
			return d, true
		}
	}
	return DaySummary{}, false
}

// Labels returns the day labels in summary order
func (s DailySummary) Labels() []string {
	labels := make([]string, len(s.Days))
	for i, d := range s.Days {
		labels[i] = d.Day
	}
	return labels
}

func (s DailySummary) column(get func(DaySummary) float64) []float64 {
	values := make([]float64, len(s.Days))
	for i, d := range s.Days {
		values[i] = get(d)
	}
	return values
}

// AvgTemps returns the average temperatures in summary order
func (s DailySummary) AvgTemps() []float64 {
	return s.column(func(d DaySummary) float64 { return d.AvgTemp })
}

// MaxTemps returns the maximum temperatures in summary order
func (s DailySummary) MaxTemps() []float64 {
	return s.column(func(d DaySummary) float64 { return d.MaxTemp })
}

// MinTemps returns the minimum temperatures in summary order
func (s DailySummary) MinTemps() []float64 {
	return s.column(func(d DaySummary) float64 { return d.MinTemp })
}

// AvgWinds returns the average wind speeds in summary order
func (s DailySummary) AvgWinds() []float64 {
	return s.column(func(d DaySummary) float64 { return d.AvgWind })
}
