package render

import (
	"fmt"
	"io"
	"strings"

	"weather-forecaster/models"
)

const tableRuleWidth = 45

// WriteTable prints the daily averages of a summary as a fixed-width table
func WriteTable(w io.Writer, s models.DailySummary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\nAverage Temperature Forecast (%s):\n", s.City)
	fmt.Fprintf(&b, "%-12s %-15s %-18s\n", "Date", "Avg Temp (°C)", "Wind Speed (m/s)")
	b.WriteString(strings.Repeat("-", tableRuleWidth))
	b.WriteString("\n")

	for _, d := range s.Days {
		fmt.Fprintf(&b, "%-12s %-15.1f %-18.1f\n", d.Day, d.AvgTemp, d.AvgWind)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}
