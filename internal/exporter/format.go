package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// dateLayout is the date format used in all exported tables.
const dateLayout = "2006-01-02"

// formatFloat formats a float64 value for CSV output with exactly 4 decimal
// places, so estimates and their standard errors align column-wise.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatDate formats a date for CSV output
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// formatPValue formats a p-value, keeping enough precision for small values
// to stay distinguishable from zero.
func formatPValue(p float64) string {
	if p != 0 && p < 0.0001 {
		return strconv.FormatFloat(p, 'e', 2, 64)
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}
