// Package money holds the derived-amount calculation and the display
// formatting used everywhere a duration or an amount is shown.
package money

import (
	"fmt"
	"math"
	"time"
)

// Currency is a cosmetic formatting lookup, not a unit of conversion.
type Currency struct {
	Code   string
	Symbol string
	Name   string
}

// Currencies is the selectable catalogue, in display order.
var Currencies = []Currency{
	{Code: "ILS", Symbol: "₪", Name: "Israeli Shekel"},
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar"},
}

// Symbol returns the display symbol for a currency code, falling back to
// the code itself for anything not in the catalogue.
func Symbol(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return code
}

// Amount converts a duration in minutes and an hourly rate into a monetary
// amount. Pure: amount = minutes/60 * rate.
func Amount(durationMinutes, hourlyRate float64) float64 {
	return durationMinutes / 60 * hourlyRate
}

// DurationMinutes returns the fractional minutes between two epoch-ms
// timestamps. Spans that come out negative (clock skew) clamp to zero.
func DurationMinutes(startMillis, endMillis int64) float64 {
	if endMillis < startMillis {
		return 0
	}
	return float64(endMillis-startMillis) / 60000
}

// FormatAmount renders an amount with its currency symbol, two decimals.
func FormatAmount(amount float64, currencyCode string) string {
	return fmt.Sprintf("%s%.2f", Symbol(currencyCode), amount)
}

// FormatMinutes renders a minute count as "2h 5m", "45m" or "3h".
func FormatMinutes(minutes float64) string {
	hours := int(minutes) / 60
	mins := int(math.Round(math.Mod(minutes, 60)))
	if mins == 60 {
		hours++
		mins = 0
	}

	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// FormatElapsed renders a live duration as HH:MM:SS, or MM:SS under an hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
