package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frequency is the service cadence that drives base pricing.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyOnetime  Frequency = "onetime"
)

// basePrices holds the per-visit base price for each cadence.
var basePrices = map[Frequency]float64{
	FrequencyWeekly:   19.99,
	FrequencyBiweekly: 24.99,
	FrequencyMonthly:  29.99,
	FrequencyOnetime:  34.99,
}

// extraDogSurcharge is added per dog beyond the first.
const extraDogSurcharge = 5.00

// ParseFrequency maps raw input (URL params, stored metadata) to a Frequency.
// Unknown input falls back to weekly, the site's default plan.
func ParseFrequency(raw string) Frequency {
	f := Frequency(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := basePrices[f]; ok {
		return f
	}
	return FrequencyWeekly
}

// IsValid reports whether f is a recognized cadence.
func (f Frequency) IsValid() bool {
	_, ok := basePrices[f]
	return ok
}

// Label returns the human-readable plan name used on receipts.
func (f Frequency) Label() string {
	switch f {
	case FrequencyBiweekly:
		return "Bi-Weekly"
	case FrequencyMonthly:
		return "Monthly"
	case FrequencyOnetime:
		return "One-time"
	default:
		return "Weekly"
	}
}

// ParseDogCount parses a dog count best-effort. Anything malformed or
// below one prices as a single dog; pricing never rejects input.
func ParseDogCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CalculatePrice is the single pricing function for the whole flow. The
// draft review, the checkout line item and the stored quote all go through
// here; nothing else may compute a total.
func CalculatePrice(frequency Frequency, dogCount int) float64 {
	base, ok := basePrices[frequency]
	if !ok {
		base = basePrices[FrequencyWeekly]
	}
	if dogCount < 1 {
		dogCount = 1
	}
	total := base + float64(dogCount-1)*extraDogSurcharge
	return math.Round(total*100) / 100
}

// Cents converts a dollar amount to the processor's minor units.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FormatPrice renders a total the way the review step shows it.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
