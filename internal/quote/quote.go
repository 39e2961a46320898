// Package quote prices a hover drone reservation.
package quote

import "bitbucket.org/hovr/booking-site/internal/schema"

const (
	BaseFare           = 199
	HourlyRate         = 149
	PassengerSurcharge = 39
)

// Breakdown lists every step of a quote. Amounts are in currency units with two decimals.
type Breakdown struct {
	DurationHours      int                 `json:"duration_hours"`
	Passengers         int                 `json:"passengers"`
	Package            schema.Package      `json:"package"`
	Base               schema.RoundedFloat `json:"base"`
	Hourly             schema.RoundedFloat `json:"hourly"`
	PassengerSurcharge schema.RoundedFloat `json:"passenger_surcharge"`
	Subtotal           schema.RoundedFloat `json:"subtotal"`
	Discount           schema.RoundedFloat `json:"discount"`
	Total              schema.RoundedFloat `json:"total"`
}

// percent of the subtotal each membership tier pays
func percent(tier schema.Package) int64 {
	switch tier {
	case schema.PackagePro:
		return 85
	case schema.PackageElite:
		return 75
	default:
		return 100
	}
}

// Multiplier is the factor applied to the subtotal for tier. Unknown tiers pay 1.0.
func Multiplier(tier schema.Package) float64 {
	return float64(percent(tier)) / 100
}

// Calculate prices durationHours of flight for passengers on the given tier.
// Inputs are not validated.
func Calculate(durationHours int, passengers int, tier schema.Package) Breakdown {
	extraPassengers := passengers - 1
	if extraPassengers < 0 {
		extraPassengers = 0
	}

	base := int64(BaseFare) * 100
	hourly := int64(HourlyRate) * int64(durationHours) * 100
	surcharge := int64(PassengerSurcharge) * int64(extraPassengers) * 100
	subtotal := base + hourly + surcharge

	// subtotal is whole currency units, so cents times percent is exact; round half up to cents
	total := (subtotal*percent(tier) + 50) / 100

	return Breakdown{
		DurationHours:      durationHours,
		Passengers:         passengers,
		Package:            tier,
		Base:               schema.Cents(base),
		Hourly:             schema.Cents(hourly),
		PassengerSurcharge: schema.Cents(surcharge),
		Subtotal:           schema.Cents(subtotal),
		Discount:           schema.Cents(subtotal - total),
		Total:              schema.Cents(total),
	}
}

// Total is Calculate without the breakdown.
func Total(durationHours int, passengers int, tier schema.Package) schema.RoundedFloat {
	return Calculate(durationHours, passengers, tier).Total
}
