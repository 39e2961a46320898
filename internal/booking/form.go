package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/schema"
	"bitbucket.org/hovr/booking-site/internal/tools/converting"
)

// FormSnapshot holds the raw text of every booking form field at the moment of an event.
// Required fields are enforced when binding, the flow itself does not validate.
type FormSnapshot struct {
	FullName        string `form:"full_name" json:"full_name" binding:"required"`
	Email           string `form:"email" json:"email" binding:"required,email"`
	Phone           string `form:"phone" json:"phone" binding:"required"`
	PickupLocation  string `form:"pickup_location" json:"pickup_location" binding:"required"`
	DropoffLocation string `form:"dropoff_location" json:"dropoff_location"`
	Date            string `form:"date" json:"date" binding:"required"`
	Time            string `form:"time" json:"time" binding:"required"`
	DurationHours   string `form:"duration_hours" json:"duration_hours"`
	Passengers      string `form:"passengers" json:"passengers"`
	Package         string `form:"package" json:"package"`
	Notes           string `form:"notes" json:"notes"`
	PriceTotal      string `form:"price_total" json:"price_total"`
	PaymentMethod   string `form:"payment_method" json:"payment_method"`
}

// Selection reads the fields the quote depends on. Unparsable or absent numbers become 1.
func (s FormSnapshot) Selection() (durationHours int, passengers int, tier schema.Package) {
	return parseWhole(s.DurationHours), parseWhole(s.Passengers), schema.ParsePackage(strings.TrimSpace(s.Package))
}

func (s FormSnapshot) Quote() quote.Breakdown {
	return quote.Calculate(s.Selection())
}

// BookingRequest builds the checkout payload. price_total always comes from the quote,
// never from the submitted text.
func (s FormSnapshot) BookingRequest() (schema.BookingRequest, error) {
	date, err := schema.ParseDate(s.Date)
	if err != nil {
		return schema.BookingRequest{}, fmt.Errorf("invalid date %q: %w", s.Date, err)
	}

	clock, err := schema.ParseClock(s.Time)
	if err != nil {
		return schema.BookingRequest{}, fmt.Errorf("invalid time %q: %w", s.Time, err)
	}

	durationHours, passengers, tier := s.Selection()

	return schema.BookingRequest{
		FullName:        strings.TrimSpace(s.FullName),
		Email:           strings.TrimSpace(s.Email),
		Phone:           strings.TrimSpace(s.Phone),
		PickupLocation:  strings.TrimSpace(s.PickupLocation),
		DropoffLocation: converting.NilIfBlank(s.DropoffLocation),
		Date:            date,
		Time:            clock,
		DurationHours:   durationHours,
		Passengers:      passengers,
		Package:         tier,
		Notes:           converting.NilIfBlank(s.Notes),
		PriceTotal:      quote.Total(durationHours, passengers, tier),
		PaymentMethod:   schema.ParsePaymentMethod(strings.TrimSpace(s.PaymentMethod)),
	}, nil
}

// SubmittedPriceTotal is the decimal the visitor's display field carried, if any.
func (s FormSnapshot) SubmittedPriceTotal() (schema.RoundedFloat, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s.PriceTotal), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return schema.RoundedFloat(math.Round(value*100) / 100), true
}

// parseWhole reads a whole number the lenient way: leading integer part of a decimal is kept,
// anything unparsable is 1.
func parseWhole(s string) int {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}

	return 1
}
