// Package page projects a booking state into the rendered site.
package page

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/schema"
	"github.com/google/go-querystring/query"
)

const (
	SubmitLabel        = "Confirm & Checkout"
	PendingSubmitLabel = "Processing..."
	ReceiptPath        = "/booking/receipt"

	MaxDurationHours = 12
	MaxPassengers    = 4

	exampleDurationHours = 2
	examplePassengers    = 1
)

type Feature struct {
	Title       string
	Description string
}

var Features = []Feature{
	{"Member Priority", "Instant access, preferred launch windows, and concierge routing."},
	{"Safety First", "Certified pilots, redundant systems, and real-time monitoring."},
	{"Eco Flight", "Low-noise electric system designed for clean urban air."},
}

// Preselect is the optional form preset carried by the page query, e.g. the tier links.
type Preselect struct {
	DurationHours string `form:"duration_hours" url:"duration_hours,omitempty"`
	Passengers    string `form:"passengers" url:"passengers,omitempty"`
	Package       string `form:"package" url:"package,omitempty"`
}

func (p Preselect) empty() bool {
	return p.DurationHours == "" && p.Passengers == "" && p.Package == ""
}

// Link is the page URL applying the preset, anchored at the booking form.
func (p Preselect) Link() string {
	// only fails for a non-struct
	values, _ := query.Values(p)
	if encoded := values.Encode(); encoded != "" {
		return "/?" + encoded + "#booking"
	}
	return "/#booking"
}

type Tier struct {
	Package         schema.Package
	DiscountPercent int
	Example         quote.Breakdown
	Link            string
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// View is everything the page template renders.
type View struct {
	Year     int
	Features []Feature
	Tiers    []Tier

	Form           booking.FormSnapshot
	Durations      []Option
	Passengers     []Option
	Packages       []Option
	PaymentMethods []Option
	PriceTotal     string

	Pending     bool
	SubmitLabel string

	// at most one of Confirmation and Failure is set
	Confirmation string
	Failure      string
	ReceiptURL   string
}

// NewView projects state. A preset only applies to an idle form and reprices it.
func NewView(state booking.State, preselect Preselect, now time.Time) View {
	form := state.Form
	priceTotal := state.PriceTotal

	if !state.Pending() && !preselect.empty() {
		if preselect.DurationHours != "" {
			form.DurationHours = preselect.DurationHours
		}
		if preselect.Passengers != "" {
			form.Passengers = preselect.Passengers
		}
		if preselect.Package != "" {
			form.Package = preselect.Package
		}
		priceTotal = form.Quote().Total
	}

	durationHours, passengers, tier := form.Selection()

	view := View{
		Year:           now.Year(),
		Features:       Features,
		Tiers:          tiers(),
		Form:           form,
		Durations:      countOptions(MaxDurationHours, durationHours, "hour"),
		Passengers:     countOptions(MaxPassengers, passengers, "passenger"),
		Packages:       packageOptions(tier),
		PaymentMethods: paymentOptions(schema.ParsePaymentMethod(strings.TrimSpace(form.PaymentMethod))),
		PriceTotal:     priceTotal.String(),
		Pending:        state.Pending(),
		SubmitLabel:    SubmitLabel,
	}

	if view.Pending {
		view.SubmitLabel = PendingSubmitLabel
		return view
	}

	switch outcome := state.Outcome; {
	case outcome == nil:
	case outcome.Success:
		view.Confirmation = outcome.ConfirmationCode
		if state.Receipt != nil && state.Receipt.ConfirmationCode == outcome.ConfirmationCode {
			view.ReceiptURL = ReceiptPath
		}
	default:
		view.Failure = outcome.Message
	}

	return view
}

func tiers() []Tier {
	result := make([]Tier, 0, len(schema.Packages))
	for _, p := range schema.Packages {
		result = append(result, Tier{
			Package:         p,
			DiscountPercent: int(100 - quote.Multiplier(p)*100 + 0.5),
			Example:         quote.Calculate(exampleDurationHours, examplePassengers, p),
			Link:            Preselect{Package: string(p)}.Link(),
		})
	}
	return result
}

func countOptions(max int, selected int, unit string) []Option {
	options := make([]Option, 0, max)
	for n := 1; n <= max; n++ {
		label := fmt.Sprintf("%d %s", n, unit)
		if n > 1 {
			label += "s"
		}

		options = append(options, Option{
			Value:    strconv.Itoa(n),
			Label:    label,
			Selected: n == selected,
		})
	}
	return options
}

func packageOptions(selected schema.Package) []Option {
	options := make([]Option, 0, len(schema.Packages))
	for _, p := range schema.Packages {
		options = append(options, Option{
			Value:    string(p),
			Label:    string(p) + " Membership",
			Selected: p == selected,
		})
	}
	return options
}

func paymentOptions(selected schema.PaymentMethod) []Option {
	return []Option{
		{Value: string(schema.PaymentMethodCard), Label: "Card", Selected: selected == schema.PaymentMethodCard},
		{Value: string(schema.PaymentMethodWallet), Label: "Wallet", Selected: selected == schema.PaymentMethodWallet},
	}
}
