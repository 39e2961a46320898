package booking

import (
	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/schema"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
)

// Outcome of the most recent submission attempt.
type Outcome struct {
	Success          bool   `json:"success"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`
	Message          string `json:"message,omitempty"`
}

func Confirmed(code string) *Outcome {
	return &Outcome{Success: true, ConfirmationCode: code}
}

func Failed(message string) *Outcome {
	return &Outcome{Success: false, Message: message}
}

// Receipt keeps the last confirmed reservation after the form has been cleared.
type Receipt struct {
	ConfirmationCode string                `json:"confirmation_code"`
	Booking          schema.BookingRequest `json:"booking"`
}

// State is everything the booking view renders. Outcome is nil while pending and before the first
// attempt. PriceTotal is the read-only quote display.
type State struct {
	Phase      Phase               `json:"phase"`
	Outcome    *Outcome            `json:"outcome"`
	PriceTotal schema.RoundedFloat `json:"price_total"`
	Form       FormSnapshot        `json:"form"`
	Receipt    *Receipt            `json:"receipt,omitempty"`
}

func (s State) Pending() bool {
	return s.Phase == PhasePending
}

// InitialState is an idle flow showing the quote of the form defaults.
func InitialState() State {
	return State{
		Phase:      PhaseIdle,
		PriceTotal: quote.Total(1, 1, schema.PackageStandard),
	}
}
