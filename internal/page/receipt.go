package page

import (
	"bytes"
	"fmt"
	"strings"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/tools/converting"
	"github.com/phpdave11/gofpdf"
)

// ReceiptPDF renders a confirmed booking and returns the document with its file name.
func ReceiptPDF(receipt booking.Receipt) ([]byte, string, error) {
	request := receipt.Booking
	breakdown := quote.Calculate(request.DurationHours, request.Passengers, request.Package)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Hover Orlando receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "HOVER ORLANDO BOOKING")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Confirmation code : %s", receipt.ConfirmationCode),
		fmt.Sprintf("Name              : %s", request.FullName),
		fmt.Sprintf("Email             : %s", request.Email),
		fmt.Sprintf("Phone             : %s", request.Phone),
		fmt.Sprintf("Pickup            : %s", request.PickupLocation),
		fmt.Sprintf("Dropoff           : %s", safe(converting.Unwrap(request.DropoffLocation), "-")),
		fmt.Sprintf("Date / time       : %s %s", request.Date, request.Time),
		fmt.Sprintf("Duration          : %d h", request.DurationHours),
		fmt.Sprintf("Passengers        : %d", request.Passengers),
		fmt.Sprintf("Package           : %s", request.Package),
		fmt.Sprintf("Payment method    : %s", request.PaymentMethod),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Price")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Base fare", breakdown.Base.String()},
		{fmt.Sprintf("Flight time (%d h)", breakdown.DurationHours), breakdown.Hourly.String()},
		{"Additional passengers", breakdown.PassengerSurcharge.String()},
		{"Subtotal", breakdown.Subtotal.String()},
		{fmt.Sprintf("%s membership discount", breakdown.Package), "-" + breakdown.Discount.String()},
	}
	for _, row := range rows {
		pdf.CellFormat(120, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, request.PriceTotal.String(), "T", 1, "R", false, 0, "")

	if notes := converting.Unwrap(request.Notes); notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes for pilot: "+notes, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), fmt.Sprintf("hover-receipt-%s.pdf", safeFilenamePart(receipt.ConfirmationCode)), nil
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "booking"
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
