package service

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"rental/internal/calendar"
	"rental/internal/domain"
)

// ReceiptService renders booking confirmations as PDF documents.
type ReceiptService struct{}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// ReceiptLines returns the printable body of a confirmation, one line per entry.
func (s *ReceiptService) ReceiptLines(conf *domain.BookingConfirmation) []string {
	return []string{
		"Booking ID     : " + conf.BookingID,
		"Booked at      : " + conf.BookedAt.Format("Jan 02, 2006 3:04 PM"),
		"",
		"Vehicle        : " + conf.Vehicle.Name + " (" + string(conf.Vehicle.Type) + ")",
		"Start date     : " + calendar.FormatLong(conf.Range.Start),
		"End date       : " + calendar.FormatLong(conf.Range.End),
		fmt.Sprintf("Duration       : %d %s", conf.TotalDays, plural(conf.TotalDays, "day", "days")),
		"",
		"Name           : " + conf.Customer.Name,
		"Phone          : " + conf.Customer.Phone,
		"Email          : " + conf.Customer.Email,
		"Driver contact : " + conf.Vehicle.DriverContact,
		"",
		"Payment method : " + string(conf.PaymentMethod),
		"Payment status : " + string(conf.PaymentStatus),
	}
}

// PaymentNote is the closing instruction printed under the total.
func (s *ReceiptService) PaymentNote(method domain.PaymentMethod) string {
	if method == domain.PaymentMethodCashOnDelivery {
		return "Have the exact amount ready in cash."
	}
	return "Your payment has been processed successfully."
}

// Render produces the receipt PDF for a confirmation.
func (s *ReceiptService) Render(conf *domain.BookingConfirmation) ([]byte, error) {
	if conf == nil {
		return nil, ErrNotConfirmed
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+conf.BookingID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Courier", "", 11)
	for _, line := range s.ReceiptLines(conf) {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+conf.TotalPrice.String())
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please save your Booking ID for future reference. "+
		"Contact the driver 24 hours before your booking date and carry a valid ID for verification. "+
		s.PaymentNote(conf.PaymentMethod), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", conf.BookingID, err)
	}
	return buf.Bytes(), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
