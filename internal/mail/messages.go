package mail

import (
	"fmt"
	"strings"

	"github.com/leaf-logistics/rfq-service/internal/models"
)

// RFQInviteBody builds the invitation text sent to a selected vendor.
func RFQInviteBody(rfq *models.RFQ, vendorName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", vendorName)
	fmt.Fprintf(&b, "You are one of the selected vendors for %s.\n", rfq.DisplayNumber())
	fmt.Fprintf(&b, "Required Trucks: %d\n", rfq.RequiredTrucks)
	fmt.Fprintf(&b, "Initial Quote End Time: %s\n", rfq.InitialQuoteEndTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Evaluation Period End Time: %s\n\n", rfq.EvaluationEndTime.Format("2006-01-02 15:04"))
	b.WriteString("Please log in to your account to submit your quote.\n\nBest regards,\nTeam LEAF.\n")
	return b.String()
}

// ReminderBody builds the participation reminder text.
func ReminderBody(rfq *models.RFQ, vendorName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", vendorName)
	fmt.Fprintf(&b, "This is a reminder to participate in the RFQ process for RFQ Number: %s.\n", rfq.DisplayNumber())
	b.WriteString("Please submit your quote at your earliest convenience.\n\nBest regards,\nTeam LEAF.\n")
	return b.String()
}

// QuoteReceivedBody builds the internal notice sent when a quote arrives or is revised.
func QuoteReceivedBody(rfq *models.RFQ, q *models.Quote, revised bool) string {
	verb := "submitted"
	if revised {
		verb = "updated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "A quote has been %s for %s.\n", verb, rfq.DisplayNumber())
	fmt.Fprintf(&b, "Vendor: %s\n", q.VendorId)
	fmt.Fprintf(&b, "Price: %g\n", q.Price)
	fmt.Fprintf(&b, "Number of Trucks: %d\n", q.NumberOfTrucks)
	if q.ValidityPeriod != "" {
		fmt.Fprintf(&b, "Validity Period: %s\n", q.ValidityPeriod)
	}
	if q.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", q.Message)
	}
	return b.String()
}

// FinalAllocationBody builds the per-vendor finalization notice.
func FinalAllocationBody(rfq *models.RFQ, vendorName string, line models.AllocationLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", vendorName)
	fmt.Fprintf(&b, "The RFQ %s has been finalized. Here are your allocation details:\n", rfq.DisplayNumber())
	fmt.Fprintf(&b, "Price: %g\n", line.Price)
	fmt.Fprintf(&b, "Trucks Allotted: %d\n", line.TrucksAllotted)
	fmt.Fprintf(&b, "Label: %s\n\n", line.Label)
	b.WriteString("Best regards,\nTeam LEAF.\n")
	return b.String()
}

// MismatchBody builds the oversight alert comparing the reference allocation
// against the submitted one.
func MismatchBody(rfq *models.RFQ, reference []models.Allocation, submitted []models.AllocationLine, reason string) string {
	var refTotal, subTotal float64
	var b strings.Builder
	fmt.Fprintf(&b, "This is an auto-alert to notify you of a mismatch between the reference and logistics allocation for %s.\n\n", rfq.DisplayNumber())

	b.WriteString("Reference Allocation:\n")
	b.WriteString("Vendor | Price | Trucks Allotted | Label\n")
	for _, a := range reference {
		fmt.Fprintf(&b, "%s | %g | %d | %s\n", a.VendorId, a.Price, a.TrucksAllotted, a.Label)
		refTotal += a.Price * float64(a.TrucksAllotted)
	}

	b.WriteString("\nLogistics Allocation:\n")
	b.WriteString("Vendor | Price | Trucks Allotted | Label\n")
	for _, l := range submitted {
		fmt.Fprintf(&b, "%s | %g | %d | %s\n", l.VendorId, l.Price, l.TrucksAllotted, l.Label)
		subTotal += l.Price * float64(l.TrucksAllotted)
	}

	fmt.Fprintf(&b, "\nTotal Reference Price: %g\n", refTotal)
	fmt.Fprintf(&b, "Total Logistics Price: %g\n", subTotal)
	if reason != "" {
		fmt.Fprintf(&b, "Reason given for Difference: %s\n", reason)
	}
	return b.String()
}
