package services

import (
	"context"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
	"github.com/leaf-logistics/rfq-service/internal/repository"
)

// Notifier delivers one message to a recipient list. Implemented by
// mail.Mailer; faked in tests.
type Notifier interface {
	Send(to []string, subject, body string) error
}

// advancePhase moves an RFQ from initial to evaluation once the initial quote
// window has passed. At this boundary the lowest bidder and its price are
// fixed. Callers must hold the RFQ lock. The rfq value is updated in place.
func advancePhase(ctx context.Context, rfqs repository.RFQRepository, quotes repository.QuoteRepository, rfq *models.RFQ, now time.Time) error {
	if rfq.Status != models.InitialRFQ || !now.After(rfq.InitialQuoteEndTime) {
		return nil
	}

	all, err := quotes.GetRFQQuotes(ctx, rfq.ID)
	if err != nil {
		return err
	}
	if lowest := lowestQuote(all); lowest != nil {
		rfq.LowestVendorId = lowest.VendorId
		rfq.L1Price = lowest.Price
	}
	rfq.Status = models.EvaluationRFQ

	return rfqs.SetEvaluation(ctx, rfq.ID, rfq.LowestVendorId, rfq.L1Price)
}
