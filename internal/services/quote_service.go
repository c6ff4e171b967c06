package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/mail"
	"github.com/leaf-logistics/rfq-service/internal/models"
	"github.com/leaf-logistics/rfq-service/internal/repository"
)

// QuoteService enforces the phase-dependent quote acceptance rules.
type QuoteService struct {
	Quotes     repository.QuoteRepository
	RFQs       repository.RFQRepository
	notifier   Notifier
	notifyAddr string
	logger     *log.Logger
	locks      *RFQLocker
}

// NewQuoteService creates a new QuoteService. notifyAddr receives the
// internal quote-received notices.
func NewQuoteService(quotes repository.QuoteRepository, rfqs repository.RFQRepository, notifier Notifier, notifyAddr string, logger *log.Logger, locks *RFQLocker) *QuoteService {
	return &QuoteService{
		Quotes:     quotes,
		RFQs:       rfqs,
		notifier:   notifier,
		notifyAddr: notifyAddr,
		logger:     logger,
		locks:      locks,
	}
}

// SubmitQuote validates and stores a vendor's quote. During the initial phase
// any eligible vendor may bid before the deadline; during evaluation only
// vendors with an existing quote may revise, and the frozen L1 vendor may not.
func (s *QuoteService) SubmitQuote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error) {
	if req.RFQId == "" || req.VendorId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields: rfqId or vendorId")
	}
	if req.Price <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "price must be a positive number")
	}
	if req.NumberOfTrucks <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "numberOfTrucks must be a positive integer")
	}
	if req.TrucksPerDay < 1 || req.TrucksPerDay > 99 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "numberOfVehiclesPerDay must be between 1 and 99")
	}

	unlock := s.locks.Lock(req.RFQId)
	defer unlock()

	rfq, err := s.RFQs.GetRFQ(ctx, req.RFQId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch rfq")
	}
	if rfq == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "rfq not found")
	}

	minTrucks := int(math.Floor(0.39 * float64(rfq.RequiredTrucks)))
	if req.NumberOfTrucks < minTrucks {
		return nil, models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("number of trucks must be at least %d", minTrucks))
	}

	existing, err := s.Quotes.GetByRFQAndVendor(ctx, req.RFQId, req.VendorId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch quote")
	}

	// The deadline is checked against the same clock read that timestamps
	// the bid. Crossing it advances the phase before the rules below apply.
	now := time.Now().UTC()
	if rfq.Status == models.InitialRFQ && now.After(rfq.InitialQuoteEndTime) {
		if err := advancePhase(ctx, s.RFQs, s.Quotes, rfq, now); err != nil {
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to advance rfq phase")
		}
		if existing == nil {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "initial quote period has ended")
		}
	}

	switch rfq.Status {
	case models.InitialRFQ:
	case models.EvaluationRFQ:
		if existing == nil {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "you did not submit an initial quote")
		}
		if req.VendorId == rfq.LowestVendorId {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "L1 vendor cannot update the quote")
		}
	case models.ClosedRFQ:
		return nil, models.NewErrorResponse(http.StatusBadRequest, "RFQ is closed. You cannot submit a quote")
	}

	quote, err := s.Quotes.Upsert(ctx, req, now)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to store quote")
	}

	// Best effort: a failed notice never rolls back the stored bid.
	subject := fmt.Sprintf("Initial Quote Submitted by %s for %s", req.VendorId, rfq.DisplayNumber())
	if existing != nil {
		subject = fmt.Sprintf("Quote Updated by %s for %s", req.VendorId, rfq.DisplayNumber())
	}
	if err := s.notifier.Send([]string{s.notifyAddr}, subject, mail.QuoteReceivedBody(rfq, quote, existing != nil)); err != nil {
		s.logger.Printf("failed to send quote notice for %s: %v", rfq.DisplayNumber(), err)
	}

	return quote, nil
}

// AdjustQuote applies a buyer-side edit to one quote's price and allotment
// ahead of finalization. Every edit is held to the demand ceiling across the
// RFQ's quotes and, for the frozen L1 vendor, to the price ceiling and the
// trucks floor.
func (s *QuoteService) AdjustQuote(ctx context.Context, quoteId string, req models.AdjustQuoteRequest) (*models.Quote, error) {
	if quoteId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: quoteId")
	}
	if req.Price <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "price must be a positive number")
	}
	if req.TrucksAllotted < 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "trucksAllotted must be a non-negative integer")
	}

	quote, err := s.Quotes.GetByID(ctx, quoteId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch quote")
	}
	if quote == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "quote not found")
	}

	unlock := s.locks.Lock(quote.RFQId)
	defer unlock()

	rfq, err := s.RFQs.GetRFQ(ctx, quote.RFQId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch rfq")
	}
	if rfq == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "rfq not found")
	}
	if err := advancePhase(ctx, s.RFQs, s.Quotes, rfq, time.Now().UTC()); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to advance rfq phase")
	}
	if rfq.Status == models.ClosedRFQ {
		return nil, models.NewErrorResponse(http.StatusConflict, "RFQ has already been finalized")
	}

	all, err := s.Quotes.GetRFQQuotes(ctx, quote.RFQId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch quotes")
	}
	total := req.TrucksAllotted
	for _, q := range all {
		if q.ID != quoteId {
			total += q.TrucksAllotted
		}
	}
	if total > rfq.RequiredTrucks {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "total trucks allotted exceeds required trucks")
	}

	if rfq.LowestVendorId != "" && quote.VendorId == rfq.LowestVendorId {
		if req.Price > rfq.L1Price {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "L1 vendor price cannot be raised above its frozen quote")
		}
		minL1 := int(math.Ceil(0.39 * float64(rfq.RequiredTrucks)))
		if req.TrucksAllotted < minL1 {
			return nil, models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("L1 vendor must be allotted at least %d trucks", minL1))
		}
	}

	updated, err := s.Quotes.UpdateAdjustment(ctx, quoteId, req.Price, req.TrucksAllotted)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to update quote")
	}
	return updated, nil
}

// GetRFQQuotes returns all quotes submitted for an RFQ.
func (s *QuoteService) GetRFQQuotes(ctx context.Context, rfqId string) ([]models.Quote, error) {
	if rfqId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: rfqId")
	}

	rfq, err := s.RFQs.GetRFQ(ctx, rfqId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch rfq")
	}
	if rfq == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "rfq not found")
	}

	return s.Quotes.GetRFQQuotes(ctx, rfqId)
}
