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
	"github.com/leaf-logistics/rfq-service/internal/utils"
)

// RFQService owns the RFQ lifecycle: creation, vendor selection, phase
// transitions and finalization.
type RFQService struct {
	RFQs      repository.RFQRepository
	Quotes    repository.QuoteRepository
	Vendors   repository.VendorRepository
	notifier  Notifier
	oversight []string
	logger    *log.Logger
	locks     *RFQLocker
}

// NewRFQService creates a new RFQService. oversight is the distribution list
// for allocation mismatch alerts.
func NewRFQService(rfqs repository.RFQRepository, quotes repository.QuoteRepository, vendors repository.VendorRepository, notifier Notifier, oversight []string, logger *log.Logger, locks *RFQLocker) *RFQService {
	return &RFQService{
		RFQs:      rfqs,
		Quotes:    quotes,
		Vendors:   vendors,
		notifier:  notifier,
		oversight: oversight,
		logger:    logger,
		locks:     locks,
	}
}

// CreateRFQ validates and creates an RFQ, assigns the next sequential number
// and invites the pre-selected vendors. A failed invitation rolls the RFQ
// back entirely.
func (s *RFQService) CreateRFQ(ctx context.Context, req models.RFQRequest) (*models.RFQ, error) {
	if req.RequiredTrucks <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "requiredTrucks must be a positive integer")
	}
	if !req.EvaluationEndTime.After(req.InitialQuoteEndTime) {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "evaluation end time must be after initial quote end time")
	}

	rfq, err := s.RFQs.CreateRFQ(ctx, req)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to create rfq")
	}

	if len(req.SelectedVendors) > 0 {
		if err := s.inviteVendors(ctx, rfq, req.SelectedVendors); err != nil {
			// Compensating delete: an RFQ nobody was told about must not exist.
			if delErr := s.RFQs.DeleteRFQ(ctx, rfq.ID); delErr != nil {
				s.logger.Printf("failed to roll back %s after email failure: %v", rfq.DisplayNumber(), delErr)
			}
			return nil, models.NewErrorResponse(http.StatusBadGateway, "rfq created but failed to send emails, rfq entry has been removed")
		}
	}

	return rfq, nil
}

func (s *RFQService) inviteVendors(ctx context.Context, rfq *models.RFQ, vendorIds []string) error {
	vendors, err := s.Vendors.GetByIds(ctx, vendorIds)
	if err != nil {
		return err
	}
	for _, vendor := range vendors {
		if err := s.notifier.Send([]string{vendor.Email}, "New RFQ Posted - Submit Initial Quote", mail.RFQInviteBody(rfq, vendor.VendorName)); err != nil {
			return err
		}
	}
	return nil
}

// GetRFQs returns a page of RFQs.
func (s *RFQService) GetRFQs(ctx context.Context, limitStr, offsetStr string) ([]models.RFQ, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	return s.RFQs.GetRFQs(ctx, limit, offset)
}

// GetRFQ returns one RFQ, lazily advancing its phase past the initial quote
// deadline.
func (s *RFQService) GetRFQ(ctx context.Context, rfqId string) (*models.RFQ, error) {
	unlock := s.locks.Lock(rfqId)
	defer unlock()
	return s.getAdvanced(ctx, rfqId)
}

// getAdvanced fetches an RFQ and applies the lazy phase transition. Callers
// must hold the RFQ lock.
func (s *RFQService) getAdvanced(ctx context.Context, rfqId string) (*models.RFQ, error) {
	rfq, err := s.RFQs.GetRFQ(ctx, rfqId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch rfq")
	}
	if rfq == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "rfq not found")
	}
	if err := advancePhase(ctx, s.RFQs, s.Quotes, rfq, time.Now().UTC()); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to advance rfq phase")
	}
	return rfq, nil
}

// NextRFQNumber returns the human-readable number the next RFQ will receive.
func (s *RFQService) NextRFQNumber(ctx context.Context) (string, error) {
	n, err := s.RFQs.NextNumber(ctx)
	if err != nil {
		return "", models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch next rfq number")
	}
	return fmt.Sprintf("RFQ%d", n), nil
}

// AddVendors adds vendors to an open RFQ's selected list. Re-adding an
// already-selected vendor is a no-op; only genuinely new vendors get an
// action record and an invitation.
func (s *RFQService) AddVendors(ctx context.Context, rfqId string, vendorIds []string) (*models.RFQ, error) {
	if len(vendorIds) == 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "no vendor ids provided")
	}

	unlock := s.locks.Lock(rfqId)
	defer unlock()

	rfq, err := s.getAdvanced(ctx, rfqId)
	if err != nil {
		return nil, err
	}
	if rfq.Status == models.ClosedRFQ {
		return nil, models.NewErrorResponse(http.StatusConflict, "RFQ is closed")
	}

	selected := make(map[string]bool, len(rfq.SelectedVendors))
	for _, vendorId := range rfq.SelectedVendors {
		selected[vendorId] = true
	}
	var newIds []string
	for _, vendorId := range vendorIds {
		if !selected[vendorId] {
			newIds = append(newIds, vendorId)
			selected[vendorId] = true
		}
	}
	if len(newIds) == 0 {
		return rfq, nil
	}

	if err := s.RFQs.AddVendors(ctx, rfqId, newIds, time.Now().UTC()); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to add vendors")
	}
	rfq.SelectedVendors = append(rfq.SelectedVendors, newIds...)

	if err := s.inviteVendors(ctx, rfq, newIds); err != nil {
		return nil, models.NewErrorResponse(http.StatusBadGateway, "vendors added but failed to send emails")
	}

	return rfq, nil
}

// SendReminders emails a participation reminder to the given vendors and
// records a reminderSent action for each delivered message.
func (s *RFQService) SendReminders(ctx context.Context, rfqId string, vendorIds []string) error {
	if len(vendorIds) == 0 {
		return models.NewErrorResponse(http.StatusBadRequest, "no vendor ids provided")
	}

	rfq, err := s.RFQs.GetRFQ(ctx, rfqId)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch rfq")
	}
	if rfq == nil {
		return models.NewErrorResponse(http.StatusNotFound, "rfq not found")
	}

	vendors, err := s.Vendors.GetByIds(ctx, vendorIds)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch vendors")
	}
	if len(vendors) == 0 {
		return models.NewErrorResponse(http.StatusBadRequest, "no valid vendors found to send reminders")
	}

	for _, vendor := range vendors {
		subject := fmt.Sprintf("Reminder: Participation for %s", rfq.DisplayNumber())
		if err := s.notifier.Send([]string{vendor.Email}, subject, mail.ReminderBody(rfq, vendor.VendorName)); err != nil {
			s.logger.Printf("failed to send reminder for %s to %s: %v", rfq.DisplayNumber(), vendor.Email, err)
			return models.NewErrorResponse(http.StatusBadGateway, "failed to send reminder emails")
		}
		if err := s.RFQs.AppendVendorAction(ctx, rfqId, vendor.ID, models.VendorReminderSent, time.Now().UTC()); err != nil {
			return models.NewErrorResponse(http.StatusInternalServerError, "failed to record reminder action")
		}
	}

	return nil
}

// ReferenceAllocation computes the engine's allocation over the RFQ's current
// quotes and stores the resulting labels and allotments on the quotes. The
// stored values are provisional until finalization overwrites them.
func (s *RFQService) ReferenceAllocation(ctx context.Context, rfqId string) ([]models.Allocation, error) {
	unlock := s.locks.Lock(rfqId)
	defer unlock()

	rfq, err := s.getAdvanced(ctx, rfqId)
	if err != nil {
		return nil, err
	}

	quotes, err := s.Quotes.GetRFQQuotes(ctx, rfqId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch quotes")
	}

	allocation := Allocate(quotes, rfq.RequiredTrucks)
	if rfq.Status != models.ClosedRFQ && len(allocation) > 0 {
		if err := s.Quotes.ApplyAllotments(ctx, allocation); err != nil {
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to store allotments")
		}
	}

	return allocation, nil
}

// Finalize reconciles a human-supplied allocation against the engine's
// reference allocation, alerts oversight on any mismatch, and closes the RFQ
// irreversibly.
func (s *RFQService) Finalize(ctx context.Context, rfqId string, req models.FinalizeRequest) error {
	if len(req.Allocation) == 0 {
		return models.NewErrorResponse(http.StatusBadRequest, "invalid logistics allocation data")
	}
	for _, line := range req.Allocation {
		if line.VendorId == "" || line.Label == "" || line.Price < 0 || line.TrucksAllotted < 0 {
			return models.NewErrorResponse(http.StatusBadRequest, "invalid logistics allocation data")
		}
	}

	unlock := s.locks.Lock(rfqId)
	defer unlock()

	rfq, err := s.getAdvanced(ctx, rfqId)
	if err != nil {
		return err
	}
	if rfq.Status == models.ClosedRFQ {
		return models.NewErrorResponse(http.StatusConflict, "RFQ has already been finalized")
	}
	if rfq.Status == models.InitialRFQ {
		return models.NewErrorResponse(http.StatusBadRequest, "initial quote period has not ended")
	}

	totalAllotted := 0
	for _, line := range req.Allocation {
		totalAllotted += line.TrucksAllotted
	}
	if totalAllotted > rfq.RequiredTrucks {
		return models.NewErrorResponse(http.StatusBadRequest, "total trucks allotted exceeds required trucks")
	}

	// The frozen lowest bidder keeps its price ceiling and a guaranteed floor
	// of trucks.
	if rfq.LowestVendorId != "" {
		var l1Line *models.AllocationLine
		for i := range req.Allocation {
			if req.Allocation[i].VendorId == rfq.LowestVendorId {
				l1Line = &req.Allocation[i]
				break
			}
		}
		if l1Line != nil && l1Line.Price > rfq.L1Price {
			return models.NewErrorResponse(http.StatusBadRequest, "L1 vendor price cannot be raised above its frozen quote")
		}
		minL1 := int(math.Ceil(0.39 * float64(rfq.RequiredTrucks)))
		l1Trucks := 0
		if l1Line != nil {
			l1Trucks = l1Line.TrucksAllotted
		}
		if l1Trucks < minL1 {
			return models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("L1 vendor must be allotted at least %d trucks", minL1))
		}
	}

	quotes, err := s.Quotes.GetRFQQuotes(ctx, rfqId)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch quotes")
	}
	reference := Allocate(quotes, rfq.RequiredTrucks)

	if !allocationsMatch(reference, req.Allocation) {
		body := mail.MismatchBody(rfq, reference, req.Allocation, req.FinalizeReason)
		if err := s.notifier.Send(s.oversight, "Mismatch in Allocation", body); err != nil {
			s.logger.Printf("failed to send mismatch alert for %s: %v", rfq.DisplayNumber(), err)
		}
	}

	if err := s.RFQs.UpdateStatusAndReason(ctx, rfqId, models.ClosedRFQ, req.FinalizeReason); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to close rfq")
	}
	if err := s.Quotes.ApplyFinalAllocation(ctx, rfqId, req.Allocation); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to persist final allocation")
	}

	s.notifyFinalAllocation(ctx, rfq, req.Allocation)

	return nil
}

// notifyFinalAllocation emails each vendor that received trucks. Vendors with
// zero allotment are deliberately not contacted. Failures are logged only.
func (s *RFQService) notifyFinalAllocation(ctx context.Context, rfq *models.RFQ, lines []models.AllocationLine) {
	var vendorIds []string
	for _, line := range lines {
		if line.TrucksAllotted > 0 {
			vendorIds = append(vendorIds, line.VendorId)
		}
	}
	if len(vendorIds) == 0 {
		return
	}

	vendors, err := s.Vendors.GetByIds(ctx, vendorIds)
	if err != nil {
		s.logger.Printf("failed to fetch vendors for %s finalization notices: %v", rfq.DisplayNumber(), err)
		return
	}
	byId := make(map[string]models.Vendor, len(vendors))
	for _, vendor := range vendors {
		byId[vendor.ID] = vendor
	}

	subject := fmt.Sprintf("%s Finalized Allocation", rfq.DisplayNumber())
	for _, line := range lines {
		if line.TrucksAllotted == 0 {
			continue
		}
		vendor, ok := byId[line.VendorId]
		if !ok {
			continue
		}
		if err := s.notifier.Send([]string{vendor.Email}, subject, mail.FinalAllocationBody(rfq, vendor.VendorName, line)); err != nil {
			s.logger.Printf("failed to send finalization notice for %s to %s: %v", rfq.DisplayNumber(), vendor.Email, err)
		}
	}
}

// allocationsMatch compares the two allocations as order-independent
// (vendor, trucksAllotted) mappings; vendors absent from one side count as
// zero allotment.
func allocationsMatch(reference []models.Allocation, submitted []models.AllocationLine) bool {
	ref := make(map[string]int, len(reference))
	for _, a := range reference {
		ref[a.VendorId] += a.TrucksAllotted
	}
	sub := make(map[string]int, len(submitted))
	for _, l := range submitted {
		sub[l.VendorId] += l.TrucksAllotted
	}
	for vendorId, trucks := range ref {
		if sub[vendorId] != trucks {
			return false
		}
	}
	for vendorId, trucks := range sub {
		if ref[vendorId] != trucks {
			return false
		}
	}
	return true
}
