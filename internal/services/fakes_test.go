package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
)

// In-memory repository fakes used by the service tests.

type fakeRFQRepo struct {
	rfqs    map[string]*models.RFQ
	nextNum int
	deleted []string
}

func newFakeRFQRepo() *fakeRFQRepo {
	return &fakeRFQRepo{rfqs: make(map[string]*models.RFQ)}
}

func (f *fakeRFQRepo) put(rfq models.RFQ) *models.RFQ {
	stored := rfq
	f.rfqs[rfq.ID] = &stored
	return &stored
}

func (f *fakeRFQRepo) CreateRFQ(_ context.Context, req models.RFQRequest) (*models.RFQ, error) {
	f.nextNum++
	rfq := models.RFQ{
		ID:                  fmt.Sprintf("rfq-%d", f.nextNum),
		Number:              f.nextNum,
		RequiredTrucks:      req.RequiredTrucks,
		Status:              models.InitialRFQ,
		InitialQuoteEndTime: req.InitialQuoteEndTime,
		EvaluationEndTime:   req.EvaluationEndTime,
		SelectedVendors:     req.SelectedVendors,
		CreatedAt:           time.Now().UTC(),
	}
	for _, vendorId := range req.SelectedVendors {
		rfq.VendorActions = append(rfq.VendorActions, models.VendorAction{
			RFQId:     rfq.ID,
			Action:    models.VendorAddedAtCreation,
			VendorId:  vendorId,
			Timestamp: rfq.CreatedAt,
		})
	}
	return f.put(rfq), nil
}

func (f *fakeRFQRepo) GetRFQs(context.Context, int, int) ([]models.RFQ, error) {
	var out []models.RFQ
	for _, rfq := range f.rfqs {
		out = append(out, *rfq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (f *fakeRFQRepo) GetRFQ(_ context.Context, rfqId string) (*models.RFQ, error) {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return nil, nil
	}
	clone := *rfq
	clone.SelectedVendors = append([]string(nil), rfq.SelectedVendors...)
	clone.VendorActions = append([]models.VendorAction(nil), rfq.VendorActions...)
	return &clone, nil
}

func (f *fakeRFQRepo) NextNumber(context.Context) (int, error) {
	return f.nextNum + 1, nil
}

func (f *fakeRFQRepo) UpdateStatusAndReason(_ context.Context, rfqId string, status models.RFQStatus, reason string) error {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return errors.New("rfq not found")
	}
	rfq.Status = status
	if reason != "" {
		rfq.FinalizeReason = reason
	}
	return nil
}

func (f *fakeRFQRepo) SetEvaluation(_ context.Context, rfqId, lowestVendorId string, l1Price float64) error {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return errors.New("rfq not found")
	}
	rfq.Status = models.EvaluationRFQ
	rfq.LowestVendorId = lowestVendorId
	rfq.L1Price = l1Price
	return nil
}

func (f *fakeRFQRepo) AddVendors(_ context.Context, rfqId string, vendorIds []string, ts time.Time) error {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return errors.New("rfq not found")
	}
	for _, vendorId := range vendorIds {
		rfq.SelectedVendors = append(rfq.SelectedVendors, vendorId)
		rfq.VendorActions = append(rfq.VendorActions, models.VendorAction{
			RFQId:     rfqId,
			Action:    models.VendorAdded,
			VendorId:  vendorId,
			Timestamp: ts,
		})
	}
	return nil
}

func (f *fakeRFQRepo) AppendVendorAction(_ context.Context, rfqId, vendorId string, action models.VendorActionType, ts time.Time) error {
	rfq, ok := f.rfqs[rfqId]
	if !ok {
		return errors.New("rfq not found")
	}
	rfq.VendorActions = append(rfq.VendorActions, models.VendorAction{
		RFQId:     rfqId,
		Action:    action,
		VendorId:  vendorId,
		Timestamp: ts,
	})
	return nil
}

func (f *fakeRFQRepo) DeleteRFQ(_ context.Context, rfqId string) error {
	delete(f.rfqs, rfqId)
	f.deleted = append(f.deleted, rfqId)
	return nil
}

type fakeQuoteRepo struct {
	quotes map[string]*models.Quote // key rfqId|vendorId
	seq    int
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: make(map[string]*models.Quote)}
}

func quoteKey(rfqId, vendorId string) string { return rfqId + "|" + vendorId }

func (f *fakeQuoteRepo) put(q models.Quote) *models.Quote {
	stored := q
	f.quotes[quoteKey(q.RFQId, q.VendorId)] = &stored
	return &stored
}

func (f *fakeQuoteRepo) GetByID(_ context.Context, quoteId string) (*models.Quote, error) {
	for _, q := range f.quotes {
		if q.ID == quoteId {
			clone := *q
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeQuoteRepo) GetByRFQAndVendor(_ context.Context, rfqId, vendorId string) (*models.Quote, error) {
	q, ok := f.quotes[quoteKey(rfqId, vendorId)]
	if !ok {
		return nil, nil
	}
	clone := *q
	return &clone, nil
}

func (f *fakeQuoteRepo) GetRFQQuotes(_ context.Context, rfqId string) ([]models.Quote, error) {
	var out []models.Quote
	for _, q := range f.quotes {
		if q.RFQId == rfqId {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeQuoteRepo) Upsert(_ context.Context, req models.QuoteRequest, ts time.Time) (*models.Quote, error) {
	if existing, ok := f.quotes[quoteKey(req.RFQId, req.VendorId)]; ok {
		existing.Price = req.Price
		existing.NumberOfTrucks = req.NumberOfTrucks
		existing.TrucksPerDay = req.TrucksPerDay
		existing.Message = req.Message
		existing.ValidityPeriod = req.ValidityPeriod
		clone := *existing
		return &clone, nil
	}
	f.seq++
	return f.put(models.Quote{
		ID:             fmt.Sprintf("quote-%d", f.seq),
		RFQId:          req.RFQId,
		VendorId:       req.VendorId,
		Price:          req.Price,
		NumberOfTrucks: req.NumberOfTrucks,
		TrucksPerDay:   req.TrucksPerDay,
		Message:        req.Message,
		ValidityPeriod: req.ValidityPeriod,
		CreatedAt:      ts,
	}), nil
}

func (f *fakeQuoteRepo) UpdateAdjustment(_ context.Context, quoteId string, price float64, trucksAllotted int) (*models.Quote, error) {
	for _, q := range f.quotes {
		if q.ID == quoteId {
			q.Price = price
			q.TrucksAllotted = trucksAllotted
			clone := *q
			return &clone, nil
		}
	}
	return nil, errors.New("quote not found")
}

func (f *fakeQuoteRepo) ApplyAllotments(_ context.Context, allocs []models.Allocation) error {
	for _, alloc := range allocs {
		for _, q := range f.quotes {
			if q.ID == alloc.QuoteID {
				q.Label = alloc.Label
				q.TrucksAllotted = alloc.TrucksAllotted
			}
		}
	}
	return nil
}

func (f *fakeQuoteRepo) ApplyFinalAllocation(_ context.Context, rfqId string, lines []models.AllocationLine) error {
	for _, line := range lines {
		if q, ok := f.quotes[quoteKey(rfqId, line.VendorId)]; ok {
			q.Price = line.Price
			q.TrucksAllotted = line.TrucksAllotted
			q.Label = line.Label
		}
	}
	return nil
}

type fakeVendorRepo struct {
	vendors map[string]models.Vendor
}

func newFakeVendorRepo(vendors ...models.Vendor) *fakeVendorRepo {
	f := &fakeVendorRepo{vendors: make(map[string]models.Vendor)}
	for _, v := range vendors {
		f.vendors[v.ID] = v
	}
	return f
}

func (f *fakeVendorRepo) GetVendors(context.Context, int, int) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, v := range f.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	return out, nil
}

func (f *fakeVendorRepo) GetByIds(_ context.Context, vendorIds []string) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, vendorId := range vendorIds {
		if v, ok := f.vendors[vendorId]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVendorRepo) GetByName(_ context.Context, vendorName string) (*models.Vendor, error) {
	for _, v := range f.vendors {
		if v.VendorName == vendorName {
			clone := v
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeVendorRepo) CreateVendor(_ context.Context, vendor models.Vendor) (*models.Vendor, error) {
	if vendor.ID == "" {
		vendor.ID = fmt.Sprintf("vendor-%d", len(f.vendors)+1)
	}
	f.vendors[vendor.ID] = vendor
	return &vendor, nil
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeNotifier struct {
	sent []sentMail
	fail bool
}

func (f *fakeNotifier) Send(to []string, subject, body string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeNotifier) subjects() []string {
	var out []string
	for _, m := range f.sent {
		out = append(out, m.subject)
	}
	return out
}

type fakeAccountRepo struct {
	accounts      map[string]*models.Account
	verifications map[string]models.Verification
	seq           int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts:      make(map[string]*models.Account),
		verifications: make(map[string]models.Verification),
	}
}

func (f *fakeAccountRepo) CreateAccount(_ context.Context, acc models.Account) (*models.Account, error) {
	f.seq++
	if acc.ID == "" {
		acc.ID = fmt.Sprintf("acc-%d", f.seq)
	}
	acc.Status = models.PendingAccount
	acc.CreatedAt = time.Now().UTC()
	stored := acc
	f.accounts[acc.ID] = &stored
	return &stored, nil
}

func (f *fakeAccountRepo) GetAccount(_ context.Context, accountId string) (*models.Account, error) {
	acc, ok := f.accounts[accountId]
	if !ok {
		return nil, nil
	}
	clone := *acc
	return &clone, nil
}

func (f *fakeAccountRepo) GetPendingAccounts(context.Context, int, int) ([]models.Account, error) {
	var out []models.Account
	for _, acc := range f.accounts {
		if acc.Status == models.PendingAccount {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateAccountStatus(_ context.Context, accountId string, status models.AccountStatus) (*models.Account, error) {
	acc, ok := f.accounts[accountId]
	if !ok {
		return nil, nil
	}
	acc.Status = status
	clone := *acc
	return &clone, nil
}

func (f *fakeAccountRepo) SaveVerification(_ context.Context, v models.Verification) error {
	f.verifications[v.Email] = v
	return nil
}

func (f *fakeAccountRepo) GetVerification(_ context.Context, email, code string) (*models.Verification, error) {
	v, ok := f.verifications[email]
	if !ok || v.Code != code {
		return nil, nil
	}
	clone := v
	return &clone, nil
}

func (f *fakeAccountRepo) DeleteVerification(_ context.Context, email string) error {
	delete(f.verifications, email)
	return nil
}
