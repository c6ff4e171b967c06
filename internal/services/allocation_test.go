package services

import (
	"testing"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
)

func quoteAt(id, vendorId string, price float64, trucks int, t time.Time) models.Quote {
	return models.Quote{
		ID:             id,
		RFQId:          "rfq-1",
		VendorId:       vendorId,
		Price:          price,
		NumberOfTrucks: trucks,
		TrucksPerDay:   10,
		CreatedAt:      t,
	}
}

func allocationByVendor(t *testing.T, allocs []models.Allocation) map[string]models.Allocation {
	t.Helper()
	out := make(map[string]models.Allocation, len(allocs))
	for _, a := range allocs {
		if _, dup := out[a.VendorId]; dup {
			t.Fatalf("duplicate allocation entry for vendor %s", a.VendorId)
		}
		out[a.VendorId] = a
	}
	return out
}

func totalAllotted(allocs []models.Allocation) int {
	sum := 0
	for _, a := range allocs {
		sum += a.TrucksAllotted
	}
	return sum
}

func TestAllocateEmptyInputs(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if got := Allocate(nil, 10); len(got) != 0 {
		t.Fatalf("expected empty allocation for zero bids, got %d entries", len(got))
	}
	quotes := []models.Quote{quoteAt("q1", "v1", 5, 10, base)}
	if got := Allocate(quotes, 0); len(got) != 0 {
		t.Fatalf("expected empty allocation for requiredTrucks=0, got %d entries", len(got))
	}
	if got := Allocate(quotes, -3); len(got) != 0 {
		t.Fatalf("expected empty allocation for negative demand, got %d entries", len(got))
	}
}

func TestAllocateSingleBidFullDemand(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{quoteAt("q1", "v1", 12.5, 40, base)}

	got := allocationByVendor(t, Allocate(quotes, 40))
	if got["v1"].Label != "L1" || got["v1"].TrucksAllotted != 40 {
		t.Fatalf("expected v1 L1/40, got %s/%d", got["v1"].Label, got["v1"].TrucksAllotted)
	}
}

func TestAllocateLowestBidderTakesAllWhenAble(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q1", "cheap", 8, 120, base),
		quoteAt("q2", "mid", 9, 50, base.Add(time.Minute)),
		quoteAt("q3", "high", 11, 50, base.Add(2*time.Minute)),
	}

	got := allocationByVendor(t, Allocate(quotes, 100))
	if got["cheap"].Label != "L1" || got["cheap"].TrucksAllotted != 100 {
		t.Fatalf("expected cheap L1/100, got %s/%d", got["cheap"].Label, got["cheap"].TrucksAllotted)
	}
	for _, vendor := range []string{"mid", "high"} {
		if got[vendor].Label != models.UnallottedLabel || got[vendor].TrucksAllotted != 0 {
			t.Fatalf("expected %s unallotted, got %s/%d", vendor, got[vendor].Label, got[vendor].TrucksAllotted)
		}
	}
}

func TestAllocateCascadesToNextGroup(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q1", "a", 5, 3, base),
		quoteAt("q2", "b", 7, 20, base.Add(time.Minute)),
	}

	got := allocationByVendor(t, Allocate(quotes, 10))
	if got["a"].Label != "L1" || got["a"].TrucksAllotted != 3 {
		t.Fatalf("expected a L1/3, got %s/%d", got["a"].Label, got["a"].TrucksAllotted)
	}
	if got["b"].Label != "L2" || got["b"].TrucksAllotted != 7 {
		t.Fatalf("expected b L2/7, got %s/%d", got["b"].Label, got["b"].TrucksAllotted)
	}
}

func TestAllocateEqualPriceProportionalSplit(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q1", "a", 10, 60, base),
		quoteAt("q2", "b", 10, 60, base.Add(time.Second)),
	}

	got := allocationByVendor(t, Allocate(quotes, 100))
	if got["a"].Label != "L1" || got["b"].Label != "L1" {
		t.Fatalf("expected both labeled L1, got %s and %s", got["a"].Label, got["b"].Label)
	}
	if got["a"].TrucksAllotted != 50 || got["b"].TrucksAllotted != 50 {
		t.Fatalf("expected 50/50 split, got %d/%d", got["a"].TrucksAllotted, got["b"].TrucksAllotted)
	}
}

func TestAllocateRoundingRemainderFavorsEarlierBid(t *testing.T) {
	// Group cap 10 over offered 3+3+3=9? No: make a genuine remainder.
	// Offered 4+4+4=12, cap 10: floors are 3 each (9), remainder 1 goes to
	// the earliest bid.
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q2", "second", 10, 4, base.Add(time.Minute)),
		quoteAt("q1", "first", 10, 4, base),
		quoteAt("q3", "third", 10, 4, base.Add(2*time.Minute)),
	}

	got := allocationByVendor(t, Allocate(quotes, 10))
	if got["first"].TrucksAllotted != 4 {
		t.Fatalf("expected earliest bid to absorb the remainder, got %d", got["first"].TrucksAllotted)
	}
	if got["second"].TrucksAllotted != 3 || got["third"].TrucksAllotted != 3 {
		t.Fatalf("expected later bids at floor share, got %d/%d", got["second"].TrucksAllotted, got["third"].TrucksAllotted)
	}
	if got["second"].TrucksAllotted > got["first"].TrucksAllotted {
		t.Fatal("later bid with equal capacity received more than an earlier one")
	}
}

func TestAllocateNeverExceedsDemand(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		quotes   []models.Quote
		required int
	}{
		{"undersupplied", []models.Quote{quoteAt("q1", "a", 5, 3, base), quoteAt("q2", "b", 6, 2, base)}, 50},
		{"oversupplied", []models.Quote{quoteAt("q1", "a", 5, 80, base), quoteAt("q2", "b", 5, 90, base.Add(time.Second)), quoteAt("q3", "c", 6, 70, base)}, 100},
		{"exact", []models.Quote{quoteAt("q1", "a", 5, 60, base), quoteAt("q2", "b", 7, 40, base)}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allocs := Allocate(tc.quotes, tc.required)
			if sum := totalAllotted(allocs); sum > tc.required {
				t.Fatalf("allotted %d exceeds demand %d", sum, tc.required)
			}
			if len(allocs) != len(tc.quotes) {
				t.Fatalf("expected one entry per quote, got %d for %d quotes", len(allocs), len(tc.quotes))
			}
		})
	}
}

func TestAllocateDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q3", "c", 6, 70, base.Add(3*time.Minute)),
		quoteAt("q1", "a", 5, 80, base),
		quoteAt("q2", "b", 5, 90, base.Add(time.Second)),
		quoteAt("q4", "d", 9, 10, base.Add(time.Hour)),
	}

	first := allocationByVendor(t, Allocate(quotes, 120))
	// Reversed storage order must not change the result.
	reversed := make([]models.Quote, 0, len(quotes))
	for i := len(quotes) - 1; i >= 0; i-- {
		reversed = append(reversed, quotes[i])
	}
	second := allocationByVendor(t, Allocate(reversed, 120))

	for vendorId, a := range first {
		b := second[vendorId]
		if a.Label != b.Label || a.TrucksAllotted != b.TrucksAllotted {
			t.Fatalf("non-deterministic result for %s: %s/%d vs %s/%d", vendorId, a.Label, a.TrucksAllotted, b.Label, b.TrucksAllotted)
		}
	}
}

func TestAllocateZeroCapacityGroup(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quoteAt("q1", "a", 5, 0, base),
		quoteAt("q2", "b", 7, 10, base.Add(time.Minute)),
	}

	got := allocationByVendor(t, Allocate(quotes, 10))
	if got["a"].TrucksAllotted != 0 {
		t.Fatalf("zero-capacity bid received trucks: %d", got["a"].TrucksAllotted)
	}
	if got["b"].TrucksAllotted != 10 {
		t.Fatalf("expected next group to cover demand, got %d", got["b"].TrucksAllotted)
	}
}

func TestLowestQuote(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if lowestQuote(nil) != nil {
		t.Fatal("expected nil for empty set")
	}

	quotes := []models.Quote{
		quoteAt("q1", "late-cheap", 5, 10, base.Add(time.Minute)),
		quoteAt("q2", "early-cheap", 5, 10, base),
		quoteAt("q3", "pricey", 9, 10, base),
	}
	if got := lowestQuote(quotes); got.VendorId != "early-cheap" {
		t.Fatalf("expected earliest equal-price bid to win, got %s", got.VendorId)
	}
}
