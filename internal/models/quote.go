package models

import "time"

// UnallottedLabel marks a quote that received no trucks.
const UnallottedLabel = "-"

// Quote represents a vendor's price and capacity offer for one RFQ.
// At most one Quote exists per (rfqId, vendorId) pair; revisions update the
// row in place so CreatedAt keeps its tie-break value.
type Quote struct {
	ID             string    `json:"id"`
	RFQId          string    `json:"rfqId"`
	VendorId       string    `json:"vendorId"`
	Price          float64   `json:"price"`
	NumberOfTrucks int       `json:"numberOfTrucks"`
	TrucksPerDay   int       `json:"numberOfVehiclesPerDay"`
	TrucksAllotted int       `json:"trucksAllotted"`
	Label          string    `json:"label,omitempty"`
	Message        string    `json:"message,omitempty"`
	ValidityPeriod string    `json:"validityPeriod,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QuoteRequest represents the request body for submitting or revising a quote.
type QuoteRequest struct {
	RFQId          string  `json:"rfqId"`
	VendorId       string  `json:"vendorId"`
	Price          float64 `json:"price"`
	NumberOfTrucks int     `json:"numberOfTrucks"`
	TrucksPerDay   int     `json:"numberOfVehiclesPerDay"`
	Message        string  `json:"message"`
	ValidityPeriod string  `json:"validityPeriod"`
}

// AdjustQuoteRequest represents the request body for a buyer-side adjustment
// of one quote before finalization.
type AdjustQuoteRequest struct {
	Price          float64 `json:"price"`
	TrucksAllotted int     `json:"trucksAllotted"`
}

// Allocation is one line of the allocation engine's output.
type Allocation struct {
	QuoteID        string  `json:"quoteId"`
	VendorId       string  `json:"vendorId"`
	Price          float64 `json:"price"`
	Label          string  `json:"label"`
	TrucksAllotted int     `json:"trucksAllotted"`
}

// AllocationLine is one line of a human-supplied final allocation.
type AllocationLine struct {
	VendorId       string  `json:"vendorId"`
	Price          float64 `json:"price"`
	TrucksAllotted int     `json:"trucksAllotted"`
	Label          string  `json:"label"`
}

// FinalizeRequest represents the request body for finalizing an RFQ.
type FinalizeRequest struct {
	Allocation     []AllocationLine `json:"logisticsAllocation"`
	FinalizeReason string           `json:"finalizeReason"`
}
