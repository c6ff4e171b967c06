package models

import (
	"fmt"
	"time"
)

type (
	RFQStatus        string // Lifecycle phase of an RFQ
	VendorActionType string // Kind of vendor action recorded on an RFQ
)

const (
	InitialRFQ    RFQStatus = "initial"    // Accepting initial quotes
	EvaluationRFQ RFQStatus = "evaluation" // Quote revision window, L1 price frozen
	ClosedRFQ     RFQStatus = "closed"     // Finalized, immutable

	VendorAdded           VendorActionType = "added"           // Vendor added after creation
	VendorAddedAtCreation VendorActionType = "addedAtCreation" // Vendor pre-selected at creation
	VendorReminderSent    VendorActionType = "reminderSent"    // Participation reminder sent
)

// VendorAction is one append-only log entry on an RFQ.
type VendorAction struct {
	ID        string           `json:"id"`
	RFQId     string           `json:"-"`
	Action    VendorActionType `json:"action"`
	VendorId  string           `json:"vendorId"`
	Timestamp time.Time        `json:"timestamp"`
}

// RFQ represents one procurement round with a fixed truck demand.
type RFQ struct {
	ID                  string         `json:"id"`
	Number              int            `json:"rfqNumber"`
	RequiredTrucks      int            `json:"requiredTrucks"`
	Status              RFQStatus      `json:"status"`
	InitialQuoteEndTime time.Time      `json:"initialQuoteEndTime"`
	EvaluationEndTime   time.Time      `json:"evaluationEndTime"`
	LowestVendorId      string         `json:"lowestVendorId,omitempty"`
	L1Price             float64        `json:"l1Price,omitempty"`
	FinalizeReason      string         `json:"finalizeReason,omitempty"`
	SelectedVendors     []string       `json:"selectedVendors"`
	VendorActions       []VendorAction `json:"vendorActions"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// DisplayNumber returns the human-readable RFQ number, e.g. "RFQ17".
func (r *RFQ) DisplayNumber() string {
	return fmt.Sprintf("RFQ%d", r.Number)
}

// RFQRequest represents the request body for creating an RFQ.
type RFQRequest struct {
	RequiredTrucks      int       `json:"requiredTrucks"`
	InitialQuoteEndTime time.Time `json:"initialQuoteEndTime"`
	EvaluationEndTime   time.Time `json:"evaluationEndTime"`
	SelectedVendors     []string  `json:"selectedVendors"`
}
