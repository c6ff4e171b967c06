package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
	"github.com/leaf-logistics/rfq-service/internal/services"
	"github.com/leaf-logistics/rfq-service/internal/utils"
)

// RFQHandler handles HTTP requests for RFQs.
type RFQHandler struct {
	Service *services.RFQService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRFQHandler creates a new RFQHandler.
func NewRFQHandler(service *services.RFQService, logger *log.Logger, timeout time.Duration) *RFQHandler {
	return &RFQHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *RFQHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// CreateRFQ handles requests for creating an RFQ.
func (h *RFQHandler) CreateRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var rfqReq models.RFQRequest
	if err := json.NewDecoder(r.Body).Decode(&rfqReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rfq, err := h.Service.CreateRFQ(ctx, rfqReq)
	if err != nil {
		h.handleServiceError(w, err, "failed to create rfq")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, rfq)
}

// GetRFQs handles requests for listing RFQs.
func (h *RFQHandler) GetRFQs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqs, err := h.Service.GetRFQs(ctx, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch rfqs")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, rfqs)
}

// GetRFQ handles requests for fetching one RFQ.
func (h *RFQHandler) GetRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfq, err := h.Service.GetRFQ(ctx, r.PathValue("rfqId"))
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch rfq")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, rfq)
}

// NextRFQNumber handles requests for previewing the next RFQ number.
func (h *RFQHandler) NextRFQNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	number, err := h.Service.NextRFQNumber(ctx)
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch next rfq number")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"rfqNumber": number})
}

// AddVendors handles requests for adding vendors to an RFQ.
func (h *RFQHandler) AddVendors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body struct {
		VendorIds []string `json:"vendorIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rfq, err := h.Service.AddVendors(ctx, r.PathValue("rfqId"), body.VendorIds)
	if err != nil {
		h.handleServiceError(w, err, "failed to add vendors")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, rfq)
}

// SendReminders handles requests for sending participation reminders.
func (h *RFQHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body struct {
		VendorIds []string `json:"vendorIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SendReminders(ctx, r.PathValue("rfqId"), body.VendorIds); err != nil {
		h.handleServiceError(w, err, "failed to send reminders")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "reminders sent"})
}

// GetReferenceAllocation handles requests for the engine's reference allocation.
func (h *RFQHandler) GetReferenceAllocation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	allocation, err := h.Service.ReferenceAllocation(ctx, r.PathValue("rfqId"))
	if err != nil {
		h.handleServiceError(w, err, "failed to compute allocation")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, allocation)
}

// Finalize handles requests for finalizing an RFQ.
func (h *RFQHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var finalizeReq models.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&finalizeReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Finalize(ctx, r.PathValue("rfqId"), finalizeReq); err != nil {
		h.handleServiceError(w, err, "failed to finalize rfq")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "allocation finalized and vendors notified"})
}
