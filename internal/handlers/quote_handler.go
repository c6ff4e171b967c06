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

// QuoteHandler handles HTTP requests for quotes.
type QuoteHandler struct {
	Service *services.QuoteService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(service *services.QuoteService, logger *log.Logger, timeout time.Duration) *QuoteHandler {
	return &QuoteHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *QuoteHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// SubmitQuote handles requests for submitting or revising a quote.
func (h *QuoteHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var quoteReq models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&quoteReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.Service.SubmitQuote(ctx, quoteReq)
	if err != nil {
		h.handleServiceError(w, err, "failed to submit quote")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, quote)
}

// AdjustQuote handles requests for adjusting one quote's price and allotment.
func (h *QuoteHandler) AdjustQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var adjustReq models.AdjustQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&adjustReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.Service.AdjustQuote(ctx, r.PathValue("quoteId"), adjustReq)
	if err != nil {
		h.handleServiceError(w, err, "failed to adjust quote")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, quote)
}

// GetRFQQuotes handles requests for listing the quotes of an RFQ.
func (h *QuoteHandler) GetRFQQuotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quotes, err := h.Service.GetRFQQuotes(ctx, r.PathValue("rfqId"))
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch quotes")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, quotes)
}
