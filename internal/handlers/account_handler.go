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

// AccountHandler handles HTTP requests for registration and approval.
type AccountHandler struct {
	Service *services.AccountService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService, logger *log.Logger, timeout time.Duration) *AccountHandler {
	return &AccountHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// Register handles account registration requests.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acc, err := h.Service.Register(ctx, registerReq)
	if err != nil {
		h.handleServiceError(w, err, "failed to register account")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, acc)
}

// PendingAccounts handles requests for listing pending accounts.
func (h *AccountHandler) PendingAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	accounts, err := h.Service.PendingAccounts(ctx, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch pending accounts")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, accounts)
}

// Approve handles account approval requests.
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	vendor, err := h.Service.Approve(ctx, r.PathValue("accountId"))
	if err != nil {
		h.handleServiceError(w, err, "failed to approve account")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, vendor)
}

// Decline handles account decline requests.
func (h *AccountHandler) Decline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.Decline(ctx, r.PathValue("accountId")); err != nil {
		h.handleServiceError(w, err, "failed to decline account")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "account declined"})
}

// SendOTP handles requests for issuing a one-time passcode.
func (h *AccountHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SendOTP(ctx, body.Email); err != nil {
		h.handleServiceError(w, err, "failed to send otp")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "otp sent"})
}

// VerifyOTP handles requests for verifying a one-time passcode.
func (h *AccountHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.VerifyOTP(ctx, body.Email, body.OTP); err != nil {
		h.handleServiceError(w, err, "failed to verify otp")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "otp verified"})
}
