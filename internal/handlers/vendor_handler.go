package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
	"github.com/leaf-logistics/rfq-service/internal/repository"
	"github.com/leaf-logistics/rfq-service/internal/utils"
)

// VendorHandler handles HTTP requests for the vendor directory.
type VendorHandler struct {
	Repo    repository.VendorRepository
	Logger  *log.Logger
	Timeout time.Duration
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(repo repository.VendorRepository, logger *log.Logger, timeout time.Duration) *VendorHandler {
	return &VendorHandler{
		Repo:    repo,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetVendors handles requests for listing vendors. An optional name query
// parameter looks a single vendor up by display name.
func (h *VendorHandler) GetVendors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if name := r.URL.Query().Get("name"); name != "" {
		vendor, err := h.Repo.GetByName(ctx, name)
		if err != nil {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch vendor")
			return
		}
		if vendor == nil {
			utils.SendErrorResponse(w, http.StatusNotFound, "vendor not found")
			return
		}
		utils.SendJSONResponse(w, http.StatusOK, []models.Vendor{*vendor})
		return
	}

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	vendors, err := h.Repo.GetVendors(ctx, limit, offset)
	if err != nil {
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch vendors")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, vendors)
}
