package router

import (
	"net/http"

	"github.com/leaf-logistics/rfq-service/internal/handlers"
)

// InitRoutes wires all handlers into one ServeMux.
func InitRoutes(rfqHandler *handlers.RFQHandler, quoteHandler *handlers.QuoteHandler, vendorHandler *handlers.VendorHandler, accountHandler *handlers.AccountHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/rfqs/new", rfqHandler.CreateRFQ)
	mux.HandleFunc("GET /api/rfqs", rfqHandler.GetRFQs)
	mux.HandleFunc("GET /api/rfqs/next-number", rfqHandler.NextRFQNumber)
	mux.HandleFunc("GET /api/rfqs/{rfqId}", rfqHandler.GetRFQ)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/vendors", rfqHandler.AddVendors)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/remind", rfqHandler.SendReminders)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/allocation", rfqHandler.GetReferenceAllocation)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/finalize", rfqHandler.Finalize)

	mux.HandleFunc("POST /api/quotes/new", quoteHandler.SubmitQuote)
	mux.HandleFunc("PUT /api/quotes/{quoteId}", quoteHandler.AdjustQuote)
	mux.HandleFunc("GET /api/quotes/{rfqId}/list", quoteHandler.GetRFQQuotes)

	mux.HandleFunc("GET /api/vendors", vendorHandler.GetVendors)

	mux.HandleFunc("POST /api/accounts/register", accountHandler.Register)
	mux.HandleFunc("GET /api/accounts/pending", accountHandler.PendingAccounts)
	mux.HandleFunc("POST /api/accounts/send-otp", accountHandler.SendOTP)
	mux.HandleFunc("POST /api/accounts/verify-otp", accountHandler.VerifyOTP)
	mux.HandleFunc("POST /api/accounts/{accountId}/approve", accountHandler.Approve)
	mux.HandleFunc("POST /api/accounts/{accountId}/decline", accountHandler.Decline)

	return mux
}
