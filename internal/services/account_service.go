package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"
	"github.com/leaf-logistics/rfq-service/internal/repository"
	"github.com/leaf-logistics/rfq-service/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 10 * time.Minute

// AccountService handles registration, approval and one-time passcodes.
type AccountService struct {
	Accounts repository.AccountRepository
	Vendors  repository.VendorRepository
	notifier Notifier
	logger   *log.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts repository.AccountRepository, vendors repository.VendorRepository, notifier Notifier, logger *log.Logger) *AccountService {
	return &AccountService{
		Accounts: accounts,
		Vendors:  vendors,
		notifier: notifier,
		logger:   logger,
	}
}

// Register creates a pending account with a bcrypt-hashed password and sends
// the welcome mail.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	if req.Username == "" || req.Password == "" || req.VendorName == "" || req.Email == "" || req.ContactNumber == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to hash password")
	}

	acc, err := s.Accounts.CreateAccount(ctx, models.Account{
		Username:      req.Username,
		PasswordHash:  string(hash),
		VendorName:    req.VendorName,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to register account")
	}

	body := fmt.Sprintf("Dear %s,\n\nThank you for registering. Your account is currently pending admin approval.\nYou will be notified once your account has been approved.\n\nBest regards,\nTeam LEAF.\n", acc.Username)
	if err := s.notifier.Send([]string{acc.Email}, "Welcome to LEAF", body); err != nil {
		s.logger.Printf("failed to send welcome mail to %s: %v", acc.Email, err)
	}

	return acc, nil
}

// PendingAccounts returns a page of accounts awaiting approval.
func (s *AccountService) PendingAccounts(ctx context.Context, limitStr, offsetStr string) ([]models.Account, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	return s.Accounts.GetPendingAccounts(ctx, limit, offset)
}

// Approve marks a pending account approved and creates its vendor record.
func (s *AccountService) Approve(ctx context.Context, accountId string) (*models.Vendor, error) {
	existing, err := s.Accounts.GetAccount(ctx, accountId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch account")
	}
	if existing == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "account not found")
	}
	if existing.Status != models.PendingAccount {
		return nil, models.NewErrorResponse(http.StatusConflict, "account has already been processed")
	}

	acc, err := s.Accounts.UpdateAccountStatus(ctx, accountId, models.ApprovedAccount)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to update account")
	}
	if acc == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "account not found")
	}

	vendor, err := s.Vendors.CreateVendor(ctx, models.Vendor{
		Username:      acc.Username,
		VendorName:    acc.VendorName,
		Email:         acc.Email,
		ContactNumber: acc.ContactNumber,
	})
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to create vendor")
	}

	body := fmt.Sprintf("Dear %s,\n\nYour account has been approved. You can now log in and participate in RFQs.\n\nBest regards,\nTeam LEAF.\n", acc.Username)
	if err := s.notifier.Send([]string{acc.Email}, "Account Approved", body); err != nil {
		s.logger.Printf("failed to send approval mail to %s: %v", acc.Email, err)
	}

	return vendor, nil
}

// Decline marks a pending account declined.
func (s *AccountService) Decline(ctx context.Context, accountId string) error {
	existing, err := s.Accounts.GetAccount(ctx, accountId)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch account")
	}
	if existing == nil {
		return models.NewErrorResponse(http.StatusNotFound, "account not found")
	}
	if existing.Status != models.PendingAccount {
		return models.NewErrorResponse(http.StatusConflict, "account has already been processed")
	}

	acc, err := s.Accounts.UpdateAccountStatus(ctx, accountId, models.DeclinedAccount)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to update account")
	}
	if acc == nil {
		return models.NewErrorResponse(http.StatusNotFound, "account not found")
	}

	body := fmt.Sprintf("Dear %s,\n\nYour registration was not approved. Please contact the procurement team for details.\n\nBest regards,\nTeam LEAF.\n", acc.Username)
	if err := s.notifier.Send([]string{acc.Email}, "Account Declined", body); err != nil {
		s.logger.Printf("failed to send decline mail to %s: %v", acc.Email, err)
	}

	return nil
}

// SendOTP issues a 6-digit one-time passcode to the email address.
func (s *AccountService) SendOTP(ctx context.Context, email string) error {
	if email == "" {
		return models.NewErrorResponse(http.StatusBadRequest, "email is required")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to generate otp")
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.Accounts.SaveVerification(ctx, models.Verification{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(otpTTL),
	}); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to store otp")
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.\n", code, int(otpTTL.Minutes()))
	if err := s.notifier.Send([]string{email}, "Your Verification Code", body); err != nil {
		return models.NewErrorResponse(http.StatusBadGateway, "failed to send otp email")
	}

	return nil
}

// VerifyOTP checks a one-time passcode and consumes it on success.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return models.NewErrorResponse(http.StatusBadRequest, "email and otp are required")
	}

	v, err := s.Accounts.GetVerification(ctx, email, code)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to check otp")
	}
	if v == nil {
		return models.NewErrorResponse(http.StatusBadRequest, "invalid otp")
	}
	if time.Now().UTC().After(v.ExpiresAt) {
		return models.NewErrorResponse(http.StatusBadRequest, "otp has expired")
	}

	if err := s.Accounts.DeleteVerification(ctx, email); err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to consume otp")
	}
	return nil
}
