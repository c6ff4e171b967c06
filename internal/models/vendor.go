package models

import "time"

type AccountStatus string // Approval state of a registered account

const (
	PendingAccount  AccountStatus = "pending"
	ApprovedAccount AccountStatus = "approved"
	DeclinedAccount AccountStatus = "declined"
)

// Vendor is a participant eligible to receive RFQs and submit quotes.
// Created as a side effect of account approval.
type Vendor struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	VendorName    string `json:"vendorName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

// Account is a registration awaiting (or past) admin approval.
type Account struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	PasswordHash  string        `json:"-"`
	VendorName    string        `json:"vendorName"`
	Email         string        `json:"email"`
	ContactNumber string        `json:"contactNumber"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	VendorName    string `json:"vendorName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

// Verification is a one-time passcode issued to an email address.
type Verification struct {
	Email     string    `json:"email"`
	Code      string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
}
