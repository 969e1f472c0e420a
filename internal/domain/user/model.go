// Package user holds the platform identity model: the accounts that act
// against the marketplace (bank staff, investors, auditors) and the KYC
// status gating purchases and bids.
package user

import "time"

// Role identifies the capacity in which a user acts against the platform.
type Role string

const (
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
	RoleBankAdmin      Role = "BANK_ADMIN"
	RoleBankViewer     Role = "BANK_VIEWER"
	RoleInvestor       Role = "INVESTOR"
	RoleAuditor        Role = "AUDITOR"
)

// KYCStatus tracks identity-verification progress for a user.
type KYCStatus string

const (
	KYCPending    KYCStatus = "PENDING"
	KYCInProgress KYCStatus = "IN_PROGRESS"
	KYCVerified   KYCStatus = "VERIFIED"
	KYCRejected   KYCStatus = "REJECTED"
	KYCExpired    KYCStatus = "EXPIRED"
)

// User is a platform identity. Email and WalletAddress are optional but, when
// present, must be unique across all users.
type User struct {
	ID            string
	Email         string
	WalletAddress string
	Role          Role
	KYCStatus     KYCStatus
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsVerified reports whether the user may purchase or bid.
func (u User) IsVerified() bool {
	return u.KYCStatus == KYCVerified
}
