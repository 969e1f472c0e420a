// Package bank holds the issuing-bank model. A Bank owns the Assets it
// submits for tokenization.
package bank

import "time"

// Bank is an issuing institution. Code is a short unique identifier used in
// symbols and reporting.
type Bank struct {
	ID          string
	Name        string
	Code        string
	AdminUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
