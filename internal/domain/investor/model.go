// Package investor holds the investor-specific profile attached 1:1 to a
// user with the INVESTOR role. Completion of a purchase requires one of
// these to exist for the buyer.
package investor

import "time"

// AccreditationStatus describes an investor's regulatory accreditation tier.
type AccreditationStatus string

const (
	AccreditationNone        AccreditationStatus = "NONE"
	AccreditationAccredited  AccreditationStatus = "ACCREDITED"
	AccreditationQualified   AccreditationStatus = "QUALIFIED_PURCHASER"
	AccreditationInstitution AccreditationStatus = "INSTITUTIONAL"
)

// RiskTolerance is an optional investor-stated risk appetite.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "CONSERVATIVE"
	RiskModerate     RiskTolerance = "MODERATE"
	RiskAggressive   RiskTolerance = "AGGRESSIVE"
)

// Profile is the investor-facing extension of a User record.
type Profile struct {
	ID                  string
	UserID              string
	FirstName           string
	LastName            string
	Country             string
	InvestorType        string
	RiskTolerance       RiskTolerance
	AccreditationStatus AccreditationStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
