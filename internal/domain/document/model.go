// Package document holds the supporting-document model attached to an
// Asset. Two document types (APPRAISAL, LEGAL_OPINION) gate submission for
// tokenization review.
package document

import "time"

// Type enumerates supported document kinds.
type Type string

const (
	TypeAppraisal          Type = "APPRAISAL"
	TypeLegalOpinion       Type = "LEGAL_OPINION"
	TypeFinancialStatement Type = "FINANCIAL_STATEMENT"
	TypeTitleDeed          Type = "TITLE_DEED"
	TypeInsurance          Type = "INSURANCE"
	TypeProspectus         Type = "PROSPECTUS"
	TypeTermSheet          Type = "TERM_SHEET"
	TypeOther              Type = "OTHER"
)

// RequiredForReview lists the document types submitForReview checks for.
var RequiredForReview = []Type{TypeAppraisal, TypeLegalOpinion}

// Document is an opaque storage-backed file attached to an Asset. The blob
// itself lives in a document store outside this module; only the pointer
// (StorageKey) and descriptive metadata are persisted here.
type Document struct {
	ID          string
	AssetID     string
	Type        Type
	Name        string
	StorageKey  string
	MIMEType    string
	SizeBytes   int64
	UploadedBy  string
	CreatedAt   time.Time
}
