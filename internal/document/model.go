package document

import (
	"time"

	"github.com/uptrace/bun"
)

// SubmittedDocument records a placed file handed in for an admission request.
type SubmittedDocument struct {
	bun.BaseModel `bun:"table:submitted_documents,alias:sd"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	AdmissionRequestID int64     `bun:"admission_request_id,notnull" json:"admissionRequestId"`
	ApplicantID        int64     `bun:"applicant_id,notnull" json:"applicantId"`
	RequiredDocumentID int64     `bun:"required_document_id,notnull" json:"requiredDocumentId"`
	DeliveredOn        time.Time `bun:"delivered_on,type:date,notnull" json:"deliveredOn"`
	Path               string    `bun:"path,notnull" json:"path"`
	Validated          bool      `bun:"validated,notnull,default:false" json:"validated"`
}

func (*SubmittedDocument) ForeignKeys() []string {
	return []string{
		`("admission_request_id") REFERENCES "admission_requests" ("id") ON DELETE CASCADE`,
		`("applicant_id") REFERENCES "applicants" ("id") ON DELETE CASCADE`,
		`("required_document_id") REFERENCES "required_documents" ("id")`,
	}
}

// UploadInput is a multipart upload. Documents are aligned by index with
// DocumentIDs; Tagged uploads already name their required document.
type UploadInput struct {
	ApplicantID string
	Documents   []Upload
	DocumentIDs []string
	Tagged      []TaggedUpload
}

type TaggedUpload struct {
	Upload             Upload
	RequiredDocumentID string
}

type UploadResult struct {
	Success     bool             `json:"success"`
	Documents   []PlacedDocument `json:"documents"`
	DocumentIDs []string         `json:"documentIds"`
}

type RegisterEntry struct {
	RequiredDocumentID int64  `json:"requiredDocumentId" validate:"required,gt=0"`
	Path               string `json:"path" validate:"required"`
}

type RegisterInput struct {
	Documents   []RegisterEntry `json:"documents" validate:"dive"`
	RequestID   int64           `json:"requestId" validate:"required,gt=0"`
	ApplicantID int64           `json:"applicantId" validate:"required,gt=0"`
}

type RegisterResult struct {
	Success             bool  `json:"success"`
	DocumentsRegistered int64 `json:"documentsRegistered"`
}
