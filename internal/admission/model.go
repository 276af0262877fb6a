package admission

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
	StatusEnrolled = "Enrolled"
)

// Request ties an applicant to a career and modality. Only Pending
// requests are created here; the other statuses are set by enrollment.
type Request struct {
	bun.BaseModel `bun:"table:admission_requests,alias:ar"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	ApplicantID int64      `bun:"applicant_id,notnull" json:"applicantId"`
	CareerID    int64      `bun:"career_id,notnull" json:"careerId"`
	ModalityID  int64      `bun:"modality_id,notnull" json:"modalityId"`
	SubmittedOn time.Time  `bun:"submitted_on,type:date,notnull" json:"submittedOn"`
	Status      string     `bun:"status,notnull" json:"status"`
	EnrolledOn  *time.Time `bun:"enrolled_on,type:date,nullzero" json:"enrolledOn"`
}

func (*Request) ForeignKeys() []string {
	return []string{
		`("applicant_id") REFERENCES "applicants" ("id") ON DELETE CASCADE`,
		`("career_id") REFERENCES "careers" ("id")`,
		`("modality_id") REFERENCES "modalities" ("id")`,
	}
}

type CreateInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status" validate:"required"`
	ApplicantID int64  `json:"applicantId" validate:"required,gt=0"`
	CareerID    int64  `json:"careerId" validate:"required,gt=0"`
	ModalityID  int64  `json:"modalityId" validate:"required,gt=0"`
}

type CreateResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
