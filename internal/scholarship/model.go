package scholarship

import (
	"time"

	"github.com/uptrace/bun"
)

// Assignment links an admission request to a scholarship from the catalog.
type Assignment struct {
	bun.BaseModel `bun:"table:scholarship_assignments,alias:sa"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	AdmissionRequestID int64     `bun:"admission_request_id,notnull" json:"admissionRequestId"`
	ScholarshipID      int64     `bun:"scholarship_id,notnull" json:"scholarshipId"`
	AssignedOn         time.Time `bun:"assigned_on,type:date,notnull" json:"assignedOn"`
}

func (*Assignment) ForeignKeys() []string {
	return []string{
		`("admission_request_id") REFERENCES "admission_requests" ("id") ON DELETE CASCADE`,
		`("scholarship_id") REFERENCES "scholarships" ("id")`,
	}
}

type AssignInput struct {
	RequestID     int64 `json:"requestId" validate:"required,gt=0"`
	ScholarshipID int64 `json:"scholarshipId" validate:"required,gt=0"`
}

type AssignResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
