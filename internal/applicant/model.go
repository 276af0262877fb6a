package applicant

import (
	"time"

	"github.com/uptrace/bun"
)

type Applicant struct {
	bun.BaseModel `bun:"table:applicants,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName string    `bun:"first_name,notnull" json:"firstName"`
	LastName  string    `bun:"last_name,notnull" json:"lastName"`
	Gender    string    `bun:"gender,notnull" json:"gender"`
	BirthDate time.Time `bun:"birth_date,type:date,notnull" json:"birthDate"`
	Email     string    `bun:"email,notnull" json:"email"`
	Phone     string    `bun:"phone,notnull" json:"phone"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// CreateRequest carries the six personal fields collected by the first
// wizard step.
type CreateRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Gender    string `json:"gender" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,numeric,len=10"`
}

type CreateResponse struct {
	ID int64 `json:"id"`
}
