package catalog

import "github.com/uptrace/bun"

type Career struct {
	bun.BaseModel `bun:"table:careers,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id" yaml:"-"`
	Name string `bun:"name,notnull" json:"name" yaml:"name"`
}

type Modality struct {
	bun.BaseModel `bun:"table:modalities,alias:m"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id" yaml:"-"`
	Name string `bun:"name,notnull" json:"name" yaml:"name"`
}

// RequiredDocument is a document type an applicant may have to hand in.
type RequiredDocument struct {
	bun.BaseModel `bun:"table:required_documents,alias:rd"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id" yaml:"-"`
	Name      string `bun:"name,notnull" json:"name" yaml:"name"`
	Mandatory bool   `bun:"mandatory,notnull,default:false" json:"mandatory" yaml:"mandatory"`
}

type Scholarship struct {
	bun.BaseModel `bun:"table:scholarships,alias:s"`

	ID                   int64   `bun:"id,pk,autoincrement" json:"id" yaml:"-"`
	Name                 string  `bun:"name,notnull" json:"name" yaml:"name"`
	Description          string  `bun:"description" json:"description" yaml:"description"`
	MonthlyAmount        float64 `bun:"monthly_amount" json:"monthlyAmount" yaml:"monthly_amount"`
	AnnualAmount         float64 `bun:"annual_amount" json:"annualAmount" yaml:"annual_amount"`
	IncludesReenrollment bool    `bun:"includes_reenrollment,notnull,default:false" json:"includesReenrollment" yaml:"includes_reenrollment"`
}

// Models lists the catalog tables in migration order.
func Models() []any {
	return []any{
		(*Career)(nil),
		(*Modality)(nil),
		(*RequiredDocument)(nil),
		(*Scholarship)(nil),
	}
}

// MandatoryIDs returns the ids of the mandatory documents in docs.
func MandatoryIDs(docs []RequiredDocument) []int64 {
	var ids []int64
	for _, d := range docs {
		if d.Mandatory {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
