package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"admissions-service/internal/catalog"
)

type Kind int

const (
	KindText Kind = iota
	KindDate
	KindEmail
	KindPhone
	KindSelect
	KindFile
)

type Option struct {
	Value string
	Label string
}

type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []Option
}

type Step struct {
	Title  string
	Fields []Field
}

// FieldError names a field that blocks the current step.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldGender      = "gender"
	FieldBirthDate   = "birthDate"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldCareer      = "career"
	FieldModality    = "modality"
	FieldScholarship = "scholarship"

	documentFieldPrefix = "document_"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// DefaultRequirements is shown when the document catalog cannot be read.
var DefaultRequirements = []string{
	"Acta de nacimiento",
	"CURP",
	"Certificado de bachillerato",
}

func DocumentField(id int64) string {
	return documentFieldPrefix + strconv.FormatInt(id, 10)
}

// DocumentID returns the required document id encoded in a file field name.
func DocumentID(field string) (int64, bool) {
	raw, ok := strings.CutPrefix(field, documentFieldPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func defaultSteps() []Step {
	return []Step{
		{
			Title: "Personal data",
			Fields: []Field{
				{Name: FieldFirstName, Label: "First name", Kind: KindText, Required: true},
				{Name: FieldLastName, Label: "Last name", Kind: KindText, Required: true},
				{Name: FieldGender, Label: "Gender", Kind: KindSelect, Required: true, Options: []Option{
					{Value: "F", Label: "Female"},
					{Value: "M", Label: "Male"},
					{Value: "O", Label: "Other"},
				}},
				{Name: FieldBirthDate, Label: "Birth date (YYYY-MM-DD)", Kind: KindDate, Required: true},
				{Name: FieldEmail, Label: "Email", Kind: KindEmail, Required: true},
				{Name: FieldPhone, Label: "Phone", Kind: KindPhone, Required: true},
			},
		},
		{
			Title: "Program",
			Fields: []Field{
				{Name: FieldCareer, Label: "Career", Kind: KindSelect, Required: true},
				{Name: FieldModality, Label: "Modality", Kind: KindSelect, Required: true},
			},
		},
		{
			Title: "Documents",
		},
		{
			Title: "Scholarship",
			Fields: []Field{
				{Name: FieldScholarship, Label: "Scholarship", Kind: KindSelect},
			},
		},
	}
}

func documentFields(docs []catalog.RequiredDocument) []Field {
	fields := make([]Field, len(docs))
	for i, d := range docs {
		fields[i] = Field{
			Name:     DocumentField(d.ID),
			Label:    d.Name,
			Kind:     KindFile,
			Required: d.Mandatory,
		}
	}
	return fields
}

// checkField applies the rules of one field to its text value or files.
func checkField(f Field, value string, files []string) (string, bool) {
	if f.Kind == KindFile {
		if f.Required && len(files) == 0 {
			return "select a file", false
		}
		return "", true
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if f.Required {
			return "required", false
		}
		return "", true
	}

	switch f.Kind {
	case KindEmail:
		if !emailPattern.MatchString(value) {
			return "not a valid email address", false
		}
	case KindPhone:
		if !phonePattern.MatchString(value) {
			return "must be exactly 10 digits", false
		}
	}
	return "", true
}
