// Package wizard holds the state of the multi step admission form: which
// step is showing, what the applicant typed, which catalog entries are
// offered, and the outcome of the last submission.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"admissions-service/common/apperror"
	"admissions-service/internal/applicant"
	"admissions-service/internal/catalog"
	"admissions-service/internal/intake"

	"github.com/looplab/fsm"
)

const (
	StepPersonal = iota
	StepProgram
	StepDocuments
	StepScholarship
)

const (
	eventNext  = "next"
	eventPrev  = "prev"
	eventReset = "reset"
)

type Catalog interface {
	Careers(ctx context.Context) ([]catalog.Career, error)
	Modalities(ctx context.Context) ([]catalog.Modality, error)
	RequiredDocuments(ctx context.Context) ([]catalog.RequiredDocument, error)
	Scholarships(ctx context.Context) ([]catalog.Scholarship, error)
	Scholarship(ctx context.Context, id int64) (*catalog.Scholarship, error)
}

type Submitter interface {
	Submit(ctx context.Context, s *intake.Session) (*intake.Result, error)
}

// Status is the message shown under the form.
type Status struct {
	Message string
	Success bool
}

type Wizard struct {
	fsm       *fsm.FSM
	catalog   Catalog
	submitter Submitter
	logger    *slog.Logger

	mu           sync.Mutex
	steps        []Step
	values       map[string]string
	files        map[string][]string
	documents    []catalog.RequiredDocument
	requirements []string
	detail       *catalog.Scholarship
	status       Status
	revealPrev   bool
}

func New(cat Catalog, submitter Submitter, logger *slog.Logger) *Wizard {
	w := &Wizard{
		catalog:   cat,
		submitter: submitter,
		logger:    logger,
		steps:     defaultSteps(),
		values:    map[string]string{},
		files:     map[string][]string{},
	}

	n := len(w.steps)
	var events fsm.Events
	for i := 0; i < n-1; i++ {
		events = append(events,
			fsm.EventDesc{Name: eventNext, Src: []string{stateName(i)}, Dst: stateName(i + 1)},
			fsm.EventDesc{Name: eventPrev, Src: []string{stateName(i + 1)}, Dst: stateName(i)},
		)
	}
	resetFrom := make([]string, 0, n-1)
	for i := 1; i < n; i++ {
		resetFrom = append(resetFrom, stateName(i))
	}
	events = append(events, fsm.EventDesc{Name: eventReset, Src: resetFrom, Dst: stateName(0)})

	w.fsm = fsm.NewFSM(
		stateName(0),
		events,
		fsm.Callbacks{
			"enter_" + stateName(StepDocuments):   w.onEnterDocuments,
			"enter_" + stateName(StepScholarship): w.onEnterScholarship,
		},
	)
	return w
}

func stateName(i int) string {
	return "step-" + strconv.Itoa(i)
}

// Start loads the career and modality options for the program step.
func (w *Wizard) Start(ctx context.Context) {
	careers, err := w.catalog.Careers(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to load careers", "error", err)
		w.setStatus("could not load the available careers", false)
	}
	modalities, err := w.catalog.Modalities(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to load modalities", "error", err)
		w.setStatus("could not load the available modalities", false)
	}

	careerOpts := make([]Option, len(careers))
	for i, c := range careers {
		careerOpts[i] = Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name}
	}
	modalityOpts := make([]Option, len(modalities))
	for i, m := range modalities {
		modalityOpts[i] = Option{Value: strconv.FormatInt(m.ID, 10), Label: m.Name}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setOptions(StepProgram, FieldCareer, careerOpts)
	w.setOptions(StepProgram, FieldModality, modalityOpts)
}

func (w *Wizard) onEnterDocuments(ctx context.Context, e *fsm.Event) {
	if e.Event != eventNext {
		return
	}

	docs, err := w.catalog.RequiredDocuments(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.logger.WarnContext(ctx, "failed to load required documents", "error", err)
		w.documents = nil
		w.requirements = DefaultRequirements
		w.steps[StepDocuments].Fields = nil
		w.status = Status{Message: "could not load the required documents, showing the default list"}
		return
	}

	w.documents = docs
	w.requirements = make([]string, len(docs))
	for i, d := range docs {
		w.requirements[i] = d.Name
	}
	w.steps[StepDocuments].Fields = documentFields(docs)
}

func (w *Wizard) onEnterScholarship(ctx context.Context, e *fsm.Event) {
	if e.Event != eventNext {
		return
	}

	list, err := w.catalog.Scholarships(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to load scholarships", "error", err)
	}

	opts := make([]Option, 0, len(list)+1)
	opts = append(opts, Option{Value: "", Label: "No scholarship"})
	for _, s := range list {
		opts = append(opts, Option{Value: strconv.FormatInt(s.ID, 10), Label: s.Name})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setOptions(StepScholarship, FieldScholarship, opts)
}

func (w *Wizard) setOptions(step int, field string, opts []Option) {
	for i := range w.steps[step].Fields {
		if w.steps[step].Fields[i].Name == field {
			w.steps[step].Fields[i].Options = opts
		}
	}
}

func (w *Wizard) setStatus(msg string, success bool) {
	w.mu.Lock()
	w.status = Status{Message: msg, Success: success}
	w.mu.Unlock()
}

// Step returns the index of the step being shown.
func (w *Wizard) Step() int {
	n, _ := strconv.Atoi(strings.TrimPrefix(w.fsm.Current(), "step-"))
	return n
}

func (w *Wizard) StepCount() int {
	return len(w.steps)
}

func (w *Wizard) IsLast() bool {
	return w.Step() == len(w.steps)-1
}

// Current returns a copy of the step being shown.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.steps[w.Step()]
	s.Fields = append([]Field(nil), s.Fields...)
	return s
}

func (w *Wizard) Set(field, value string) {
	w.mu.Lock()
	w.values[field] = value
	w.mu.Unlock()
}

func (w *Wizard) Value(field string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values[field]
}

// SetFiles replaces the files chosen for a file field. No paths clears it.
func (w *Wizard) SetFiles(field string, paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(paths) == 0 {
		delete(w.files, field)
		return
	}
	w.files[field] = append([]string(nil), paths...)
}

func (w *Wizard) Files(field string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.files[field]...)
}

func (w *Wizard) Requirements() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.requirements...)
}

func (w *Wizard) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// ShowPrev reports whether the previous step affordance is offered.
func (w *Wizard) ShowPrev() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revealPrev || w.Step() > 0
}

// SelectScholarship records the choice and loads its details. An empty
// value means no scholarship.
func (w *Wizard) SelectScholarship(ctx context.Context, value string) {
	w.Set(FieldScholarship, value)

	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		w.setDetail(nil)
		return
	}

	s, err := w.catalog.Scholarship(ctx, id)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to load scholarship details", "scholarship_id", id, "error", err)
		w.setDetail(nil)
		return
	}
	w.setDetail(s)
}

func (w *Wizard) setDetail(s *catalog.Scholarship) {
	w.mu.Lock()
	w.detail = s
	w.mu.Unlock()
}

func (w *Wizard) ScholarshipDetail() *catalog.Scholarship {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detail
}

// Validate checks every field of the current step.
func (w *Wizard) Validate() []FieldError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateLocked(w.Step())
}

func (w *Wizard) validateLocked(step int) []FieldError {
	var errs []FieldError
	for _, f := range w.steps[step].Fields {
		if msg, ok := checkField(f, w.values[f.Name], w.files[f.Name]); !ok {
			errs = append(errs, FieldError{Field: f.Name, Label: f.Label, Message: msg})
		}
	}
	return errs
}

func (w *Wizard) check() error {
	errs := w.Validate()
	if len(errs) == 0 {
		return nil
	}
	details := make([]string, len(errs))
	for i, e := range errs {
		details[i] = e.String()
	}
	err := apperror.Validation("", "please complete all required fields correctly", details...)
	w.setStatus(err.Message, false)
	return err
}

// Next moves forward when the current step validates.
func (w *Wizard) Next(ctx context.Context) error {
	if w.IsLast() {
		return fmt.Errorf("already at the last step")
	}
	if err := w.check(); err != nil {
		return err
	}
	w.setStatus("", false)
	return w.fsm.Event(ctx, eventNext)
}

// Prev moves back one step.
func (w *Wizard) Prev(ctx context.Context) error {
	if w.Step() == 0 {
		return fmt.Errorf("already at the first step")
	}
	w.setStatus("", false)
	return w.fsm.Event(ctx, eventPrev)
}

// Submit validates the last step and runs the intake pipeline. Success
// returns the form to its first step empty. Failure keeps the position and
// offers going back to correct the data.
func (w *Wizard) Submit(ctx context.Context) (*intake.Result, error) {
	if !w.IsLast() {
		return nil, fmt.Errorf("submit is only possible from the last step")
	}
	if err := w.check(); err != nil {
		return nil, err
	}

	session, err := w.Session()
	if err != nil {
		w.fail(err)
		return nil, err
	}

	res, err := w.submitter.Submit(ctx, session)
	if err != nil {
		w.fail(err)
		return nil, err
	}

	if err := w.fsm.Event(ctx, eventReset); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.values = map[string]string{}
	w.files = map[string][]string{}
	w.detail = nil
	w.revealPrev = false
	w.status = Status{Message: res.Message, Success: true}
	w.mu.Unlock()
	return res, nil
}

func (w *Wizard) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.revealPrev = true
	w.status = Status{Message: errorMessage(err)}
}

func errorMessage(err error) string {
	msg := "Error: " + err.Error()
	if appErr, ok := apperror.As(err); ok && len(appErr.Details) > 0 {
		msg += " (" + strings.Join(appErr.Details, ", ") + ")"
	}
	return msg
}

// Session builds the pipeline input from the collected values.
func (w *Wizard) Session() (*intake.Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := func(name string) string { return strings.TrimSpace(w.values[name]) }

	careerID, err := strconv.ParseInt(v(FieldCareer), 10, 64)
	if err != nil {
		return nil, apperror.Validation("", "select a career")
	}
	modalityID, err := strconv.ParseInt(v(FieldModality), 10, 64)
	if err != nil {
		return nil, apperror.Validation("", "select a modality")
	}

	var scholarshipID int64
	if raw := v(FieldScholarship); raw != "" {
		scholarshipID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperror.Validation("", "invalid scholarship selection")
		}
	}

	var files []intake.File
	for _, f := range w.steps[StepDocuments].Fields {
		id, ok := DocumentID(f.Name)
		if !ok {
			continue
		}
		for _, path := range w.files[f.Name] {
			files = append(files, intake.FileFromPath(id, path))
		}
	}

	return &intake.Session{
		Applicant: applicant.CreateRequest{
			FirstName: v(FieldFirstName),
			LastName:  v(FieldLastName),
			Gender:    v(FieldGender),
			BirthDate: v(FieldBirthDate),
			Email:     v(FieldEmail),
			Phone:     v(FieldPhone),
		},
		CareerID:          careerID,
		ModalityID:        modalityID,
		RequiredDocuments: append([]catalog.RequiredDocument(nil), w.documents...),
		Files:             files,
		ScholarshipID:     scholarshipID,
	}, nil
}
