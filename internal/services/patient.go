package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/records"
)

const (
	noName     = "(No Name)"
	dateLayout = "2006-01-02"
)

// Vitals input bounds.
const (
	MaxSystolic  = 300
	MaxDiastolic = 200
	MaxPulse     = 200
	MinTemp      = 30.0
	MaxTemp      = 45.0
)

// RecordSummary is one row of the record list.
type RecordSummary struct {
	ID          string
	PatientName string
}

// PatientForm is what the edit screen submits. Vitals is the reading to
// append; its DateTime is ignored and stamped on save.
type PatientForm struct {
	PatientName        string
	DateOfBirth        string
	AdmissionDate      string
	Gender             string
	AttendingPhysician string
	Diagnosis          string
	Allergies          string
	Notes              string
	MAR                models.MAR
	Vitals             models.Vital
}

// NewPatientForm returns the form defaults for a record that has no data yet.
func NewPatientForm(now time.Time) PatientForm {
	today := now.Format(dateLayout)
	return PatientForm{
		DateOfBirth:        today,
		AdmissionDate:      today,
		Gender:             models.Genders[0],
		AttendingPhysician: models.Physicians[0],
		Vitals:             models.DefaultVital,
	}
}

// FormFor prefills a form from rec, taking the vitals inputs from the last
// reading.
func FormFor(rec *models.PatientRecord, now time.Time) PatientForm {
	f := NewPatientForm(now)
	if rec.IsEmpty() {
		return f
	}
	f.PatientName = rec.PatientName
	f.Diagnosis = rec.Diagnosis
	f.Allergies = rec.Allergies
	f.Notes = rec.Notes
	f.MAR = rec.MAR
	if rec.DateOfBirth != "" {
		f.DateOfBirth = rec.DateOfBirth
	}
	if rec.AdmissionDate != "" {
		f.AdmissionDate = rec.AdmissionDate
	}
	if rec.Gender != "" {
		f.Gender = rec.Gender
	}
	if rec.AttendingPhysician != "" {
		f.AttendingPhysician = rec.AttendingPhysician
	}
	if v, ok := rec.LastVital(); ok {
		f.Vitals = v
	}
	return f
}

// Validate checks choice fields, dates and vitals ranges.
func (f *PatientForm) Validate() error {
	if f.Gender != "" && !slices.Contains(models.Genders, f.Gender) {
		return fmt.Errorf("%w: gender %q", common.ErrInvalidInput, f.Gender)
	}
	if f.AttendingPhysician != "" && !slices.Contains(models.Physicians, f.AttendingPhysician) {
		return fmt.Errorf("%w: attending physician %q", common.ErrInvalidInput, f.AttendingPhysician)
	}
	for name, d := range map[string]string{"date of birth": f.DateOfBirth, "admission date": f.AdmissionDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("%w: %s %q", common.ErrInvalidInput, name, d)
		}
	}

	v := f.Vitals
	switch {
	case v.Systolic < 0 || v.Systolic > MaxSystolic:
		return fmt.Errorf("%w: systolic %d out of range 0..%d", common.ErrInvalidInput, v.Systolic, MaxSystolic)
	case v.Diastolic < 0 || v.Diastolic > MaxDiastolic:
		return fmt.Errorf("%w: diastolic %d out of range 0..%d", common.ErrInvalidInput, v.Diastolic, MaxDiastolic)
	case v.Pulse < 0 || v.Pulse > MaxPulse:
		return fmt.Errorf("%w: pulse %d out of range 0..%d", common.ErrInvalidInput, v.Pulse, MaxPulse)
	case v.Temperature < MinTemp || v.Temperature > MaxTemp:
		return fmt.Errorf("%w: temperature %.1f out of range %.1f..%.1f", common.ErrInvalidInput, v.Temperature, MinTemp, MaxTemp)
	}
	return nil
}

// PatientService defines the patient record use cases.
//
// Contract:
//   - Get: the record for id, or common.ErrorNotFound when none is stored.
//   - List: all records as (id, name) sorted by id.
//   - Delete: remove a record.
//   - Save: write the form under id (allocating one when empty) and append
//     one vitals reading; returns the id used.
type PatientService interface {
	Get(ctx context.Context, id string) (*models.PatientRecord, error)
	List(ctx context.Context) ([]RecordSummary, error)
	Delete(ctx context.Context, id string) error
	Save(ctx context.Context, id string, form PatientForm) (string, error)
}

type patientService struct {
	mu    sync.Mutex
	store records.Store
	log   logging.Logger
	now   func() time.Time
}

// PatientOption customizes NewPatientService.
type PatientOption func(*patientService)

// WithClock replaces time.Now for vitals stamps.
func WithClock(now func() time.Time) PatientOption {
	return func(s *patientService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) PatientOption {
	return func(s *patientService) { s.log = l }
}

// NewPatientService constructs a PatientService over store.
func NewPatientService(store records.Store, opts ...PatientOption) PatientService {
	s := &patientService{store: store, log: logging.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *patientService) Get(ctx context.Context, id string) (*models.PatientRecord, error) {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return nil, fmt.Errorf("record %q: %w", strings.TrimSpace(id), common.ErrorNotFound)
	}
	return rec, nil
}

func (s *patientService) List(ctx context.Context) ([]RecordSummary, error) {
	ids, err := records.SortedIDs(ctx, s.store)
	if err != nil {
		return nil, err
	}

	out := make([]RecordSummary, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		name := rec.PatientName
		if name == "" {
			name = noName
		}
		out = append(out, RecordSummary{ID: id, PatientName: name})
	}
	return out, nil
}

func (s *patientService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "record deleted", "id", strings.TrimSpace(id))
	return nil
}

func (s *patientService) Save(ctx context.Context, id string, form PatientForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		newID, err := s.store.Create(ctx, func(id string) (*models.PatientRecord, error) {
			return s.apply(&models.PatientRecord{}, id, form), nil
		})
		if err != nil {
			return "", err
		}
		s.log.Info(ctx, "record created", "id", newID)
		return newID, nil
	}

	current, err := s.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	rec := s.apply(current, id, form)
	if err := s.store.Save(ctx, id, rec); err != nil {
		return "", err
	}
	s.log.Info(ctx, "record saved", "id", id, "vitals", len(rec.Vitals))
	return id, nil
}

// apply replaces identity and MAR with the form values and appends the
// form's vitals reading to the ones already stored.
func (s *patientService) apply(current *models.PatientRecord, id string, f PatientForm) *models.PatientRecord {
	vital := f.Vitals
	vital.DateTime = models.FormatDateTime(s.now())

	return &models.PatientRecord{
		PatientName:        f.PatientName,
		PatientID:          id,
		DateOfBirth:        f.DateOfBirth,
		Gender:             f.Gender,
		AdmissionDate:      f.AdmissionDate,
		AttendingPhysician: f.AttendingPhysician,
		Diagnosis:          f.Diagnosis,
		Allergies:          f.Allergies,
		Notes:              f.Notes,
		MAR: models.MAR{
			Scheduled: compact(f.MAR.Scheduled, models.MedicationRow.IsBlank),
			PRN:       compact(f.MAR.PRN, models.MedicationRow.IsBlank),
			IV:        compact(f.MAR.IV, models.IVRow.IsBlank),
		},
		Vitals: append(slices.Clone(current.Vitals), vital),
	}
}

// compact drops blank rows and returns an empty, non-nil slice when nothing
// is left so the JSON carries [] rather than null.
func compact[T any](rows []T, blank func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !blank(r) {
			out = append(out, r)
		}
	}
	return out
}
