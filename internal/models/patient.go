package models

import (
	"sort"
	"time"
)

// Choices offered by the record form.
var (
	Genders    = []string{"Male", "Female", "Other"}
	Physicians = []string{"Dr. Buggler", "Dr. Elliot", "Dr. Tyrell"}
)

// VitalsShown is how many readings the record views display.
const VitalsShown = 5

// PatientRecord is the JSON document stored per record number. Field names
// match the on-disk keys; absent keys decode to zero values.
type PatientRecord struct {
	PatientName        string  `json:"Patient Name"`
	PatientID          string  `json:"Patient ID"`
	DateOfBirth        string  `json:"Date of Birth"`
	Gender             string  `json:"Gender"`
	AdmissionDate      string  `json:"Admission Date"`
	AttendingPhysician string  `json:"Attending Physician"`
	Diagnosis          string  `json:"Diagnosis"`
	Allergies          string  `json:"Allergies/Reactions"`
	Notes              string  `json:"Notes"`
	MAR                MAR     `json:"MAR"`
	Vitals             []Vital `json:"Vitals"`
}

// IsEmpty reports whether r carries no data at all, which is how a load of
// an unknown record number is signalled.
func (r *PatientRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.PatientName == "" && r.PatientID == "" && r.DateOfBirth == "" &&
		r.Gender == "" && r.AdmissionDate == "" && r.AttendingPhysician == "" &&
		r.Diagnosis == "" && r.Allergies == "" && r.Notes == "" &&
		r.MAR.IsEmpty() && len(r.Vitals) == 0
}

// LastVital returns the most recently appended reading, if any.
func (r *PatientRecord) LastVital() (Vital, bool) {
	if len(r.Vitals) == 0 {
		return Vital{}, false
	}
	return r.Vitals[len(r.Vitals)-1], true
}

// RecentVitals returns up to n readings ordered by DateTime, oldest first,
// keeping the newest ones. Readings with unparseable timestamps sort first.
// The record itself is not modified.
func (r *PatientRecord) RecentVitals(n int) []Vital {
	out := make([]Vital, len(r.Vitals))
	copy(out, r.Vitals)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].Time()
		tj, _ := out[j].Time()
		return ti.Before(tj)
	})
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// MAR is the medication administration record.
type MAR struct {
	Scheduled []MedicationRow `json:"Scheduled"`
	PRN       []MedicationRow `json:"PRN"`
	IV        []IVRow         `json:"IV"`
}

func (m MAR) IsEmpty() bool {
	return len(m.Scheduled) == 0 && len(m.PRN) == 0 && len(m.IV) == 0
}

// MedicationRow is a Scheduled or PRN line.
type MedicationRow struct {
	Medication string `json:"Medication"`
	Time       string `json:"Time"`
	Given      string `json:"Given"`
}

func (m MedicationRow) IsBlank() bool {
	return m.Medication == "" && m.Time == "" && m.Given == ""
}

// IVRow is an intravenous line.
type IVRow struct {
	Type  string `json:"Type"`
	Rate  string `json:"Rate"`
	Time  string `json:"Time"`
	Given string `json:"Given"`
}

func (v IVRow) IsBlank() bool {
	return v.Type == "" && v.Rate == "" && v.Time == "" && v.Given == ""
}

// Vital is one vitals reading. DateTime is kept as the ISO-8601 text it was
// written with so documents round-trip unchanged.
type Vital struct {
	Systolic    int     `json:"Systolic"`
	Diastolic   int     `json:"Diastolic"`
	Pulse       int     `json:"Pulse"`
	Temperature float64 `json:"Temperature"`
	DateTime    string  `json:"DateTime"`
}

// DefaultVital holds the values a new reading form starts from.
var DefaultVital = Vital{Systolic: 120, Diastolic: 80, Pulse: 70, Temperature: 37.0}

// dateTimeLayouts covers RFC 3339 and the zone-less microsecond form the
// legacy dashboard wrote.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Time parses DateTime.
func (v Vital) Time() (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v.DateTime); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders t the way readings are stamped.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}
