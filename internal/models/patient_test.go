package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDoc = `{
  "Patient Name": "Jane Doe",
  "Patient ID": "0003",
  "Date of Birth": "1991-03-14",
  "Gender": "Female",
  "MAR": {
    "Scheduled": [{"Medication": "Amoxicillin", "Time": "08:00", "Given": "yes"}],
    "IV": [{"Type": "Saline", "Rate": "100ml/h", "Time": "09:00", "Given": ""}]
  },
  "Vitals": [
    {"Systolic": 118, "Diastolic": 76, "Pulse": 64, "Temperature": 36.8, "DateTime": "2025-05-20T10:11:12.123456"}
  ]
}`

func TestPatientRecord_DecodesLegacyDocument(t *testing.T) {
	var r PatientRecord
	require.NoError(t, json.Unmarshal([]byte(legacyDoc), &r))

	want := PatientRecord{
		PatientName: "Jane Doe",
		PatientID:   "0003",
		DateOfBirth: "1991-03-14",
		Gender:      "Female",
		MAR: MAR{
			Scheduled: []MedicationRow{{Medication: "Amoxicillin", Time: "08:00", Given: "yes"}},
			IV:        []IVRow{{Type: "Saline", Rate: "100ml/h", Time: "09:00"}},
		},
		Vitals: []Vital{{Systolic: 118, Diastolic: 76, Pulse: 64, Temperature: 36.8, DateTime: "2025-05-20T10:11:12.123456"}},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("decoded record mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, r.IsEmpty())
}

func TestPatientRecord_EncodesOriginalKeys(t *testing.T) {
	b, err := json.Marshal(PatientRecord{Allergies: "Penicillin", AttendingPhysician: "Dr. Elliot"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "Penicillin", m["Allergies/Reactions"])
	assert.Equal(t, "Dr. Elliot", m["Attending Physician"])
	assert.Contains(t, m, "MAR")
	assert.Contains(t, m, "Vitals")
}

func TestPatientRecord_IsEmpty(t *testing.T) {
	var nilRecord *PatientRecord
	assert.True(t, nilRecord.IsEmpty())
	assert.True(t, (&PatientRecord{}).IsEmpty())
	assert.False(t, (&PatientRecord{Notes: "n"}).IsEmpty())
	assert.False(t, (&PatientRecord{MAR: MAR{PRN: []MedicationRow{{Medication: "x"}}}}).IsEmpty())
	assert.False(t, (&PatientRecord{Vitals: []Vital{DefaultVital}}).IsEmpty())
}

func TestPatientRecord_RecentVitals(t *testing.T) {
	base := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	r := &PatientRecord{}
	// appended out of chronological order
	for _, h := range []int{3, 0, 6, 1, 5, 2, 4} {
		r.Vitals = append(r.Vitals, Vital{Pulse: h, DateTime: FormatDateTime(base.Add(time.Duration(h) * time.Hour))})
	}

	got := r.RecentVitals(VitalsShown)
	require.Len(t, got, VitalsShown)
	pulses := make([]int, len(got))
	for i, v := range got {
		pulses[i] = v.Pulse
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, pulses)
	assert.Len(t, r.Vitals, 7, "display must not truncate stored readings")
}

func TestPatientRecord_LastVital(t *testing.T) {
	r := &PatientRecord{}
	_, ok := r.LastVital()
	assert.False(t, ok)

	r.Vitals = []Vital{{Pulse: 1}, {Pulse: 2}}
	v, ok := r.LastVital()
	require.True(t, ok)
	assert.Equal(t, 2, v.Pulse)
}

func TestVital_Time(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-05-20T10:11:12.123456", true},
		{"2025-05-20T10:11:12", true},
		{"2025-05-20T10:11:12Z", true},
		{"2025-05-20T10:11:12+02:00", true},
		{"yesterday", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := Vital{DateTime: tt.in}.Time()
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestRecordType_Folder(t *testing.T) {
	f, ok := RecordTypeRecord.Folder()
	assert.True(t, ok)
	assert.Equal(t, "Records", f)

	f, ok = RecordTypeMed.Folder()
	assert.True(t, ok)
	assert.Equal(t, "Meds", f)

	_, ok = RecordType("Lab").Folder()
	assert.False(t, ok)
}
