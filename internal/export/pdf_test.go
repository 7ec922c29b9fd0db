package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPDF(t *testing.T) {
	rec := &models.PatientRecord{
		PatientName:        "Zoë Example",
		Gender:             "Female",
		AttendingPhysician: "Dr. Elliot",
		Notes:              "Observe overnight.",
		MAR: models.MAR{
			Scheduled: []models.MedicationRow{{Medication: "Paracetamol", Time: "08:00", Given: "Yes"}},
			IV:        []models.IVRow{{Type: "Saline", Rate: "100 ml/h", Time: "09:00", Given: "No"}},
		},
		Vitals: []models.Vital{
			{Systolic: 130, Diastolic: 85, Pulse: 72, Temperature: 37.2, DateTime: "2024-05-02T10:00:00.000000"},
			{Systolic: 120, Diastolic: 80, Pulse: 70, Temperature: 37.0, DateTime: "2024-05-01T10:00:00.000000"},
		},
	}

	var buf bytes.Buffer
	err := RecordPDF(&buf, "0003", rec, time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestRecordPDF_EmptyRecord(t *testing.T) {
	var buf bytes.Buffer
	err := RecordPDF(&buf, "0009", &models.PatientRecord{}, time.Now())
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, buf.Len())
}
