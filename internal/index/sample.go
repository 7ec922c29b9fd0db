package index

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/filex"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
)

// SamplePatient holds the demographic values printed on a generated page.
type SamplePatient struct {
	Name        string
	ID          string
	DateOfBirth string
	Gender      string
	Admission   string
	Diagnosis   string
	Allergies   string
	Medications string
	Physician   string
	Notes       string
}

// DefaultSample is the placeholder patient every generated page shows.
var DefaultSample = SamplePatient{
	Name:        "Jane Doe",
	ID:          "123456",
	DateOfBirth: "1991-03-14",
	Gender:      "Female",
	Admission:   "2025-05-20",
	Diagnosis:   "Pneumonia",
	Allergies:   "Penicillin",
	Medications: "Amoxicillin, Acetaminophen",
	Physician:   "Dr. John Smith",
	Notes:       "This is a sample patient record for demonstration purposes.",
}

var samplePage = template.Must(template.New("sample").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Patient Record - Sample</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f5f7fa; margin: 40px; }
        .record-container { background: #fff; padding: 32px; border-radius: 14px; box-shadow: 0 2px 12px #0001; max-width: 600px; margin: auto; }
        h1 { color: #2b3553; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #eee; }
        th { background: #f0f3fa; }
    </style>
</head>
<body>
    <div class="record-container">
        <h1>Hospital Patient Record</h1>
        <table>
            <tr><th>Patient Name</th><td>{{.Name}}</td></tr>
            <tr><th>Patient ID</th><td>{{.ID}}</td></tr>
            <tr><th>Date of Birth</th><td>{{.DateOfBirth}}</td></tr>
            <tr><th>Gender</th><td>{{.Gender}}</td></tr>
            <tr><th>Admission Date</th><td>{{.Admission}}</td></tr>
            <tr><th>Diagnosis</th><td>{{.Diagnosis}}</td></tr>
            <tr><th>Allergies</th><td>{{.Allergies}}</td></tr>
            <tr><th>Medications</th><td>{{.Medications}}</td></tr>
            <tr><th>Attending Physician</th><td>{{.Physician}}</td></tr>
        </table>
        <p style="margin-top:24px;"><strong>Notes:</strong> <br>{{.Notes}}</p>
    </div>
</body>
</html>
`))

// SampleFilename is the name a generated page for id gets.
func SampleFilename(id string) string {
	return fmt.Sprintf("patient_record_%s.html", id)
}

// RenderSample writes the sample page for p.
func RenderSample(p SamplePatient) ([]byte, error) {
	var buf bytes.Buffer
	if err := samplePage.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateSample writes a sample patient page into the Records folder and
// indexes it under id as a Record. It returns the page path.
func (s *Store) GenerateSample(ctx context.Context, id string) (string, error) {
	id, err := recordid.Normalize(id)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: record number %q cannot be used in a file name", common.ErrInvalidInput, id)
	}

	page, err := RenderSample(DefaultSample)
	if err != nil {
		return "", fmt.Errorf("render sample: %w", err)
	}

	dir, err := s.typeDir(models.RecordTypeRecord)
	if err != nil {
		return "", err
	}

	name := SampleFilename(id)
	dst := filepath.Join(dir, name)
	if err := filex.WriteFile(dst, page); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}

	if err := s.Append(ctx, id, models.RecordTypeRecord, name); err != nil {
		return "", err
	}
	return dst, nil
}
