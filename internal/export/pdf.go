// Package export renders a patient record as a printable PDF chart.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/models"
	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Arial"
	lineHeight = 6.0
	labelWidth = 50.0
)

// RecordPDF writes an A4 chart for record id to w: identity fields, the
// MAR tables and every vitals reading. printed is stamped in the footer.
func RecordPDF(w io.Writer, id string, rec *models.PatientRecord, printed time.Time) error {
	if rec.IsEmpty() {
		return fmt.Errorf("%w: record %s", common.ErrorNotFound, id)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Patient record "+id, true)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Record %s, printed %s", id, printed.Format("2006-01-02 15:04"))), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 10, tr("Patient record "+id), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 11)
	for _, f := range []struct{ label, value string }{
		{"Patient Name", rec.PatientName},
		{"Patient ID", rec.PatientID},
		{"Date of Birth", rec.DateOfBirth},
		{"Gender", rec.Gender},
		{"Admission Date", rec.AdmissionDate},
		{"Attending Physician", rec.AttendingPhysician},
		{"Diagnosis", rec.Diagnosis},
		{"Allergies/Reactions", rec.Allergies},
	} {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, tr(f.label), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, lineHeight, tr(f.value), "", "L", false)
	}
	if rec.Notes != "" {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(0, lineHeight, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, lineHeight, tr(rec.Notes), "", "L", false)
	}

	medRows := func(rows []models.MedicationRow) [][]string {
		out := make([][]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, []string{r.Medication, r.Time, r.Given})
		}
		return out
	}
	table(pdf, tr, "Scheduled medications", []string{"Medication", "Time", "Given"}, []float64{90, 50, 40}, medRows(rec.MAR.Scheduled))
	table(pdf, tr, "PRN medications", []string{"Medication", "Time", "Given"}, []float64{90, 50, 40}, medRows(rec.MAR.PRN))

	iv := make([][]string, 0, len(rec.MAR.IV))
	for _, r := range rec.MAR.IV {
		iv = append(iv, []string{r.Type, r.Rate, r.Time, r.Given})
	}
	table(pdf, tr, "IV", []string{"Type", "Rate", "Time", "Given"}, []float64{70, 40, 40, 30}, iv)

	vitals := make([][]string, 0, len(rec.Vitals))
	for _, v := range rec.RecentVitals(len(rec.Vitals)) {
		vitals = append(vitals, []string{
			v.DateTime,
			fmt.Sprintf("%d/%d", v.Systolic, v.Diastolic),
			fmt.Sprintf("%d", v.Pulse),
			fmt.Sprintf("%.1f", v.Temperature),
		})
	}
	table(pdf, tr, "Vitals", []string{"Taken", "BP", "Pulse", "Temp (C)"}, []float64{70, 40, 30, 40}, vitals)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render record %s: %w", id, err)
	}
	return nil
}

// table draws a titled grid. Empty tables print a placeholder line.
func table(pdf *gofpdf.Fpdf, tr func(string) string, title string, header []string, widths []float64, rows [][]string) {
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	if len(rows) == 0 {
		pdf.SetFont(fontFamily, "I", 10)
		pdf.CellFormat(0, lineHeight, "None recorded", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 10)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], lineHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
