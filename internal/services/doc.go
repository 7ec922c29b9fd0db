// Package services holds the hacCare use cases shared by the front-ends:
// PatientService for the JSON patient records behind the web front-end and
// ScannerService for the spreadsheet index behind the scanner.
package services
