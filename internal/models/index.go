// Package models defines the hacCare record types: spreadsheet index
// entries, the patient record document and its MAR and vitals sections.
package models

// RecordType classifies a spreadsheet index entry and selects its folder.
type RecordType string

const (
	RecordTypeRecord RecordType = "Record"
	RecordTypeMed    RecordType = "Med"
)

// Folders maps each known RecordType to its storage folder name.
var Folders = map[RecordType]string{
	RecordTypeRecord: "Records",
	RecordTypeMed:    "Meds",
}

// Folder returns the storage folder for t and whether t is known.
func (t RecordType) Folder() (string, bool) {
	f, ok := Folders[t]
	return f, ok
}

// IndexEntry is one data row of the spreadsheet index.
type IndexEntry struct {
	Number string
	Type   RecordType
	File   string
}
