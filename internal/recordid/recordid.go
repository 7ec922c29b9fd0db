// Package recordid holds the record number rules: the record type check used
// by the spreadsheet index and the auto-increment numbering and file naming
// used by the JSON record store.
package recordid

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/models"
)

const (
	filePrefix = "record_"
	fileSuffix = ".json"
	width      = 4
)

// ValidateType accepts exactly "Record" or "Med".
func ValidateType(t string) (models.RecordType, error) {
	rt := models.RecordType(t)
	if _, ok := rt.Folder(); !ok {
		return "", fmt.Errorf("%w: record type %q, use 'Record' or 'Med'", common.ErrInvalidInput, t)
	}
	return rt, nil
}

// Normalize trims id and rejects an empty result.
func Normalize(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty record number", common.ErrInvalidInput)
	}
	return id, nil
}

// Next returns max(existing)+1 zero-padded to four digits, or "0001" when
// existing is empty. Gaps are never reused.
func Next(existing []int) string {
	if len(existing) == 0 {
		return format(1)
	}
	return format(slices.Max(existing) + 1)
}

func format(n int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// Numeric parses id as a base-10 integer.
func Numeric(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Filename returns the JSON file name for id.
func Filename(id string) string {
	return filePrefix + id + fileSuffix
}

// FromFilename extracts the id from a "record_<id>.json" name.
func FromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if id == "" {
		return "", false
	}
	return id, true
}
