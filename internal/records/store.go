// Package records persists one patient record document per record number.
//
// Two backends implement Store: FileStore keeps record_<id>.json files in a
// directory, and SQLiteStore keeps the same JSON bodies in a SQLite table.
// Both treat a save as a full overwrite and signal an unknown record number
// by returning an empty document.
package records

import (
	"context"
	"iter"
	"slices"

	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
)

// Store is the record persistence contract shared by the backends.
type Store interface {
	// Load returns the record for id, or an empty record when none exists.
	Load(ctx context.Context, id string) (*models.PatientRecord, error)

	// Save replaces the record for id.
	Save(ctx context.Context, id string, rec *models.PatientRecord) error

	// All yields stored record ids lazily, in backend order.
	All(ctx context.Context) iter.Seq2[string, error]

	// Delete removes the record; deleting an absent id is an error.
	Delete(ctx context.Context, id string) error

	// NextID returns the next auto-increment id without reserving it.
	NextID(ctx context.Context) (string, error)

	// Create allocates the next id and saves the record build returns for
	// it, as one step with respect to other callers of the same store.
	Create(ctx context.Context, build func(id string) (*models.PatientRecord, error)) (string, error)
}

// SortedIDs drains s.All and returns the ids in ascending order.
func SortedIDs(ctx context.Context, s Store) ([]string, error) {
	var ids []string
	for id, err := range s.All(ctx) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// nextID computes the next id from the numeric ids in s. Non-numeric ids
// do not take part in numbering.
func nextID(ctx context.Context, s Store) (string, error) {
	var nums []int
	for id, err := range s.All(ctx) {
		if err != nil {
			return "", err
		}
		if n, ok := recordid.Numeric(id); ok {
			nums = append(nums, n)
		}
	}
	return recordid.Next(nums), nil
}
