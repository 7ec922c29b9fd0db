package records

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "records"))
	require.NoError(t, err)
	return s
}

func sampleRecord() *models.PatientRecord {
	return &models.PatientRecord{
		PatientName:        "Jane Doe",
		Gender:             "Female",
		AttendingPhysician: "Dr. Elliot",
		Allergies:          "Penicillin",
		MAR: models.MAR{
			Scheduled: []models.MedicationRow{{Medication: "Metformin 500mg", Time: "08:00", Given: "Yes"}},
		},
		Vitals: []models.Vital{{Systolic: 120, Diastolic: 80, Pulse: 70, Temperature: 37.0, DateTime: "2024-01-01T10:00:00.000000"}},
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	rec := sampleRecord()
	require.NoError(t, s.Save(ctx, "0001", rec))

	got, err := s.Load(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "record_0001.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Patient Name": "Jane Doe"`)
}

func TestFileStore_LoadMissingIsEmpty(t *testing.T) {
	s := newFileStore(t)

	got, err := s.Load(context.Background(), "9999")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestFileStore_LoadTrimsID(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, "0002", sampleRecord()))

	got, err := s.Load(ctx, "  0002 ")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.PatientName)
}

func TestFileStore_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	for _, id := range []string{"", "   ", "../x", `a\b`, ".."} {
		_, err := s.Load(ctx, id)
		assert.ErrorIs(t, err, common.ErrInvalidInput, id)
	}
}

func TestFileStore_RepeatedSavesAccumulateVitals(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, "0003", &models.PatientRecord{PatientName: "John"}))

	const n = 4
	for i := 0; i < n; i++ {
		rec, err := s.Load(ctx, "0003")
		require.NoError(t, err)
		rec.Vitals = append(rec.Vitals, models.DefaultVital)
		require.NoError(t, s.Save(ctx, "0003", rec))
	}

	got, err := s.Load(ctx, "0003")
	require.NoError(t, err)
	assert.Len(t, got.Vitals, n)
}

func TestFileStore_DeleteRemovesFromAll(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, "0001", sampleRecord()))
	require.NoError(t, s.Save(ctx, "0002", sampleRecord()))

	require.NoError(t, s.Delete(ctx, "0001"))

	got, err := s.Load(ctx, "0001")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	ids, err := SortedIDs(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002"}, ids)
}

func TestFileStore_DeleteMissing(t *testing.T) {
	err := newFileStore(t).Delete(context.Background(), "0042")
	require.ErrorIs(t, err, common.ErrStorageIO)
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileStore_AllSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, "0005", sampleRecord()))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "record_dir.json"), 0o700))

	ids, err := SortedIDs(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"0005"}, ids)
}

func TestFileStore_AllStopsEarly(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	for _, id := range []string{"0001", "0002", "0003"} {
		require.NoError(t, s.Save(ctx, id, sampleRecord()))
	}

	seen := 0
	for _, err := range s.All(ctx) {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestFileStore_NextID(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	id, err := s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001", id)

	for _, id := range []string{"0001", "0002", "0007", "draft"} {
		require.NoError(t, s.Save(ctx, id, sampleRecord()))
	}
	id, err = s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0008", id)
}

func TestFileStore_CreateConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	const n = 8
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Create(ctx, func(id string) (*models.PatientRecord, error) {
				return &models.PatientRecord{PatientName: "p" + id}, nil
			})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["0001"])
	assert.True(t, seen["0008"])
}

func TestFileStore_CreateBuildError(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	boom := errors.New("boom")

	_, err := s.Create(ctx, func(string) (*models.PatientRecord, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	ids, err := SortedIDs(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
