package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/index"
	"github.com/haclabs/haccare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	f.opened = append(f.opened, path)
	return nil
}

type countingNotifier struct{ ok, fail int }

func (n *countingNotifier) Success(context.Context) { n.ok++ }
func (n *countingNotifier) Failure(context.Context) { n.fail++ }

func newScanner(t *testing.T) (ScannerService, *fakeOpener, *countingNotifier, string) {
	t.Helper()
	base := t.TempDir()
	idx, err := index.Open(context.Background(), index.Options{BaseDir: base})
	require.NoError(t, err)
	op := &fakeOpener{}
	n := &countingNotifier{}
	return NewScannerService(idx, op, n, nil), op, n, base
}

func TestScanner_AddFileThenOpen(t *testing.T) {
	ctx := context.Background()
	svc, op, n, base := newScanner(t)

	src := filepath.Join(t.TempDir(), "chart.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0o600))

	stored, err := svc.AddFile(ctx, "1001", "Med", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Meds", "chart.pdf"), stored)

	path, err := svc.Open(ctx, " 1001 ")
	require.NoError(t, err)
	assert.Equal(t, stored, path)
	assert.Equal(t, []string{stored}, op.opened)
	assert.Equal(t, 2, n.ok)
	assert.Zero(t, n.fail)
}

func TestScanner_OpenUnknown(t *testing.T) {
	svc, op, n, _ := newScanner(t)

	_, err := svc.Open(context.Background(), "9999")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, op.opened)
	assert.Equal(t, 1, n.fail)
}

func TestScanner_OpenFileMissing(t *testing.T) {
	ctx := context.Background()
	svc, op, n, _ := newScanner(t)

	path, err := svc.AddSample(ctx, "2002")
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	got, err := svc.Open(ctx, "2002")
	require.ErrorIs(t, err, common.ErrFileMissing)
	assert.Equal(t, path, got)
	assert.Empty(t, op.opened)
	assert.Equal(t, 1, n.ok)
	assert.Equal(t, 1, n.fail)
}

func TestScanner_OpenerFailure(t *testing.T) {
	ctx := context.Background()
	svc, op, n, _ := newScanner(t)
	_, err := svc.AddSample(ctx, "3003")
	require.NoError(t, err)

	op.err = errors.New("no default application")
	_, err = svc.Open(ctx, "3003")
	require.ErrorContains(t, err, "no default application")
	assert.Equal(t, 1, n.fail)
}

func TestScanner_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _, n, _ := newScanner(t)

	_, err := svc.AddFile(ctx, "1", "Lab", "x.pdf")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.Open(ctx, "   ")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, 2, n.fail)
}

func TestScanner_List(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newScanner(t)
	_, err := svc.AddSample(ctx, "0001")
	require.NoError(t, err)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.IndexEntry{Number: "0001", Type: models.RecordTypeRecord, File: "patient_record_0001.html"}, entries[0])
}
