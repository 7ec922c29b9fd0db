package index

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/filex"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
	"github.com/xuri/excelize/v2"
)

// DefaultFile is the workbook name used when Options.File is empty.
const DefaultFile = "records.xlsx"

var header = []any{"Number", "Type", "File"}

// Options configures a Store.
type Options struct {
	// BaseDir holds the workbook and the type folders. Defaults to ".".
	BaseDir string
	// File is the workbook name, relative to BaseDir unless absolute.
	File string
	// LegacyPaths resolves rows with an unknown type to <BaseDir>/<file>
	// instead of skipping them.
	LegacyPaths bool
	Logger      logging.Logger
}

// Store is the spreadsheet index. Methods are safe for use by one process;
// the mutex only serialises callers inside it.
type Store struct {
	mu      sync.Mutex
	opts    Options
	path    string
	records map[string]string
	log     logging.Logger
}

// Open creates the workbook with its header row when absent and loads the
// mapping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.File == "" {
		opts.File = DefaultFile
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	path := opts.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.BaseDir, path)
	}

	s := &Store{opts: opts, path: path, log: opts.Logger.With("index", path)}

	if err := s.ensureWorkbook(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureWorkbook(ctx context.Context) error {
	ok, err := filex.Exists(s.path)
	if err != nil {
		return fmt.Errorf("%w: stat index: %w", common.ErrStorageIO, err)
	}
	if ok {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		return fmt.Errorf("%w: write index header: %w", common.ErrStorageIO, err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: create index: %w", common.ErrStorageIO, err)
	}
	s.log.Info(ctx, "created record index")
	return nil
}

// Load rereads the workbook and replaces the in-memory mapping. Rows with an
// empty number are skipped; rows with an unknown type are skipped with a
// warning unless LegacyPaths is set. The returned map is a copy.
func (s *Store) Load(ctx context.Context) (map[string]string, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	records := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Number == "" {
			continue
		}
		path, ok := s.pathFor(e)
		if !ok {
			s.log.Warn(ctx, "skipping index row with unknown type", "number", e.Number, "type", string(e.Type))
			continue
		}
		records[e.Number] = path
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	return copyMap(records), nil
}

func (s *Store) pathFor(e models.IndexEntry) (string, bool) {
	folder, ok := e.Type.Folder()
	if !ok {
		if !s.opts.LegacyPaths {
			return "", false
		}
		folder = ""
	}
	return filepath.Join(s.opts.BaseDir, folder, e.File), true
}

// Entries returns every data row as stored, including rows Load skips.
func (s *Store) Entries(ctx context.Context) ([]models.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %w", common.ErrStorageIO, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %w", common.ErrStorageIO, err)
	}

	var entries []models.IndexEntry
	for i, row := range rows {
		if i == 0 {
			continue
		}
		entries = append(entries, models.IndexEntry{
			Number: cellValue(row, 0),
			Type:   models.RecordType(cellValue(row, 1)),
			File:   cellValue(row, 2),
		})
	}
	return entries, nil
}

func cellValue(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Append adds one row to the workbook and to the mapping. The whole workbook
// is rewritten; a failure between open and save loses the row.
func (s *Store) Append(ctx context.Context, id string, t models.RecordType, filename string) error {
	id, err := recordid.Normalize(id)
	if err != nil {
		return err
	}
	if _, err := recordid.ValidateType(string(t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: open index: %w", common.ErrStorageIO, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%w: read index: %w", common.ErrStorageIO, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	row := []any{id, string(t), filename}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("%w: append index row: %w", common.ErrStorageIO, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save index: %w", common.ErrStorageIO, err)
	}

	path, _ := s.pathFor(models.IndexEntry{Number: id, Type: t, File: filename})
	if s.records == nil {
		s.records = make(map[string]string)
	}
	s.records[id] = path

	s.log.Info(ctx, "index entry added", "number", id, "type", string(t), "file", filename)
	return nil
}

// Resolve returns the indexed path for id without touching the disk.
func (s *Store) Resolve(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return "", fmt.Errorf("record %q: %w", id, common.ErrorNotFound)
	}
	return path, nil
}

// Locate resolves id and checks that the file is still on disk.
func (s *Store) Locate(id string) (string, error) {
	path, err := s.Resolve(id)
	if err != nil {
		return "", err
	}
	ok, err := filex.Exists(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	if !ok {
		return path, fmt.Errorf("file not found: %s: %w", path, common.ErrFileMissing)
	}
	return path, nil
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMap(s.records)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
