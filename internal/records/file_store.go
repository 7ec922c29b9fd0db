package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/filex"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
)

// listBatch is how many directory entries All reads per call.
const listBatch = 64

// FileStore keeps each record as an indented JSON file in one directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("%w: create records dir: %w", common.ErrStorageIO, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) (string, error) {
	id, err := recordid.Normalize(id)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: record number %q", common.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, recordid.Filename(id)), nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*models.PatientRecord, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return &models.PatientRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read record %s: %w", common.ErrStorageIO, id, err)
	}

	rec := &models.PatientRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: decode record %s: %w", common.ErrStorageIO, id, err)
	}
	return rec, nil
}

func (s *FileStore) Save(ctx context.Context, id string, rec *models.PatientRecord) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filex.WriteFile(p, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: delete record %s: %w: %w", common.ErrStorageIO, id, common.ErrorNotFound, err)
		}
		return fmt.Errorf("%w: delete record %s: %w", common.ErrStorageIO, id, err)
	}
	return nil
}

// All reads the directory in batches, so ids are produced as they are
// listed rather than after a full scan.
func (s *FileStore) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		d, err := os.Open(s.dir)
		if err != nil {
			yield("", fmt.Errorf("%w: open records dir: %w", common.ErrStorageIO, err))
			return
		}
		defer d.Close()

		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			entries, err := d.ReadDir(listBatch)
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				id, ok := recordid.FromFilename(e.Name())
				if !ok {
					continue
				}
				if !yield(id, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("%w: list records: %w", common.ErrStorageIO, err))
				return
			}
		}
	}
}

func (s *FileStore) NextID(ctx context.Context) (string, error) {
	return nextID(ctx, s)
}

// Create holds the store lock across numbering and writing.
func (s *FileStore) Create(ctx context.Context, build func(id string) (*models.PatientRecord, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := nextID(ctx, s)
	if err != nil {
		return "", err
	}
	rec, err := build(id)
	if err != nil {
		return "", err
	}
	data, err := encode(rec)
	if err != nil {
		return "", err
	}
	p, err := s.path(id)
	if err != nil {
		return "", err
	}
	if err := filex.WriteFile(p, data); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	return id, nil
}

func encode(rec *models.PatientRecord) ([]byte, error) {
	if rec == nil {
		rec = &models.PatientRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}
