package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/filex"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
)

// Import copies src into the folder for recordType and indexes it under id.
// It returns the stored path. A file that already is the stored copy is
// refused with common.ErrInvalidInput and nothing is indexed.
func (s *Store) Import(ctx context.Context, id, recordType, src string) (string, error) {
	id, err := recordid.Normalize(id)
	if err != nil {
		return "", err
	}
	t, err := recordid.ValidateType(recordType)
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", fmt.Errorf("%w: no file selected", common.ErrInvalidInput)
	}

	dir, err := s.typeDir(t)
	if err != nil {
		return "", err
	}

	name := filepath.Base(src)
	dst := filepath.Join(dir, name)
	if err := filex.CopyFile(src, dst); err != nil {
		if errors.Is(err, filex.ErrSameFile) {
			return "", fmt.Errorf("%w: %s is already in the %s folder: %w", common.ErrInvalidInput, name, filepath.Base(dir), err)
		}
		return "", fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}

	if err := s.Append(ctx, id, t, name); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *Store) typeDir(t models.RecordType) (string, error) {
	folder, _ := t.Folder()
	dir, err := filex.EnsureDir(s.opts.BaseDir, folder)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorageIO, err)
	}
	return dir, nil
}
