package services

import (
	"context"
	"fmt"

	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
)

// Index is the part of the spreadsheet index the scanner uses.
// *index.Store satisfies it.
type Index interface {
	Locate(id string) (string, error)
	Import(ctx context.Context, id, recordType, src string) (string, error)
	GenerateSample(ctx context.Context, id string) (string, error)
	Entries(ctx context.Context) ([]models.IndexEntry, error)
}

// Opener hands a file to the host's default application.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Notifier gives the operator a success or failure signal after each
// scanner action.
type Notifier interface {
	Success(ctx context.Context)
	Failure(ctx context.Context)
}

// ScannerService defines the record scanner use cases.
//
// Contract:
//   - Open: locate the file indexed under id and open it; the error is
//     common.ErrorNotFound for an unknown id and common.ErrFileMissing when
//     the indexed file is gone.
//   - AddFile: import a local file as a Record or Med entry.
//   - AddSample: generate the sample patient page for id.
//   - List: the raw index rows.
//
// Every call ends with exactly one Notifier signal, except List.
type ScannerService interface {
	Open(ctx context.Context, id string) (string, error)
	AddFile(ctx context.Context, id, recordType, src string) (string, error)
	AddSample(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]models.IndexEntry, error)
}

type scannerService struct {
	index  Index
	opener Opener
	notify Notifier
	log    logging.Logger
}

// NewScannerService constructs a ScannerService. A nil notifier or logger
// is replaced by a silent one.
func NewScannerService(idx Index, opener Opener, notify Notifier, log logging.Logger) ScannerService {
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &scannerService{index: idx, opener: opener, notify: notify, log: log}
}

func (s *scannerService) Open(ctx context.Context, id string) (string, error) {
	path, err := s.open(ctx, id)
	s.signal(ctx, err)
	return path, err
}

func (s *scannerService) open(ctx context.Context, id string) (string, error) {
	id, err := recordid.Normalize(id)
	if err != nil {
		return "", err
	}
	path, err := s.index.Locate(id)
	if err != nil {
		s.log.Warn(ctx, "record not opened", "id", id, "error", err)
		return path, err
	}
	if err := s.opener.Open(ctx, path); err != nil {
		return path, fmt.Errorf("open %s: %w", path, err)
	}
	s.log.Info(ctx, "record opened", "id", id, "path", path)
	return path, nil
}

func (s *scannerService) AddFile(ctx context.Context, id, recordType, src string) (string, error) {
	path, err := s.index.Import(ctx, id, recordType, src)
	s.signal(ctx, err)
	if err == nil {
		s.log.Info(ctx, "record added", "id", id, "type", recordType, "path", path)
	}
	return path, err
}

func (s *scannerService) AddSample(ctx context.Context, id string) (string, error) {
	path, err := s.index.GenerateSample(ctx, id)
	s.signal(ctx, err)
	if err == nil {
		s.log.Info(ctx, "sample record generated", "id", id, "path", path)
	}
	return path, err
}

func (s *scannerService) List(ctx context.Context) ([]models.IndexEntry, error) {
	return s.index.Entries(ctx)
}

func (s *scannerService) signal(ctx context.Context, err error) {
	if err != nil {
		s.notify.Failure(ctx)
		return
	}
	s.notify.Success(ctx)
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context) {}
func (nopNotifier) Failure(context.Context) {}
