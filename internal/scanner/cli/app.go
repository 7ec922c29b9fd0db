package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
	"github.com/haclabs/haccare/internal/services"
)

// App is the scanner front-end.
type App struct {
	svc    services.ScannerService
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// NewApp builds an App reading prompts from in and writing them to out.
func NewApp(svc services.ScannerService, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{svc: svc, reader: bufio.NewReader(in), out: out, log: log}
}

// Run starts the REPL and returns when the user quits or input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("hacCare record scanner. Scan or type a record number, or 'help'.")
	runREPL(ctx, a, a.reader)
}

// Open opens the file indexed under id.
func (a *App) Open(ctx context.Context, id string) error {
	if id == "" {
		var err error
		if id, err = GetSimpleText(a.reader, "Record number:", a.out); err != nil {
			return err
		}
	}
	path, err := a.svc.Open(ctx, id)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	printlnFn("Opened", path)
	return nil
}

// Add asks for a number and type, then either generates a sample page
// (Record only) or imports a file the user names.
func (a *App) Add(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter record number:", a.out)
	if err != nil {
		return err
	}
	input, err := GetSimpleText(a.reader, "Enter type (Record or Med):", a.out)
	if err != nil {
		return err
	}
	recordType, err := recordid.ValidateType(input)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	if recordType == models.RecordTypeRecord {
		sample, err := Confirm(a.reader, "Generate a sample hospital patient record HTML? Answer no to add your own file.", a.out)
		if err != nil {
			return err
		}
		if sample {
			return a.Sample(ctx, id)
		}
	}

	src, err := GetSimpleText(a.reader, "Path of the file to add:", a.out)
	if err != nil {
		return err
	}
	if _, err := a.svc.AddFile(ctx, id, string(recordType), src); err != nil {
		a.report(ctx, err)
		return err
	}
	printlnFn("Record added.")
	return nil
}

// Sample generates the sample patient page for id.
func (a *App) Sample(ctx context.Context, id string) error {
	if id == "" {
		var err error
		if id, err = GetSimpleText(a.reader, "Enter record number:", a.out); err != nil {
			return err
		}
	}
	path, err := a.svc.AddSample(ctx, id)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	printlnFn(fmt.Sprintf("Sample patient record HTML generated as %s.", filepath.Base(path)))
	return nil
}

// List prints the index rows.
func (a *App) List(ctx context.Context) error {
	entries, err := a.svc.List(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if len(entries) == 0 {
		printlnFn("No records.")
		return nil
	}
	printlnFn(fmt.Sprintf("%-10s %-7s %s", "Number", "Type", "File"))
	for _, e := range entries {
		printlnFn(fmt.Sprintf("%-10s %-7s %s", e.Number, e.Type, e.File))
	}
	return nil
}

func (a *App) report(ctx context.Context, err error) {
	a.log.Debug(ctx, "command failed", "error", err)
	printlnFn(describe(err))
}

// describe turns an error into the message shown to the operator.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return "Not found: record number not found."
	case errors.Is(err, common.ErrFileMissing):
		return "Missing file: " + err.Error()
	case errors.Is(err, common.ErrInvalidInput):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrStorageIO):
		return "Storage error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
