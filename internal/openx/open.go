// Package openx opens files with the host's default application and gives
// the scanner its audible feedback.
package openx

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Command returns the program and arguments that open path on goos.
func Command(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// Opener starts the default application for a file without waiting for it.
type Opener struct {
	goos  string
	start func(cmd *exec.Cmd) error
}

// NewOpener returns an Opener for the running OS.
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, start: (*exec.Cmd).Start}
}

func (o *Opener) Open(ctx context.Context, path string) error {
	name, args := Command(o.goos, path)
	cmd := exec.Command(name, args...)
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	if cmd.Process != nil {
		go func() { _ = cmd.Wait() }()
	}
	return nil
}

// Bell signals success and failure on a terminal: failures ring the BEL
// character, successes are silent.
type Bell struct {
	w io.Writer
}

func NewBell(w io.Writer) *Bell { return &Bell{w: w} }

func (b *Bell) Success(context.Context) {}

func (b *Bell) Failure(context.Context) {
	_, _ = io.WriteString(b.w, "\a")
}
