package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const helpText = `Available commands:
  open <number>   open the file indexed under a record number (or just type the number)
  add             add a record from a file or generate a sample page
  sample <number> generate a sample patient page
  list            show the index
  help            show this help
  exit | quit     leave the program`

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	Open(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Sample(ctx context.Context, id string) error
	List(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors have already been reported to the user by the handlers, so
// the loop only keeps going. It returns on EOF, exit or quit, or when ctx is
// done.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn("scan> ")
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch {
		case cmd == "help":
			printlnFn(helpText)

		case cmd == "open":
			_ = a.Open(ctx, strings.Join(args, " "))

		case cmd == "add":
			_ = a.Add(ctx)

		case cmd == "sample":
			_ = a.Sample(ctx, strings.Join(args, " "))

		case cmd == "l", cmd == "list":
			_ = a.List(ctx)

		case cmd == "exit", cmd == "quit":
			printlnFn("Bye!")
			return

		case len(parts) == 1 && isScanned(parts[0]):
			_ = a.Open(ctx, parts[0])

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}

// isScanned reports whether token looks like a scanned record number.
func isScanned(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return token != ""
}
