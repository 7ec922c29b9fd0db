// Package cli is the interactive terminal front-end of the record scanner.
// A barcode scanner acting as a keyboard types a record number followed by
// Enter, so a bare number on its own line opens that record.
package cli
