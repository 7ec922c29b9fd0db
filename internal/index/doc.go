// Package index is the spreadsheet-backed record store used by the scanner.
//
// The index is a single-sheet .xlsx workbook with the header row
// "Number, Type, File". Each data row maps a record number to a file kept in
// the folder of its type (Records/ or Meds/) under the store's base
// directory. The workbook is read fully and rewritten fully on every append;
// two processes appending at once can lose a row.
//
// Key types
//
//   - type Options — base directory, workbook name, legacy path handling
//   - type Store   — in-memory mapping plus the workbook behind it
//
// Lookups report three outcomes: a path, common.ErrorNotFound when the
// number is not indexed, and common.ErrFileMissing when the indexed file is
// gone from disk.
package index
