// Package jsonl reads and writes line-delimited JSON streams
//
// Design choices:
// - Stream with bufio.Scanner with a 32MB cap so very large visits still fit on one line.
// - Every line present in the input must hold a JSON object; the first bad line stops the
//   stream with a JSON error carrying its line number. Nothing is skipped.
// - Top-level keys are decoded, values stay raw so the caller decides how to read them.
// - gzip input is detected by magic bytes and a leading byte-order mark is consumed.
package jsonl
