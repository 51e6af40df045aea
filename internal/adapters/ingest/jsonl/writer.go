package jsonl

import (
	"bufio"
	"encoding/json"
	"io"

	perr "gaexport/internal/platform/errors"
)

// Writer appends one JSON value per line. Output is buffered until Flush
type Writer struct {
	dst   io.Writer
	bw    *bufio.Writer
	enc   *json.Encoder
	lines int
}

// NewWriter returns a Writer over w. If w is an io.Closer it is closed by Close
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	// keep <, > and & literal in paths and titles
	enc.SetEscapeHTML(false)
	return &Writer{dst: w, bw: bw, enc: enc}
}

// Write encodes v followed by a newline
func (w *Writer) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeIO, "jsonl: encode line"), "jsonl.write")
	}
	w.lines++
	return nil
}

// Flush pushes buffered lines to the underlying writer
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeIO, "jsonl: flush"), "jsonl.write")
	}
	return nil
}

// Lines reports how many values were written
func (w *Writer) Lines() int { return w.lines }

// Close flushes and then closes the destination when it is closable.
// The destination is closed even if the flush fails
func (w *Writer) Close() error {
	ferr := w.Flush()
	if c, ok := w.dst.(io.Closer); ok {
		if err := c.Close(); err != nil && ferr == nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "jsonl: close")
		}
	}
	return ferr
}
