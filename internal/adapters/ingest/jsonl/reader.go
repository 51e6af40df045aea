package jsonl

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	initialBufSize   = 512 * 1024
	maxScanTokenSize = 32 * 1024 * 1024
	sampleRawMax     = 2048 // max bytes of raw JSON to log for the sample
)

var gzipMagic = []byte{0x1f, 0x8b}

// Object is one decoded input line: top-level keys with raw values
type Object = map[string]json.RawMessage

// Reader streams Objects from line-delimited JSON
type Reader struct {
	src     io.Reader
	gz      *gzip.Reader
	sc      *bufio.Scanner
	err     error
	line    int
	records int
	bytes   int64
	sampled bool // logs exactly one sample raw line per stream
}

// NewReader wraps r. gzip input is decompressed transparently. If r is an
// io.Closer it is closed by Close
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var in io.Reader = br
	var gz *gzip.Reader
	if head, _ := br.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
		z, err := gzip.NewReader(br)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeIO, "jsonl: open gzip stream")
		}
		gz, in = z, z
	}

	// strips a UTF-8 BOM, decodes UTF-16 when a UTF-16 BOM is present, passes anything else through
	in = transform.NewReader(in, unicode.BOMOverride(transform.Nop))

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, initialBufSize), maxScanTokenSize)
	return &Reader{src: r, gz: gz, sc: sc}, nil
}

// Next returns the next object; io.EOF when the stream is exhausted.
// After any error every further call returns that same error
func (rd *Reader) Next() (Object, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	if !rd.sc.Scan() {
		if err := rd.sc.Err(); err != nil {
			rd.err = perr.WithOp(perr.Wrapf(err, perr.ErrorCodeIO, "jsonl: read after line %d", rd.line), "jsonl.read")
			return nil, rd.err
		}
		rd.err = io.EOF
		return nil, io.EOF
	}
	rd.line++
	raw := rd.sc.Bytes()
	rd.bytes += int64(len(raw) + 1) // include newline

	// json.Unmarshal leaves bad bytes inside RawMessage values untouched
	if !utf8.Valid(raw) {
		rd.err = perr.WithOp(perr.JSONErrf("jsonl: line %d: invalid UTF-8", rd.line), "jsonl.read")
		return nil, rd.err
	}

	var obj Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		rd.err = perr.WithOp(perr.Wrapf(err, perr.ErrorCodeJSON, "jsonl: line %d: invalid JSON", rd.line), "jsonl.read")
		return nil, rd.err
	}
	if obj == nil {
		rd.err = perr.WithOp(perr.JSONErrf("jsonl: line %d: expected a JSON object, got null", rd.line), "jsonl.read")
		return nil, rd.err
	}
	rd.records++

	if !rd.sampled {
		rd.sampled = true
		l := logger.Named("jsonl")
		l.Debug().
			Int("line_bytes", len(raw)).
			Str("sample_raw", truncateUTF8(raw, sampleRawMax)).
			Msg("jsonl: sample raw line")
	}

	return obj, nil
}

// Line returns the number of the last line read, 1-based
func (rd *Reader) Line() int { return rd.line }

// Stats returns the number of objects parsed and bytes of text consumed so far
func (rd *Reader) Stats() (records int, bytes int64) {
	return rd.records, rd.bytes
}

// Close releases the gzip stream and closes the source if it is closable
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			first = err
		}
	}
	if c, ok := rd.src.(io.Closer); ok {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// truncateUTF8 returns a string made from b, truncated to at most max bytes,
// backing up to a UTF-8 boundary if needed, and appending an ellipsis if truncated
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	// back up to the start of a rune (0b10xxxxxx indicates continuation byte)
	for i > 0 && (b[i]&0xC0) == 0x80 {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
