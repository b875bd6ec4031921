// Package httprange parses HTTP Range request headers into bounded byte
// regions. Only the first range of a multi-range header is honored; no
// caller of this service issues multi-range requests.
package httprange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed signals a Range header that does not follow the
	// bytes=start-end syntax.
	ErrMalformed = errors.New("malformed range header")
	// ErrUnsatisfiable signals a syntactically valid range that lies outside
	// the bounds of the object.
	ErrUnsatisfiable = errors.New("requested range not satisfiable")
)

// Range is an inclusive byte region within [0, length-1].
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value for an object of the
// given total length.
func (r Range) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// Parse resolves the first range of a Range header against an object of the
// given length. Open-ended (bytes=N-) and suffix (bytes=-N) forms are
// supported; the end offset is clamped to length-1.
func Parse(header string, length int64) (Range, error) {
	header = strings.TrimSpace(header)
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return Range{}, ErrMalformed
	}

	spec := strings.TrimSpace(strings.SplitN(header[len(prefix):], ",", 2)[0])
	dash := strings.Index(spec, "-")
	if dash < 0 {
		return Range{}, ErrMalformed
	}

	startPart := strings.TrimSpace(spec[:dash])
	endPart := strings.TrimSpace(spec[dash+1:])

	if startPart == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(endPart, 10, 64)
		if err != nil {
			return Range{}, ErrMalformed
		}
		if n <= 0 || length <= 0 {
			return Range{}, ErrUnsatisfiable
		}
		start := length - n
		if start < 0 {
			start = 0
		}
		return Range{Start: start, End: length - 1}, nil
	}

	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil || start < 0 {
		return Range{}, ErrMalformed
	}

	end := length - 1
	if endPart != "" {
		end, err = strconv.ParseInt(endPart, 10, 64)
		if err != nil {
			return Range{}, ErrMalformed
		}
		if end > length-1 {
			end = length - 1
		}
	}

	if start >= length || start > end {
		return Range{}, ErrUnsatisfiable
	}
	return Range{Start: start, End: end}, nil
}
