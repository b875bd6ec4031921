package httprange

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		length  int64
		want    Range
		wantErr error
	}{
		{"full open range", "bytes=0-", 1000, Range{0, 999}, nil},
		{"bounded range", "bytes=100-199", 1000, Range{100, 199}, nil},
		{"open from offset", "bytes=5-", 10, Range{5, 9}, nil},
		{"end clamped to length", "bytes=0-5000", 1000, Range{0, 999}, nil},
		{"single byte", "bytes=0-0", 10, Range{0, 0}, nil},
		{"last byte", "bytes=9-9", 10, Range{9, 9}, nil},
		{"suffix range", "bytes=-200", 1000, Range{800, 999}, nil},
		{"suffix longer than object", "bytes=-5000", 1000, Range{0, 999}, nil},
		{"first of multi-range honored", "bytes=0-99,200-299", 1000, Range{0, 99}, nil},
		{"whitespace tolerated", "bytes= 10 - 19 ", 100, Range{10, 19}, nil},

		{"start at length", "bytes=10-20", 10, Range{}, ErrUnsatisfiable},
		{"start beyond length", "bytes=1000-1010", 1000, Range{}, ErrUnsatisfiable},
		{"start after end", "bytes=20-10", 100, Range{}, ErrUnsatisfiable},
		{"zero-length object", "bytes=0-", 0, Range{}, ErrUnsatisfiable},
		{"suffix of zero-length object", "bytes=-5", 0, Range{}, ErrUnsatisfiable},
		{"zero suffix", "bytes=-0", 100, Range{}, ErrUnsatisfiable},

		{"missing unit", "0-100", 1000, Range{}, ErrMalformed},
		{"wrong unit", "items=0-100", 1000, Range{}, ErrMalformed},
		{"no dash", "bytes=100", 1000, Range{}, ErrMalformed},
		{"garbage start", "bytes=abc-100", 1000, Range{}, ErrMalformed},
		{"garbage end", "bytes=0-xyz", 1000, Range{}, ErrMalformed},
		{"empty spec", "bytes=", 1000, Range{}, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.header, tt.length)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q, %d) error = %v, want %v", tt.header, tt.length, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q, %d) = %+v, want %+v", tt.header, tt.length, got, tt.want)
			}
		})
	}
}

func TestRange_Len(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want int64
	}{
		{"hundred bytes", Range{100, 199}, 100},
		{"single byte", Range{0, 0}, 1},
		{"whole object", Range{0, 999}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Len(); got != tt.want {
				t.Errorf("Range%+v.Len() = %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestRange_ContentRange(t *testing.T) {
	r := Range{Start: 0, End: 2097151}
	if got, want := r.ContentRange(5000000), "bytes 0-2097151/5000000"; got != want {
		t.Errorf("ContentRange() = %q, want %q", got, want)
	}
}
