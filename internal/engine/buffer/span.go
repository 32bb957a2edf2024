package buffer

import "fmt"

// ByteSpan is a half-open byte range [Start, Start+Len) over the logical
// buffer content.
type ByteSpan struct {
	Start int64
	Len   int64
}

// Span constructs a ByteSpan.
func Span(start, length int64) ByteSpan {
	return ByteSpan{Start: start, Len: length}
}

// End returns the exclusive end offset.
func (s ByteSpan) End() int64 { return s.Start + s.Len }

// Valid reports whether the span is well formed: non-negative fields
// and no overflow. Validity does not imply the span is inside any
// particular buffer.
func (s ByteSpan) Valid() bool {
	return s.Start >= 0 && s.Len >= 0 && s.Start+s.Len >= s.Start
}

// Empty reports whether the span covers no bytes.
func (s ByteSpan) Empty() bool { return s.Len == 0 }

// Contains reports whether off lies inside the span.
func (s ByteSpan) Contains(off int64) bool {
	return off >= s.Start && off < s.End()
}

// String formats the span for logs and errors.
func (s ByteSpan) String() string {
	return fmt.Sprintf("[%d,+%d)", s.Start, s.Len)
}
