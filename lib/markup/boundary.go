// Package markup holds the byte-level stages of the page pipeline: narrowing
// a page down to the region of interest, neutralizing user-authored content
// before the tolerant parser sees it, and the canonical serialization of
// content bodies.
package markup

import "bytes"

type findOptions struct {
	extend       bool
	withoutStart bool
	withoutEnd   bool
}

type FindOption func(*findOptions)

// Extend searches for the end marker from the right, so a region containing
// nested occurrences of the end marker is bounded by the last one.
func Extend() FindOption {
	return func(o *findOptions) { o.extend = true }
}

// WithoutStart excludes the start marker from the result.
func WithoutStart() FindOption {
	return func(o *findOptions) { o.withoutStart = true }
}

// WithoutEnd excludes the end marker from the result.
func WithoutEnd() FindOption {
	return func(o *findOptions) { o.withoutEnd = true }
}

// FindSubstring returns the part of s between the first occurrence of start
// and the following occurrence of end, markers included unless told
// otherwise. ok is false when start is missing, or when end is missing after
// start.
func FindSubstring(s, start, end []byte, opts ...FindOption) (region []byte, ok bool) {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}

	f1 := bytes.Index(s, start)
	if f1 < 0 {
		return nil, false
	}
	rest := s[f1+len(start):]

	var f2 int
	if o.extend {
		f2 = bytes.LastIndex(rest, end)
	} else {
		f2 = bytes.Index(rest, end)
	}
	if f2 < 0 {
		return nil, false
	}
	f2 += f1 + len(start)

	from := f1
	if o.withoutStart {
		from = f1 + len(start)
	}
	to := f2 + len(end)
	if o.withoutEnd {
		to = f2
	}
	return s[from:to], true
}
