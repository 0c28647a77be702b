// Package label provides an immutable fixed-capacity text value used to
// name descriptors.
//
// A Label owns a NUL-terminated buffer whose length is fixed when the label
// is constructed. It converts to a NUL-terminated view (for FFI-style
// consumers), an owned string, and a non-owning byte view.
package label

import "bytes"

// Label is a fixed-capacity, NUL-terminated text value. The zero Label is
// the empty label.
type Label struct {
	buf []byte // always ends with a single NUL once constructed
}

// New builds a label from s. Embedded NULs truncate the label, matching the
// C-string view it exposes.
func New(s string) Label {
	if i := indexNUL([]byte(s)); i >= 0 {
		s = s[:i]
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return Label{buf: buf}
}

// FromChars builds a label from individual characters; the terminator is
// implicit.
func FromChars(chars ...byte) Label {
	if i := indexNUL(chars); i >= 0 {
		chars = chars[:i]
	}
	buf := make([]byte, len(chars)+1)
	copy(buf, chars)
	return Label{buf: buf}
}

// FromArray builds a label from a buffer that already carries its
// terminator. The label keeps the buffer's full capacity and stops at the
// first NUL; a buffer without a NUL is terminated after its last byte.
func FromArray(arr []byte) Label {
	n := len(arr)
	if n == 0 || arr[n-1] != 0 {
		n++
	}
	buf := make([]byte, n)
	copy(buf, arr)
	if i := indexNUL(buf); i >= 0 {
		clear(buf[i:])
	}
	return Label{buf: buf}
}

func indexNUL(b []byte) int {
	return bytes.IndexByte(b, 0)
}

func (l Label) length() int {
	if len(l.buf) == 0 {
		return 0
	}
	if i := indexNUL(l.buf); i >= 0 {
		return i
	}
	return len(l.buf)
}

// Len returns the number of characters before the terminator.
func (l Label) Len() int {
	return l.length()
}

// Cap returns the fixed capacity including the terminator.
func (l Label) Cap() int {
	if len(l.buf) == 0 {
		return 1
	}
	return len(l.buf)
}

// IsZero reports whether the label is empty.
func (l Label) IsZero() bool {
	return l.length() == 0
}

// String returns an owned copy of the text.
func (l Label) String() string {
	return string(l.buf[:l.length()])
}

// View returns the text without its terminator. The slice aliases the
// label and must not be modified; its capacity is clipped so appends never
// write into the label.
func (l Label) View() []byte {
	n := l.length()
	return l.buf[:n:n]
}

// CString returns the text with its NUL terminator. The slice aliases the
// label and must not be modified.
func (l Label) CString() []byte {
	if len(l.buf) == 0 {
		return []byte{0}
	}
	n := l.length()
	return l.buf[: n+1 : n+1]
}

// Equal reports whether two labels hold the same text.
func (l Label) Equal(other Label) bool {
	return bytes.Equal(l.View(), other.View())
}
