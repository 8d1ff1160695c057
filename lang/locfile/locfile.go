// Package locfile models the opaque "locfile" handle that instructions carry
// alongside their source location: a reference to the file a diagnostic
// should be reported against. The host's actual locfile (which also knows
// how to print source excerpts) lives outside this module; this is the
// minimal handle shape the IR and binder packages need to retain, pass
// around, and eventually release.
package locfile

import "github.com/mna/jqc/lang/token"

// A File is a retain-counted handle wrapping a *token.File. Instructions
// retain the locfile of whichever location they are stamped with (see
// ir.GenLocation); nothing in this module releases it, since instructions
// are never explicitly freed. Go's garbage collector
// makes the counting unnecessary for memory safety, but the explicit
// Retain/Release pair is kept so the IR's lifecycle mirrors the documented
// contract (a locfile is retained on assignment, released on instruction
// destruction) and so double-release bugs are still caught in tests.
type File struct {
	tf    *token.File
	count int
}

// New returns a fresh locfile handle for tf with a reference count of 1.
func New(tf *token.File) *File {
	return &File{tf: tf, count: 1}
}

// Retain increments the reference count and returns the same handle, the way
// a caller is expected to chain it: `i.Locfile = lf.Retain()`.
func (f *File) Retain() *File {
	if f == nil {
		return nil
	}
	f.count++
	return f
}

// Release decrements the reference count. It panics if called more times
// than the handle was retained, which would indicate a lifecycle bug in the
// caller.
func (f *File) Release() {
	if f == nil {
		return
	}
	if f.count <= 0 {
		panic("locfile: release of already-released handle")
	}
	f.count--
}

// TokenFile returns the underlying *token.File.
func (f *File) TokenFile() *token.File {
	if f == nil {
		return nil
	}
	return f.tf
}

// Name returns the underlying file's display name, or "" for a nil handle.
func (f *File) Name() string {
	if f == nil {
		return ""
	}
	return f.tf.Name()
}
