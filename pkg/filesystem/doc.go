// Package filesystem provides filesystem implementations for dotlink.
//
// Every implementation satisfies types.FS and is backed by afero, so the
// real OS filesystem and sandboxed variants share one code path.
package filesystem
