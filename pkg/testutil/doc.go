// Package testutil provides utilities for testing dotlink components.
//
// Key components:
//   - MemoryFS: In-memory types.FS with symlink nodes and error injection
//   - Tree: Declarative source tree setup
//   - AssertSymlink / AssertNotExists / AssertRegularFile: destination checks
//
// Installer, linker and dirlinks tests run against MemoryFS. Only
// pkg/filesystem and the command tests touch the real filesystem, always
// under t.TempDir().
package testutil
