// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file handle with read/write/seek capabilities
//   - [FileSystem]: filesystem operations (open, stat, remove, mkdir)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("digits", fs.Fault{FailAfterReads: 2})
//	// pass ffs to store.OpenFile via store.WithFileSystem
//
// # Design Notes
//
// This package does NOT take context.Context parameters. Local file
// operations are not interruptible at the syscall level.
package fs
