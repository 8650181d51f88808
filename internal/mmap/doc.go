// Package mmap provides read-only memory-mapped file access.
//
// A Mapping exposes a file's bytes without copying them through kernel
// buffers. Digit and suffix files can be tens of gigabytes; the mapping keeps
// them addressable with 64-bit offsets while the kernel pages in only what a
// search touches.
//
//	m, err := mmap.Open("pi.digits")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessRandom)
//	n, err := m.ReadAt(buf, off)
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, and Advise is a no-op there.
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
