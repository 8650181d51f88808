// Package hash checksums persisted index blocks with CRC32-Castagnoli,
// which the standard library accelerates with SSE4.2 and the ARM CRC
// extension.
package hash
