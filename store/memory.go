package store

import (
	"github.com/hupe1980/pisearch/resource"
)

// MemoryStore is an in-memory Store backed by a table of fixed-size chunks.
//
// Chunks are allocated on first write and charged against the resource
// controller, so a store with a large capacity costs only what is written.
// Bytes that were never written read as zero.
type MemoryStore struct {
	base

	chunkSize int64
	chunks    [][]byte
	length    int64
	pos       int64

	rc       *resource.Controller
	reserved int64
}

// NewMemory creates a memory store with the given initial capacity.
//
// In ModeRead and ModeReadWrite the store starts with length == capacity, so
// an array container can address every byte of it. In ModeWrite the store
// starts empty and grows as data is written.
func NewMemory(capacity int64, mode Mode, buf []byte, optFns ...Option) (*MemoryStore, error) {
	b, err := newBase(mode, buf)
	if err != nil {
		return nil, err
	}
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	o := applyOptions(optFns)
	if o.chunkSize <= 0 || int64(len(buf)) > o.chunkSize {
		return nil, ErrInvalidBlockSize
	}

	m := &MemoryStore{
		base:      b,
		chunkSize: o.chunkSize,
		chunks:    make([][]byte, ceilDiv(capacity, o.chunkSize)),
		rc:        o.rc,
	}
	if mode.CanRead() {
		m.length = capacity
	}
	return m, nil
}

// ChunkSize returns the chunk size.
func (m *MemoryStore) ChunkSize() int64 { return m.chunkSize }

// AllocatedBytes returns the bytes held by allocated chunks.
func (m *MemoryStore) AllocatedBytes() int64 { return m.reserved }

// ReadBlocks copies up to count bytes at the current position into the buffer.
func (m *MemoryStore) ReadBlocks(count int) (int, error) {
	if err := m.checkRead(count); err != nil {
		return 0, err
	}
	n := min(int64(count), m.length-m.pos)
	if n <= 0 {
		return 0, nil
	}
	m.copyOut(m.buf[:n], m.pos)
	m.pos += n
	return int(n), nil
}

// WriteBlocks copies buf[:count] into the store at the current position,
// extending the length when writing past the end.
func (m *MemoryStore) WriteBlocks(count int) (int, error) {
	if err := m.checkWrite(count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	end := m.pos + int64(count)
	if err := m.ensure(m.pos, end); err != nil {
		return 0, err
	}
	m.copyIn(m.buf[:count], m.pos)
	m.pos = end
	if end > m.length {
		m.length = end
	}
	return count, nil
}

// Position returns the current position.
func (m *MemoryStore) Position() (int64, error) {
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	return m.pos, nil
}

// SetPosition moves the cursor.
func (m *MemoryStore) SetPosition(pos int64) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if pos < 0 || pos > m.length {
		return ErrInvalidPosition
	}
	m.pos = pos
	return nil
}

// Length returns the logical length.
func (m *MemoryStore) Length() (int64, error) {
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	return m.length, nil
}

// Close drops all chunks and returns their memory to the controller.
func (m *MemoryStore) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.chunks = nil
	m.rc.ReleaseMemory(m.reserved)
	m.reserved = 0
	return nil
}

// ensure allocates every chunk touched by [from, to). Either all chunks are
// allocated or none is, so a refused write leaves the store unchanged.
func (m *MemoryStore) ensure(from, to int64) error {
	last := (to - 1) / m.chunkSize
	if need := last + 1 - int64(len(m.chunks)); need > 0 {
		m.chunks = append(m.chunks, make([][]byte, need)...)
	}

	var missing []int64
	for ci := from / m.chunkSize; ci <= last; ci++ {
		if m.chunks[ci] == nil {
			missing = append(missing, ci)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	bytes := int64(len(missing)) * m.chunkSize
	if !m.rc.TryAcquireMemory(bytes) {
		return ErrMemoryLimit
	}
	m.reserved += bytes
	for _, ci := range missing {
		m.chunks[ci] = make([]byte, m.chunkSize)
	}
	return nil
}

func (m *MemoryStore) copyOut(dst []byte, off int64) {
	for len(dst) > 0 {
		ci, co := off/m.chunkSize, off%m.chunkSize
		k := min(int64(len(dst)), m.chunkSize-co)
		if chunk := m.chunks[ci]; chunk != nil {
			copy(dst[:k], chunk[co:co+k])
		} else {
			clear(dst[:k])
		}
		dst = dst[k:]
		off += k
	}
}

func (m *MemoryStore) copyIn(src []byte, off int64) {
	for len(src) > 0 {
		ci, co := off/m.chunkSize, off%m.chunkSize
		k := copy(m.chunks[ci][co:], src)
		src = src[k:]
		off += int64(k)
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
