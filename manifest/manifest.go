// Package manifest describes the files that make up a persisted index.
package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/codec"
	"github.com/hupe1980/pisearch/resource"
)

const (
	FileName       = "manifest.json"
	CurrentVersion = 1
)

var (
	// ErrNotFound is returned when no manifest exists.
	ErrNotFound = errors.New("manifest: not found")
	// ErrInvalid is returned when a manifest is inconsistent.
	ErrInvalid = errors.New("manifest: invalid")
)

// Manifest describes one index.
type Manifest struct {
	Version int         `json:"version"`
	Codec   string      `json:"codec"`
	Digits  DigitsInfo  `json:"digits"`
	Suffix  SuffixInfo  `json:"suffix"`
	Prefix  *PrefixInfo `json:"prefix,omitempty"`
}

// DigitsInfo describes the packed digit file.
type DigitsInfo struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}

// SuffixInfo describes the suffix array file.
type SuffixInfo struct {
	Path  string `json:"path"`
	Width int    `json:"width"`
	Count int64  `json:"count"`
}

// PrefixInfo describes the optional prefix table.
type PrefixInfo struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// Validate checks that the manifest is self-consistent.
func (m *Manifest) Validate() error {
	switch {
	case m.Version != CurrentVersion:
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, m.Version, CurrentVersion)
	case m.Digits.Path == "" || m.Suffix.Path == "":
		return fmt.Errorf("%w: missing file path", ErrInvalid)
	case m.Digits.Count < 0 || m.Digits.Bytes != (m.Digits.Count+1)/2:
		return fmt.Errorf("%w: %d digits cannot occupy %d bytes", ErrInvalid, m.Digits.Count, m.Digits.Bytes)
	case m.Suffix.Width < 1 || m.Suffix.Width > 8:
		return fmt.Errorf("%w: suffix width %d", ErrInvalid, m.Suffix.Width)
	case m.Suffix.Count != m.Digits.Count:
		return fmt.Errorf("%w: %d suffixes for %d digits", ErrInvalid, m.Suffix.Count, m.Digits.Count)
	case m.Prefix != nil && (m.Prefix.Path == "" || m.Prefix.Depth < 0):
		return fmt.Errorf("%w: prefix table", ErrInvalid)
	}
	return nil
}

// Store loads and saves the manifest of one index.
type Store struct {
	bs    blobstore.BlobStore
	codec codec.Codec
	rc    *resource.Controller
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithResourceController reads the manifest through rc's IO limit.
func WithResourceController(rc *resource.Controller) StoreOption {
	return func(s *Store) {
		s.rc = rc
	}
}

// NewStore creates a manifest store writing with c (codec.Default if nil).
func NewStore(bs blobstore.BlobStore, c codec.Codec, opts ...StoreOption) *Store {
	if c == nil {
		c = codec.Default
	}
	s := &Store{bs: bs, codec: c}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Load reads and validates the manifest. The codec recorded in the manifest
// must be known to codec.ByName.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	data, err := blobstore.ReadLimited(ctx, s.bs, FileName, s.rc)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, ok := codec.ByName(m.Codec); !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalid, m.Codec)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save validates m and writes it atomically.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	m.Version = CurrentVersion
	m.Codec = s.codec.Name()
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(m)
	if err != nil {
		return err
	}
	return s.bs.Put(ctx, FileName, data)
}
