package dataset

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"github.com/hupe1980/svscore/core"
)

// Mmap is a read-only, memory-mapped float32 dataset opened directly
// from the native container format. When the data section starts on a
// 4-byte boundary, its GetDatum handles alias the mapped pages: no copy,
// no decode, pages fault in lazily as indices are first visited. When it
// does not, the section is copied once into an aligned buffer at open.
type Mmap struct {
	dim  int
	n    int
	data []float32
	raw  []byte
	file *os.File
}

// OpenMmap maps path into memory and validates its native container
// header. The returned Mmap must be closed when no longer needed.
// Compressed containers (FlagCompressed set) are rejected: use a
// streaming loader to decompress into an in-memory Simple dataset
// instead.
func OpenMmap(path string) (*Mmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size < HeaderSize {
		f.Close()
		return nil, fmt.Errorf("dataset: native container file too small")
	}

	raw, err := mmapFile(f, int(size)) //nolint:gosec
	if err != nil {
		f.Close()
		return nil, err
	}

	m, err := newMmapFromBytes(raw)
	if err != nil {
		munmapFile(raw)
		f.Close()
		return nil, err
	}
	m.file = f
	return m, nil
}

func newMmapFromBytes(raw []byte) (*Mmap, error) {
	var header FileHeader
	if _, err := header.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	if header.Flags&FlagCompressed != 0 {
		return nil, fmt.Errorf("dataset: mmap does not support compressed containers")
	}

	dim := int(header.Dimension)
	n := int(header.Count)
	offset := int(header.DataOffset) //nolint:gosec
	size := int(header.VectorDataSize())
	if offset+size > len(raw) {
		return nil, fmt.Errorf("dataset: native container truncated: need %d bytes at offset %d, have %d", size, offset, len(raw))
	}

	var data []float32
	if n > 0 {
		if offset%4 == 0 {
			data = unsafe.Slice((*float32)(unsafe.Pointer(&raw[offset])), n*dim) //nolint:gosec
		} else {
			buf := make([]float32, n*dim)
			for i := range buf {
				b := raw[offset+i*4 : offset+i*4+4]
				buf[i] = *(*float32)(unsafe.Pointer(&b[0])) //nolint:gosec
			}
			data = buf
		}
	}

	return &Mmap{dim: dim, n: n, data: data, raw: raw}, nil
}

// Close unmaps the file and releases its descriptor. Safe to call on a
// nil receiver.
func (m *Mmap) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.raw != nil {
		err = munmapFile(m.raw)
		m.raw = nil
		m.data = nil
	}
	if m.file != nil {
		if cerr := m.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.file = nil
	}
	return err
}

func (m *Mmap) Size() int       { return m.n }
func (m *Mmap) Dimensions() int { return m.dim }

// GetDatum returns the mapped window for entry i. The mode hint is
// ignored: the native container stores full-fidelity float32 only.
func (m *Mmap) GetDatum(i core.LocalID, _ AccessMode) []float32 {
	start := int(i) * m.dim
	return m.data[start : start+m.dim : start+m.dim]
}

// Prefetch touches the first element of entry i's page to encourage the
// OS to fault it in ahead of the real read.
func (m *Mmap) Prefetch(i core.LocalID) {
	start := int(i) * m.dim
	if start >= 0 && start < len(m.data) {
		_ = m.data[start]
	}
}

var _ Dataset[float32] = (*Mmap)(nil)
