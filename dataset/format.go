package dataset

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// FormatMagic identifies the native container format ("SVS0").
const FormatMagic = 0x53565330

// FormatVersion is the current native container format version.
const FormatVersion uint32 = 1

// HeaderSize is the fixed size, in bytes, of the native container header.
const HeaderSize = 32

// FlagCompressed indicates the vector data section is zstd-compressed.
// Only the streaming loader understands this flag; Mmap requires it
// unset, since compressed data cannot be mapped directly.
const FlagCompressed uint32 = 1 << 0

// FileHeader is the fixed-size header at the start of a native
// container file. All multi-byte fields are little-endian.
type FileHeader struct {
	Magic      uint32 // FormatMagic
	Version    uint32 // FormatVersion
	Flags      uint32 // feature flags (FlagCompressed)
	Dimension  uint32 // vector dimensionality
	Count      uint64 // number of vectors
	DataOffset uint64 // offset to the vector data section
	Checksum   uint32 // CRC32 of the preceding fields
}

// Validate checks magic and version.
func (h *FileHeader) Validate() error {
	if h.Magic != FormatMagic {
		return fmt.Errorf("dataset: invalid native container magic")
	}
	if h.Version > FormatVersion {
		return fmt.Errorf("dataset: unsupported native container version %d", h.Version)
	}
	return nil
}

// VectorDataSize returns the size, in bytes, of the uncompressed vector
// data section.
func (h *FileHeader) VectorDataSize() int64 {
	return int64(h.Count) * int64(h.Dimension) * 4 //nolint:gosec
}

// WriteTo writes the header to w.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.Dimension)
	binary.LittleEndian.PutUint64(buf[16:24], h.Count)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.DataOffset)) //nolint:gosec

	h.Checksum = crc32.ChecksumIEEE(buf[:28])
	binary.LittleEndian.PutUint32(buf[28:32], h.Checksum)

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom reads the header from r.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), err
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Flags = binary.LittleEndian.Uint32(buf[8:12])
	h.Dimension = binary.LittleEndian.Uint32(buf[12:16])
	h.Count = binary.LittleEndian.Uint64(buf[16:24])
	h.DataOffset = uint64(binary.LittleEndian.Uint32(buf[24:28]))
	h.Checksum = binary.LittleEndian.Uint32(buf[28:32])

	if expected := crc32.ChecksumIEEE(buf[:28]); expected != h.Checksum {
		return int64(n), fmt.Errorf("dataset: native container header checksum mismatch")
	}
	return int64(n), h.Validate()
}
