package loader

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/svscore/dataset"
)

// DiskANNLoader reads a DiskANN ".bin" file: an 8-byte header (two
// little-endian int32s — count, then dimension) followed by row-major
// float32 data. Load reads only the .bin file and applies no id
// remapping; an LZ4-framed id remap sidecar is read separately with
// LoadIDMap.
type DiskANNLoader struct{}

func (DiskANNLoader) Accepts(tag string) bool {
	return strings.HasSuffix(tag, ".bin")
}

func (DiskANNLoader) Load(_ context.Context, tag string) (dataset.Dataset[float32], error) {
	f, err := os.Open(tag)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", tag, err)
	}
	defer f.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("loader: read header of %s: %w", tag, err)
	}
	n := int(int32(binary.LittleEndian.Uint32(header[0:4])))
	dim := int(int32(binary.LittleEndian.Uint32(header[4:8])))
	if n < 0 || dim <= 0 {
		return nil, fmt.Errorf("loader: %s has invalid header (count=%d, dim=%d)", tag, n, dim)
	}

	flat := make([]float32, n*dim)
	buf := make([]byte, 4)
	for i := range flat {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("loader: read vector data of %s: %w", tag, err)
		}
		flat[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	}

	return dataset.NewSimpleFromFlat(flat, dim)
}

// LoadIDMap decodes the LZ4-framed little-endian uint64 id remap table
// at path, if present. Returns nil, nil when no sidecar exists.
func LoadIDMap(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loader: open id map %s: %w", path, err)
	}
	defer f.Close()

	zr := lz4.NewReader(f)
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("loader: decompress id map %s: %w", path, err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("loader: id map %s has non-multiple-of-8 length %d", path, len(raw))
	}

	ids := make([]uint64, len(raw)/8)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return ids, nil
}
