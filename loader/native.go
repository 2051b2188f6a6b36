package loader

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/resource"
)

// NativeLoader reads the native ".svs" container format: FileHeader
// followed by row-major float32 data, optionally zstd-compressed when
// FlagCompressed is set.
type NativeLoader struct {
	// Res, if non-nil, throttles the file read through the shared
	// resource controller's IO limiter — useful when a native container
	// lives on a network filesystem shared with other background work.
	Res *resource.Controller
}

func (NativeLoader) Accepts(tag string) bool {
	return strings.HasSuffix(tag, ".svs")
}

func (l NativeLoader) Load(ctx context.Context, tag string) (dataset.Dataset[float32], error) {
	f, err := os.Open(tag)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", tag, err)
	}
	defer f.Close()

	var r io.Reader = f
	if l.Res != nil {
		r = resource.NewRateLimitedReader(f, l.Res, ctx)
	}

	d, err := decodeNativeContainer(r)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", tag, err)
	}
	return d, nil
}

// decodeNativeContainer reads a FileHeader followed by its (optionally
// zstd-compressed) vector data section from r, used both by the local
// file loader and the remote loaders once they've fetched the container
// bytes into a reader of their own.
func decodeNativeContainer(r io.Reader) (dataset.Dataset[float32], error) {
	var header dataset.FileHeader
	if _, err := header.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// DataOffset may place the vector data section after padding beyond
	// the fixed header; skip straight to it so this streaming decode
	// agrees with the mmap loader, which seeks to DataOffset directly.
	if pad := int64(header.DataOffset) - dataset.HeaderSize; pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, fmt.Errorf("skip to data offset: %w", err)
		}
	} else if pad < 0 {
		return nil, fmt.Errorf("invalid data offset %d: precedes header end %d", header.DataOffset, dataset.HeaderSize)
	}

	var body io.Reader = r
	if header.Flags&dataset.FlagCompressed != 0 {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		body = zr
	}

	dim := int(header.Dimension)
	n := int(header.Count)
	flat := make([]float32, n*dim)

	buf := make([]byte, 4)
	for i := range flat {
		if _, err := io.ReadFull(body, buf); err != nil {
			return nil, fmt.Errorf("read vector data: %w", err)
		}
		flat[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	}

	return dataset.NewSimpleFromFlat(flat, dim)
}
