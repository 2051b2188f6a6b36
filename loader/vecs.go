package loader

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/hupe1980/svscore/dataset"
)

// VecsLoader reads the ".fvecs"/".bvecs"/".ivecs" family used throughout
// the ANN benchmark literature: each record is a little-endian int32
// dimension followed by that many elements of the format's element
// type. Every record must share the same dimension.
type VecsLoader struct{}

func (VecsLoader) Accepts(tag string) bool {
	return strings.HasSuffix(tag, ".fvecs") ||
		strings.HasSuffix(tag, ".bvecs") ||
		strings.HasSuffix(tag, ".ivecs")
}

func (VecsLoader) Load(_ context.Context, tag string) (dataset.Dataset[float32], error) {
	f, err := os.Open(tag)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", tag, err)
	}
	defer f.Close()

	elemSize, decode := vecsElementCodec(tag)

	var rows [][]float32
	dim := -1
	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("loader: read record header of %s: %w", tag, err)
		}
		recDim := int(binary.LittleEndian.Uint32(header))
		if dim == -1 {
			dim = recDim
		} else if recDim != dim {
			return nil, fmt.Errorf("loader: %s: record dimension %d disagrees with earlier %d", tag, recDim, dim)
		}

		raw := make([]byte, recDim*elemSize)
		if _, err := io.ReadFull(f, raw); err != nil {
			return nil, fmt.Errorf("loader: read record body of %s: %w", tag, err)
		}
		rows = append(rows, decode(raw, recDim))
	}

	if dim == -1 {
		return nil, fmt.Errorf("loader: %s is empty", tag)
	}
	return dataset.NewSimple(rows)
}

// vecsElementCodec returns the per-element byte width and decoder for a
// vecs-family file, dispatched by extension: fvecs stores float32,
// bvecs stores uint8, ivecs stores int32.
func vecsElementCodec(tag string) (int, func(raw []byte, n int) []float32) {
	switch {
	case strings.HasSuffix(tag, ".bvecs"):
		return 1, func(raw []byte, n int) []float32 {
			out := make([]float32, n)
			for i := 0; i < n; i++ {
				out[i] = float32(raw[i])
			}
			return out
		}
	case strings.HasSuffix(tag, ".ivecs"):
		return 4, func(raw []byte, n int) []float32 {
			out := make([]float32, n)
			for i := 0; i < n; i++ {
				out[i] = float32(int32(binary.LittleEndian.Uint32(raw[i*4:])))
			}
			return out
		}
	default: // .fvecs
		return 4, func(raw []byte, n int) []float32 {
			out := make([]float32, n)
			for i := 0; i < n; i++ {
				out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
			}
			return out
		}
	}
}
