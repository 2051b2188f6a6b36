// Package quantization adapts the INT4 scalar-quantization codec to the
// dataset contract, so a flat engine instantiated over packed codes can
// be searched exactly like any other dataset.
package quantization

import (
	"fmt"
	"math"

	iq "github.com/hupe1980/svscore/internal/quantization"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/distance"
)

// maxScore is the fail-closed score for a malformed code: maximally far
// under an ascending (lower-is-better) comparator, matching
// distance.Ascending's own Worst().
const maxScore = math.MaxFloat32

// Dataset stores vectors as packed 4-bit codes and satisfies
// dataset.Dataset[byte], dataset.Mutable[byte], and dataset.Adapter[byte].
// Every entry is a code of length CodeLen, not the original float32
// vector; GetDatum returns codes as-is, never decoded.
type Dataset struct {
	dim     int
	codeLen int
	codes   [][]byte
	q       *iq.Int4Quantizer
}

// NewDataset trains an INT4 quantizer on rows and encodes every row as a
// packed code. rows must be non-empty and every row must share the same
// dimensionality.
func NewDataset(rows [][]float32) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("quantization: rows must be non-empty")
	}

	dim := len(rows[0])

	q := iq.NewInt4Quantizer(dim)
	if err := q.Train(rows); err != nil {
		return nil, fmt.Errorf("quantization: train: %w", err)
	}

	codes := make([][]byte, len(rows))
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("quantization: row %d has dimension %d, want %d", i, len(r), dim)
		}
		c, err := q.Encode(r)
		if err != nil {
			return nil, fmt.Errorf("quantization: encode row %d: %w", i, err)
		}
		codes[i] = c
	}

	return &Dataset{
		dim:     dim,
		codeLen: (dim + 1) / 2,
		codes:   codes,
		q:       q,
	}, nil
}

// Size returns the number of encoded entries.
func (d *Dataset) Size() int { return len(d.codes) }

// Dimensions returns the code length in bytes, not the original
// float32 dimensionality — that is what every GetDatum handle's length
// actually is, and what the flat engine's dimension check compares
// against a query code's length.
func (d *Dataset) Dimensions() int { return d.codeLen }

// OriginalDimensions returns the dimensionality of the uncompressed
// vectors this dataset was built from.
func (d *Dataset) OriginalDimensions() int { return d.dim }

// GetDatum returns the packed code for entry i. mode is ignored: a code
// has no cheaper representation than itself.
func (d *Dataset) GetDatum(i core.LocalID, _ dataset.AccessMode) []byte {
	return d.codes[i]
}

// SetDatum overwrites entry i's code in place. v must already be a valid
// packed code of length Dimensions(), e.g. produced by EncodeQuery.
func (d *Dataset) SetDatum(i core.LocalID, v []byte) error {
	if len(v) != d.codeLen {
		return fmt.Errorf("quantization: code has length %d, want %d", len(v), d.codeLen)
	}
	copy(d.codes[i], v)
	return nil
}

// Prefetch touches entry i's first byte as a cache hint.
func (d *Dataset) Prefetch(i core.LocalID) {
	if int(i) < len(d.codes) && len(d.codes[i]) > 0 {
		_ = d.codes[i][0]
	}
}

// EncodeQuery packs a float32 query into the code form this dataset's
// entries are stored as, for use as the Search query argument.
func (d *Dataset) EncodeQuery(q []float32) ([]byte, error) {
	return d.q.Encode(q)
}

// AdaptDistance specializes an ascending (lower-is-better) distance to
// operate directly on packed codes via the quantizer's precomputed
// dequantization lookup table, never materializing the reconstructed
// float32 vectors. Distances with any other comparator are returned
// unchanged, since the lookup table only implements squared L2.
func (d *Dataset) AdaptDistance(dist distance.Distance[byte]) distance.Distance[byte] {
	if dist.Comparator() != distance.Ascending {
		return dist
	}
	return lookupL2{q: d.q}
}

// lookupL2 is a distance.Distance[byte] whose Fixed decodes the query
// code once and then scores every data code against it via the
// quantizer's lookup-table L2Distance, which never reconstructs the
// data vector.
type lookupL2 struct {
	q *iq.Int4Quantizer
}

func (d lookupL2) Comparator() distance.Comparator { return distance.Ascending }

func (d lookupL2) FixArgument(q []byte) distance.Fixed[byte] {
	qf, err := d.q.Decode(q)
	if err != nil {
		// A malformed query code fails closed: every comparison scores
		// as maximally far rather than panicking on the hot path.
		return constFixed(maxScore)
	}
	return lookupL2Fixed{q: d.q, qf: qf}
}

type lookupL2Fixed struct {
	q  *iq.Int4Quantizer
	qf []float32
}

func (f lookupL2Fixed) Compute(x []byte) float32 {
	score, err := f.q.L2Distance(f.qf, x)
	if err != nil {
		return maxScore
	}
	return score
}

type constFixed float32

func (f constFixed) Compute([]byte) float32 { return float32(f) }

var (
	_ dataset.Dataset[byte]   = (*Dataset)(nil)
	_ dataset.Mutable[byte]   = (*Dataset)(nil)
	_ dataset.Adapter[byte]   = (*Dataset)(nil)
	_ distance.Distance[byte] = lookupL2{}
	_ distance.Fixed[byte]    = lookupL2Fixed{}
)
