package distance

import (
	"math"

	"github.com/hupe1980/svscore/internal/f16"
	"github.com/hupe1980/svscore/internal/simd"
)

// L2 is squared Euclidean distance over float32 vectors. Lower is better.
type L2 struct{}

func (L2) Comparator() Comparator { return Ascending }
func (L2) FixArgument(q []float32) Fixed[float32] {
	return funcFixed[float32]{q: q, fn: func(q, x []float32) float32 { return simd.SquaredL2(q, x) }}
}

// InnerProduct is the raw dot product over float32 vectors. Higher is better.
type InnerProduct struct{}

func (InnerProduct) Comparator() Comparator { return Descending }
func (InnerProduct) FixArgument(q []float32) Fixed[float32] {
	return funcFixed[float32]{q: q, fn: func(q, x []float32) float32 { return simd.Dot(q, x) }}
}

// Cosine is cosine similarity over float32 vectors. Higher is better.
// FixArgument precomputes the query's inverse norm once per query rather
// than once per comparison — the motivating use case for argument fixing.
type Cosine struct{}

func (Cosine) Comparator() Comparator { return Descending }

type cosineFixed struct {
	q       []float32
	invNorm float32
}

func (f cosineFixed) Compute(x []float32) float32 {
	dot := simd.Dot(f.q, x)
	xNorm2 := simd.Dot(x, x)
	if xNorm2 == 0 || f.invNorm == 0 {
		return 0
	}
	return dot * f.invNorm / sqrt32(xNorm2)
}

func (Cosine) FixArgument(q []float32) Fixed[float32] {
	qNorm2 := simd.Dot(q, q)
	var invNorm float32
	if qNorm2 > 0 {
		invNorm = 1 / sqrt32(qNorm2)
	}
	return cosineFixed{q: q, invNorm: invNorm}
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// HammingBytes is Hamming distance over packed binary codes. Lower is
// better. Its element type is byte, matching quantization.Dataset's
// codes; that dataset's AdaptDistance replaces it, like any ascending
// distance, with a lookup-table squared L2.
type HammingBytes struct{}

func (HammingBytes) Comparator() Comparator { return Ascending }
func (HammingBytes) FixArgument(q []byte) Fixed[byte] {
	return funcFixed[byte]{q: q, fn: func(q, x []byte) float32 { return float32(simd.Hamming(q, x)) }}
}

// decodeF16 converts a slice of binary16 bit-patterns (stored as raw
// uint16, the dataset element type) to float32.
func decodeF16(src []uint16) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = f16.ToFloat32(f16.Bits(v))
	}
	return out
}

// F16L2 is squared Euclidean distance over vectors stored as packed
// binary16 (IEEE-754 float16) bit patterns, the half-memory storage
// format a Dataset[uint16] uses in place of float32. Each handle is
// decoded to float32 once per comparison; execution stays in float32
// throughout, per internal/f16's own design note. Lower is better.
type F16L2 struct{}

func (F16L2) Comparator() Comparator { return Ascending }

type f16L2Fixed struct {
	qf []float32
}

func (f f16L2Fixed) Compute(x []uint16) float32 {
	return simd.SquaredL2(f.qf, decodeF16(x))
}

func (F16L2) FixArgument(q []uint16) Fixed[uint16] {
	return f16L2Fixed{qf: decodeF16(q)}
}
