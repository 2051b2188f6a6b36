// Package quantization provides INT4 scalar quantization, the codec
// backing the quantized dataset adapter.
//
// INT4 quantization packs two 4-bit codes per byte using per-dimension
// min/diff ranges learned by Train, for 8x compression relative to
// float32. Distance against the packed codes is computed directly via a
// precomputed dequantization lookup table, without ever materializing
// the reconstructed float32 vector.
//
//	q := quantization.NewInt4Quantizer(128)
//	q.Train(trainingVectors)
//	code, _ := q.Encode(vector)       // 128 floats -> 64 bytes
//	dist, _ := q.L2Distance(query, code)
package quantization
