// Package distance implements the distance-functor contract: argument
// fixing, broadcast replication, and comparator polarity, consumed by the
// flat search engine (package flat) and by quantized dataset adapters
// (package quantization).
//
// # Usage
//
//	d := distance.L2{}
//	b := distance.NewBroadcast(d, queries)
//	score := b.Compute(0, x) // x is a dataset handle
package distance
