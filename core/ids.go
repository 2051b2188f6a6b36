package core

// LocalID is a dense, internal identifier for a vector's slot within a dataset.
// It is strictly 32-bit, allowing for max 4 Billion vectors per dataset.
// Used for all hot-path structures (bitmaps, predicates, heaps).
type LocalID uint32

// MaxLocalID is the maximum possible value for a LocalID.
const MaxLocalID = ^LocalID(0)
