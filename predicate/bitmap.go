package predicate

import (
	"io"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/svscore/core"
)

// Bitmap is a roaring-bitmap-backed set of ids, usable directly as a
// Predicate via its Contains method.
type Bitmap struct {
	rb *roaring.Bitmap
}

// NewBitmap creates an empty Bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// BitmapOf creates a Bitmap containing exactly the given ids.
func BitmapOf(ids ...core.LocalID) *Bitmap {
	b := NewBitmap()
	for _, id := range ids {
		b.Add(id)
	}
	return b
}

// Add adds id to the bitmap.
func (b *Bitmap) Add(id core.LocalID) { b.rb.Add(uint32(id)) }

// Remove removes id from the bitmap.
func (b *Bitmap) Remove(id core.LocalID) { b.rb.Remove(uint32(id)) }

// Contains reports whether id is in the bitmap. Satisfies Predicate.
func (b *Bitmap) Contains(id core.LocalID) bool { return b.rb.Contains(uint32(id)) }

// Cardinality returns the number of ids in the bitmap.
func (b *Bitmap) Cardinality() uint64 { return b.rb.GetCardinality() }

// IsEmpty reports whether the bitmap has no ids.
func (b *Bitmap) IsEmpty() bool { return b.rb.IsEmpty() }

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap { return &Bitmap{rb: b.rb.Clone()} }

// And intersects b with other in place.
func (b *Bitmap) And(other *Bitmap) { b.rb.And(other.rb) }

// Or unions b with other in place.
func (b *Bitmap) Or(other *Bitmap) { b.rb.Or(other.rb) }

// Iterator returns an ascending iterator over the bitmap's ids.
func (b *Bitmap) Iterator() iter.Seq[core.LocalID] {
	return func(yield func(core.LocalID) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(core.LocalID(it.Next())) {
				return
			}
		}
	}
}

// WriteTo serializes the bitmap.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) { return b.rb.WriteTo(w) }

// ReadFrom deserializes the bitmap, replacing its contents.
func (b *Bitmap) ReadFrom(r io.Reader) (int64, error) { return b.rb.ReadFrom(r) }

// Predicate returns b.Contains as a Predicate value.
func (b *Bitmap) Predicate() Predicate { return b.Contains }
