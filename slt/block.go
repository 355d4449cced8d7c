package slt

import "strconv"

// Identifier blocks are the game's implicit ownership convention: an entity
// with id N owns the half-open range [N*width, (N+1)*width). Dependent rows
// place the identifiers they own inside that block; values outside any
// relevant block are global lookups or belong to another entity and must
// never be rewritten.

// BlockWidth is the standard car/engine block width. Torque curves are also
// observed with NarrowBlockWidth in some builds.
const (
	BlockWidth       int64 = 1000
	NarrowBlockWidth int64 = 100
)

// Block is the identifier range owned by one entity.
type Block struct {
	Base  int64
	Width int64
}

// BlockFor computes the block owned by an entity id at the given width.
func BlockFor(id, width int64) Block {
	return Block{Base: id * width, Width: width}
}

// EntityBlock computes the standard 1000-wide block for an entity id.
func EntityBlock(id int64) Block {
	return BlockFor(id, BlockWidth)
}

// Contains reports whether v lies inside the block.
func (b Block) Contains(v int64) bool {
	return v >= b.Base && v < b.Base+b.Width
}

// End returns the first value past the block.
func (b Block) End() int64 {
	return b.Base + b.Width
}

// Remap moves v from the old block to the same offset in the new block.
// Values outside the old block pass through unchanged; the second return
// reports whether a remap happened.
func Remap(v int64, old, new Block) (int64, bool) {
	if !old.Contains(v) {
		return v, false
	}
	return new.Base + (v - old.Base), true
}

// AsInt coerces a scanned SQLite value to an integer the way the block
// convention needs: integer and real affinities directly, text and blob
// values by parsing. Reals are truncated toward zero.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
