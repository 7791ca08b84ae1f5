package pixkern

import "sync/atomic"

// launchState is built once per kernel invocation. It captures the
// clipped iteration bounds, the slice size, and the atomic slice cursor
// workers claim from. It is scoped to one Dispatch call and never reused.
type launchState struct {
	xStart, xEnd int
	yStart, yEnd int
	zStart, zEnd int
	aStart, aEnd int

	// sliceSize is the number of rows (2D strategy) or elements
	// (1D strategy) per claimed slice.
	sliceSize int

	// cursor is the slice cursor. It starts at 0 and is only ever
	// incremented.
	cursor atomic.Int64
}

// rowCount returns the total number of rows in the clipped domain,
// across the Y, Z and Array axes.
func (ls *launchState) rowCount() int {
	return (ls.yEnd - ls.yStart) * (ls.zEnd - ls.zStart) * (ls.aEnd - ls.aStart)
}

// nextSlice atomically claims the next slice of a domain with the given
// total extent, returning the claimed [start, end) range. ok is false
// once the domain is exhausted.
//
// The union of all claimed ranges is exactly [0, total): consecutive
// cursor values map to adjacent, non-overlapping ranges, and the final
// range is clamped to the domain end.
func (ls *launchState) nextSlice(total int) (start, end int, ok bool) {
	idx := int(ls.cursor.Add(1) - 1)
	start = idx * ls.sliceSize
	if start >= total {
		return 0, 0, false
	}
	end = start + ls.sliceSize
	if end > total {
		end = total
	}
	return start, end, true
}

// rowAt decomposes a linear row index into (y, z, array) coordinates.
// Rows are ordered Y-fastest, then Z, then Array.
func (ls *launchState) rowAt(idx int) (y, z, a int) {
	ny := ls.yEnd - ls.yStart
	nz := ls.zEnd - ls.zStart
	y = ls.yStart + idx%ny
	z = ls.zStart + (idx/ny)%nz
	a = ls.aStart + idx/(ny*nz)
	return y, z, a
}
