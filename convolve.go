package pixkern

import "sync/atomic"

// Convolve3x3 is a built-in kernel computing a 3x3 weighted sum over
// each element's neighborhood:
//
//	out = clamp(sum w[i] * in[neighbor_i], 0, 255)
//
// Neighbor coordinates are clamped to the buffer edges independently in
// X and Y (edge replication). Until weights are set explicitly, every
// weight is 1/9 (box blur).
//
// Because the kernel samples rows above and below the current one, it
// reads its source through a bound buffer: either one bound with
// BindInput or, failing that, the dispatch input buffer.
type Convolve3x3 struct {
	state atomic.Pointer[convState]
	src   atomic.Pointer[Buffer]
}

// Convolve5x5 is the 5x5 variant of Convolve3x3. Default weights are
// 1/25 each.
type Convolve5x5 struct {
	state atomic.Pointer[convState]
	src   atomic.Pointer[Buffer]
}

// convState is one immutable weight snapshot. half is the kernel's
// half-width (1 for 3x3, 2 for 5x5).
type convState struct {
	weights []float32
	half    int
}

// NewConvolve3x3 creates a 3x3 convolution kernel with box weights.
func NewConvolve3x3() *Convolve3x3 {
	c := &Convolve3x3{}
	var w [9]float32
	for i := range w {
		w[i] = 1.0 / 9.0
	}
	c.SetWeights(w)
	return c
}

// SetWeights replaces the nine weights, row-major with the center at
// index 4.
func (c *Convolve3x3) SetWeights(w [9]float32) {
	c.state.Store(&convState{weights: w[:], half: 1})
}

// BindInput binds the source buffer sampled by the convolution.
func (c *Convolve3x3) BindInput(b *Buffer) {
	c.src.Store(b)
}

// Process convolves every element of the claimed slice.
func (c *Convolve3x3) Process(rc *RowContext) {
	convolveRow(rc, boundSource(&c.src, rc), c.state.Load())
}

// NewConvolve5x5 creates a 5x5 convolution kernel with box weights.
func NewConvolve5x5() *Convolve5x5 {
	c := &Convolve5x5{}
	var w [25]float32
	for i := range w {
		w[i] = 1.0 / 25.0
	}
	c.SetWeights(w)
	return c
}

// SetWeights replaces the 25 weights, row-major with the center at
// index 12.
func (c *Convolve5x5) SetWeights(w [25]float32) {
	c.state.Store(&convState{weights: w[:], half: 2})
}

// BindInput binds the source buffer sampled by the convolution.
func (c *Convolve5x5) BindInput(b *Buffer) {
	c.src.Store(b)
}

// Process convolves every element of the claimed slice.
func (c *Convolve5x5) Process(rc *RowContext) {
	convolveRow(rc, boundSource(&c.src, rc), c.state.Load())
}

// boundSource resolves a neighbor-sampling kernel's source: an
// explicitly bound buffer wins over the dispatch input.
func boundSource(src *atomic.Pointer[Buffer], rc *RowContext) *Buffer {
	if b := src.Load(); b != nil {
		return b
	}
	return rc.Input
}

// convolveRow computes the weighted neighborhood sum for one row.
// Out-of-range neighbor coordinates replicate the edge element.
func convolveRow(rc *RowContext, src *Buffer, st *convState) {
	if src == nil || rc.Out == nil {
		Logger().Warn("convolve: no bound source, skipping slice")
		return
	}

	half := st.half
	size := 2*half + 1
	es := src.ElemSize()
	channels := minInt(minInt(es, rc.OutStride), 4)
	z := clampInt(rc.Z, 0, src.dimZ-1)
	a := clampInt(rc.Array, 0, src.dimA-1)

	// Resolve the neighborhood's rows once per output row.
	rows := make([][]byte, size)
	for ky := 0; ky < size; ky++ {
		yy := clampInt(rc.Y+ky-half, 0, src.dimY-1)
		rows[ky] = src.Row(yy, z, a)
	}

	var sum [4]float32
	for x := rc.XStart; x < rc.XEnd; x++ {
		sum = [4]float32{}
		for ky := 0; ky < size; ky++ {
			row := rows[ky]
			for kx := 0; kx < size; kx++ {
				xx := clampInt(x+kx-half, 0, src.dimX-1)
				w := st.weights[ky*size+kx]
				px := row[xx*es:]
				for c := 0; c < channels; c++ {
					sum[c] += w * float32(px[c])
				}
			}
		}
		out := rc.Out[x*rc.OutStride:]
		for c := 0; c < channels; c++ {
			out[c] = clampU8f(sum[c])
		}
	}
}
