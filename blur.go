package pixkern

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
)

// maxBlurRadius is the largest supported blur radius.
const maxBlurRadius = 25

// GaussianBlur is a built-in kernel applying a radius-parameterized
// Gaussian blur as a separable two-pass filter: a vertical pass into a
// scratch row buffer, then a horizontal pass into the output. Each pass
// clamps out-of-range coordinates to the buffer edge independently.
//
// Weights are computed once per radius change with sigma
// 0.4*radius + 0.6 and normalized to sum to 1. A radius of 0 reduces
// the window to a single sample and reproduces the input unchanged.
//
// Like the convolution kernels, blur samples rows beyond the current
// one and therefore reads its source through a bound buffer: one bound
// with BindInput or, failing that, the dispatch input buffer. A blur
// dispatched with no source at all logs and skips rather than failing.
type GaussianBlur struct {
	state atomic.Pointer[blurState]
	src   atomic.Pointer[Buffer]
}

// blurState is one immutable coefficient snapshot.
type blurState struct {
	// half is the window half-width: ceil(radius).
	half int

	// weights holds 2*half+1 normalized Gaussian weights.
	weights []float32
}

// NewGaussianBlur creates a blur kernel with the default radius of 5.
func NewGaussianBlur() *GaussianBlur {
	g := &GaussianBlur{}
	g.SetRadius(5)
	return g
}

// SetRadius recomputes the weight table for the given radius.
// SetRadius panics if radius is outside [0, 25]; an out-of-range radius
// is a programming error.
func (g *GaussianBlur) SetRadius(radius float32) {
	if radius < 0 || radius > maxBlurRadius {
		panic(fmt.Sprintf("pixkern: blur radius %v out of range [0, %d]",
			radius, maxBlurRadius))
	}

	half := int(math32.Ceil(radius))
	weights := make([]float32, 2*half+1)

	if half == 0 {
		weights[0] = 1
	} else {
		sigma := 0.4*radius + 0.6
		norm := 1 / (math32.Sqrt(2*math32.Pi) * sigma)
		twoSigmaSq := 2 * sigma * sigma

		sum := float32(0)
		for i := range weights {
			r := float32(i - half)
			w := norm * math32.Exp(-(r*r)/twoSigmaSq)
			weights[i] = w
			sum += w
		}
		invSum := 1 / sum
		for i := range weights {
			weights[i] *= invSum
		}
	}

	g.state.Store(&blurState{half: half, weights: weights})
}

// BindInput binds the source buffer sampled by the blur.
func (g *GaussianBlur) BindInput(b *Buffer) {
	g.src.Store(b)
}

// Process blurs every element of the claimed slice.
func (g *GaussianBlur) Process(rc *RowContext) {
	src := boundSource(&g.src, rc)
	if src == nil || rc.Out == nil {
		Logger().Warn("blur: no bound source, skipping slice")
		return
	}

	st := g.state.Load()
	half := st.half
	es := src.ElemSize()
	channels := minInt(minInt(es, rc.OutStride), 4)
	z := clampInt(rc.Z, 0, src.dimZ-1)
	a := clampInt(rc.Array, 0, src.dimA-1)

	// Scratch covers the X range the horizontal pass will sample,
	// clamped to the buffer: [xLo, xHi).
	xLo := clampInt(rc.XStart-half, 0, src.dimX)
	xHi := clampInt(rc.XEnd+half, 0, src.dimX)
	scratch := getScratch((xHi - xLo) * channels)
	defer putScratch(scratch)

	// Vertical pass: blur columns of the neighborhood into the
	// scratch row, edge-clamped in Y.
	for ky := -half; ky <= half; ky++ {
		yy := clampInt(rc.Y+ky, 0, src.dimY-1)
		row := src.Row(yy, z, a)
		w := st.weights[ky+half]
		for x := xLo; x < xHi; x++ {
			px := row[x*es:]
			sp := scratch[(x-xLo)*channels:]
			for c := 0; c < channels; c++ {
				sp[c] += w * float32(px[c])
			}
		}
	}

	// Horizontal pass: blur the scratch row into the output,
	// edge-clamped in X.
	for x := rc.XStart; x < rc.XEnd; x++ {
		var sum [4]float32
		for kx := -half; kx <= half; kx++ {
			xx := clampInt(x+kx, 0, src.dimX-1)
			sp := scratch[(xx-xLo)*channels:]
			w := st.weights[kx+half]
			for c := 0; c < channels; c++ {
				sum[c] += w * sp[c]
			}
		}
		out := rc.Out[x*rc.OutStride:]
		for c := 0; c < channels; c++ {
			out[c] = clampU8f(sum[c])
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// scratchPool recycles per-row scratch buffers across blur slices.
var scratchPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 4096*4)}
	},
}

// getScratch returns a zeroed scratch buffer with at least size elements.
func getScratch(size int) []float32 {
	wrapper := scratchPool.Get().(*floatBuffer)
	if len(wrapper.data) < size {
		scratchPool.Put(wrapper)
		return make([]float32, size)
	}
	s := wrapper.data[:size]
	clear(s)
	return s
}

// putScratch returns a scratch buffer to the pool.
func putScratch(buf []float32) {
	scratchPool.Put(&floatBuffer{data: buf[:cap(buf)]})
}
