package pixkern

import "sync/atomic"

// cmMode selects the specialized code path for a color matrix. The
// selection happens once when the matrix is set, not per element.
type cmMode uint8

const (
	// cmFull applies the complete 4x4 matrix.
	cmFull cmMode = iota

	// cm3x3 applies a 3x3 color rotation with alpha pass-through.
	cm3x3

	// cmDiagonal applies an independent per-channel scale.
	cmDiagonal
)

// colorMatrixState is one immutable coefficient snapshot.
type colorMatrixState struct {
	// m is the 4x4 matrix in row-major order: m[row*4+col].
	m    [16]float32
	mode cmMode
}

// ColorMatrix is a built-in kernel that multiplies every element,
// treated as a 4-vector, by a 4x4 matrix and clamps the result to
// [0, 255]:
//
//	out = clamp(M * in, 0, 255)
//
// When the matrix structure reduces to a 3x3 rotation with alpha
// pass-through, or further to a pure diagonal, a specialized faster
// path is selected at SetMatrix time.
//
// A new ColorMatrix holds the identity matrix.
type ColorMatrix struct {
	state atomic.Pointer[colorMatrixState]
}

// NewColorMatrix creates a color matrix kernel with the identity matrix.
func NewColorMatrix() *ColorMatrix {
	cm := &ColorMatrix{}
	cm.SetMatrix(IdentityMatrix())
	return cm
}

// SetMatrix replaces the matrix (row-major 4x4) and selects the
// specialized execution path for its structure.
func (cm *ColorMatrix) SetMatrix(m [16]float32) {
	st := &colorMatrixState{m: m, mode: classifyMatrix(m)}
	cm.state.Store(st)
}

// Matrix returns the current matrix.
func (cm *ColorMatrix) Matrix() [16]float32 {
	return cm.state.Load().m
}

// classifyMatrix picks the cheapest path that preserves the matrix's
// semantics.
func classifyMatrix(m [16]float32) cmMode {
	diagonal := true
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if r != c && m[r*4+c] != 0 {
				diagonal = false
			}
		}
	}
	if diagonal {
		return cmDiagonal
	}

	// Alpha row and column match the identity pattern: the alpha
	// output is the alpha input, untouched by color channels.
	alphaPass := m[3] == 0 && m[7] == 0 && m[11] == 0 &&
		m[12] == 0 && m[13] == 0 && m[14] == 0 && m[15] == 1
	if alphaPass {
		return cm3x3
	}
	return cmFull
}

// IdentityMatrix returns the 4x4 identity matrix.
func IdentityMatrix() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// GrayscaleMatrix returns a matrix that replaces R, G and B with the
// BT.601 luma of the input and passes alpha through.
func GrayscaleMatrix() [16]float32 {
	const (
		lumR = 0.299
		lumG = 0.587
		lumB = 0.114
	)
	return [16]float32{
		lumR, lumG, lumB, 0,
		lumR, lumG, lumB, 0,
		lumR, lumG, lumB, 0,
		0, 0, 0, 1,
	}
}

// BrightnessMatrix returns a matrix that scales R, G and B by factor
// and passes alpha through.
// factor: 0.0 = black, 1.0 = unchanged, 2.0 = twice as bright.
func BrightnessMatrix(factor float32) [16]float32 {
	return [16]float32{
		factor, 0, 0, 0,
		0, factor, 0, 0,
		0, 0, factor, 0,
		0, 0, 0, 1,
	}
}

// Process applies the matrix to every element of the claimed slice.
// Input channels beyond the element width read as 0; output channels
// beyond the element width are dropped.
func (cm *ColorMatrix) Process(rc *RowContext) {
	if rc.In == nil || rc.Out == nil {
		Logger().Warn("ColorMatrix: no bound input or output, skipping slice")
		return
	}
	st := cm.state.Load()
	m := &st.m
	inCh := minInt(rc.InStride, 4)
	outCh := minInt(rc.OutStride, 4)

	var v [4]float32
	for x := rc.XStart; x < rc.XEnd; x++ {
		in := rc.In[x*rc.InStride:]
		out := rc.Out[x*rc.OutStride:]

		v = [4]float32{}
		for c := 0; c < inCh; c++ {
			v[c] = float32(in[c])
		}

		switch st.mode {
		case cmDiagonal:
			for c := 0; c < outCh; c++ {
				out[c] = clampU8f(m[c*4+c] * v[c])
			}

		case cm3x3:
			for c := 0; c < minInt(outCh, 3); c++ {
				out[c] = clampU8f(m[c*4+0]*v[0] + m[c*4+1]*v[1] + m[c*4+2]*v[2])
			}
			if outCh == 4 {
				out[3] = clampU8f(v[3])
			}

		default:
			for c := 0; c < outCh; c++ {
				out[c] = clampU8f(m[c*4+0]*v[0] + m[c*4+1]*v[1] +
					m[c*4+2]*v[2] + m[c*4+3]*v[3])
			}
		}
	}
}
