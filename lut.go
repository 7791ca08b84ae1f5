package pixkern

import "sync/atomic"

// LUT is a built-in kernel that maps every channel of every element
// through an independent 256-entry lookup table, with no interpolation:
//
//	out[c] = table[c][in[c]]
//
// A new LUT starts with identity tables on all four channels.
//
// Table updates are published as an immutable snapshot through an
// atomic pointer: a launch in flight always reads one complete set of
// tables. Tables must still not be changed concurrently with a launch
// that uses the kernel.
type LUT struct {
	state atomic.Pointer[lutState]
}

// lutState is one immutable snapshot of the four channel tables.
type lutState struct {
	tables [4][256]byte
}

// NewLUT creates a lookup-table kernel with identity tables.
func NewLUT() *LUT {
	st := &lutState{}
	for c := range st.tables {
		for i := range st.tables[c] {
			st.tables[c][i] = byte(i)
		}
	}
	l := &LUT{}
	l.state.Store(st)
	return l
}

// SetChannel replaces the table of one channel (0=R, 1=G, 2=B, 3=A).
// SetChannel panics if channel is outside [0, 3].
func (l *LUT) SetChannel(channel int, table [256]byte) {
	if channel < 0 || channel > 3 {
		panic("pixkern: LUT channel out of range")
	}
	next := *l.state.Load()
	next.tables[channel] = table
	l.state.Store(&next)
}

// SetRed replaces the red channel table.
func (l *LUT) SetRed(table [256]byte) { l.SetChannel(0, table) }

// SetGreen replaces the green channel table.
func (l *LUT) SetGreen(table [256]byte) { l.SetChannel(1, table) }

// SetBlue replaces the blue channel table.
func (l *LUT) SetBlue(table [256]byte) { l.SetChannel(2, table) }

// SetAlpha replaces the alpha channel table.
func (l *LUT) SetAlpha(table [256]byte) { l.SetChannel(3, table) }

// Process applies the tables to every element of the claimed slice.
// Elements narrower than four channels use the leading tables.
func (l *LUT) Process(rc *RowContext) {
	if rc.In == nil || rc.Out == nil {
		Logger().Warn("LUT: no bound input or output, skipping slice")
		return
	}
	st := l.state.Load()
	channels := minInt(minInt(rc.InStride, rc.OutStride), 4)

	for x := rc.XStart; x < rc.XEnd; x++ {
		in := rc.In[x*rc.InStride:]
		out := rc.Out[x*rc.OutStride:]
		for c := 0; c < channels; c++ {
			out[c] = st.tables[c][in[c]]
		}
	}
}
