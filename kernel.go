package pixkern

// RowContext carries everything a kernel needs to process one claimed
// slice of the iteration domain. The dispatcher fills one RowContext per
// worker and reuses it across that worker's slices, so kernels must not
// retain a RowContext (or its row slices) beyond the Process call.
//
// In and Out are bounds-checked views of the current input and output
// rows, each covering the full row (element 0 through DimX-1) so kernels
// that sample X neighbors can do their own edge clamping. XStart and XEnd
// are absolute coordinates into those rows.
//
// Input and Output reference the buffers driving the launch; kernels that
// sample Y neighbors (convolution, blur) read adjacent rows through them.
// Input (and In) are nil for generator kernels dispatched without an
// input buffer.
type RowContext struct {
	// In is the input row at (Y, Z, Array), or nil if no input is bound.
	In []byte

	// Out is the output row at (Y, Z, Array).
	Out []byte

	// InStride and OutStride are the element strides in bytes.
	InStride  int
	OutStride int

	// XStart and XEnd delimit the claimed element range [XStart, XEnd).
	XStart int
	XEnd   int

	// Y, Z and Array are the coordinates of the current row.
	Y     int
	Z     int
	Array int

	// Input and Output are the buffers bound to the launch.
	// Input is nil for generator kernels.
	Input  *Buffer
	Output *Buffer
}

// Kernel is a per-element (or per-row-slice) computation invoked by the
// dispatcher. Process is called once per claimed slice, possibly from
// several goroutines at once, so implementations must be safe for
// concurrent calls and must not write outside [XStart, XEnd) of their
// own output row.
//
// Kernels whose coefficient state can change between launches must
// publish that state atomically; the built-in kernels snapshot their
// coefficients through an atomic pointer so a worker can never observe a
// half-applied update.
type Kernel interface {
	Process(rc *RowContext)
}

// KernelFunc adapts a plain function to the Kernel interface.
type KernelFunc func(rc *RowContext)

// Process calls f(rc).
func (f KernelFunc) Process(rc *RowContext) { f(rc) }

// InputBinder is implemented by kernels that read a source buffer beyond
// the current row (convolution, blur, YUV conversion). Binding an input
// replaces any source the kernel picks up from the dispatch input buffer.
//
// Graphs use BindInput to deliver field-edge values: when a producer
// feeds a consumer through a field edge, the produced buffer is bound
// here rather than passed as the consumer's primary input.
type InputBinder interface {
	BindInput(b *Buffer)
}
