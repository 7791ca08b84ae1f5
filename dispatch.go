package pixkern

import (
	"errors"
	"log/slog"
)

// Dispatch errors.
var (
	// ErrNilKernel indicates a dispatch with no kernel.
	ErrNilKernel = errors.New("pixkern: nil kernel")

	// ErrNoDomain indicates a dispatch with neither an input nor an
	// output buffer to derive an iteration domain from.
	ErrNoDomain = errors.New("pixkern: no iteration domain")
)

// rowBudgetBytes is the per-slice byte budget used to derive the slice
// size. Dividing it by the row (or element) stride and the worker count
// yields slices small enough to balance load without excessive cursor
// contention.
const rowBudgetBytes = 256 << 10

// Clip restricts a dispatch to a sub-region of the buffer domain.
// An end value of 0 on any axis means "use the full extent of that
// axis". Ranges are half-open: [Start, End).
type Clip struct {
	XStart, XEnd         int
	YStart, YEnd         int
	ZStart, ZEnd         int
	ArrayStart, ArrayEnd int
}

// clipAxis resolves one clip axis against a dimension: an unset end
// (0) selects the full extent, and the range is intersected with
// [0, dim).
func clipAxis(start, end, dim int) (int, int) {
	if end == 0 || end > dim {
		end = dim
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

// Dispatch runs kernel k over the clipped domain of the given buffers.
//
// The iteration domain is taken from out (or from in when out is nil).
// in may be nil for generator kernels and out may be nil for consumer
// kernels; a dispatch with neither returns ErrNoDomain. A clip region
// that is empty after clamping is a silent no-op, not an error.
//
// Dispatch blocks until the launch completes. Calling Dispatch from
// inside a kernel body is allowed: the nested launch runs serially on
// the calling goroutine instead of fanning out to the pool again.
func (e *Engine) Dispatch(in, out *Buffer, k Kernel, clip *Clip) error {
	if k == nil {
		return ErrNilKernel
	}
	if in == nil && out == nil {
		return ErrNoDomain
	}

	domain := out
	if domain == nil {
		domain = in
	}

	ls := &launchState{}
	if clip == nil {
		clip = &Clip{}
	}
	ls.xStart, ls.xEnd = clipAxis(clip.XStart, clip.XEnd, domain.dimX)
	ls.yStart, ls.yEnd = clipAxis(clip.YStart, clip.YEnd, domain.dimY)
	ls.zStart, ls.zEnd = clipAxis(clip.ZStart, clip.ZEnd, domain.dimZ)
	ls.aStart, ls.aEnd = clipAxis(clip.ArrayStart, clip.ArrayEnd, domain.dimA)

	if ls.xStart >= ls.xEnd || ls.yStart >= ls.yEnd {
		e.logger().Warn("dispatch skipped: empty clip region",
			slog.Int("xStart", ls.xStart), slog.Int("xEnd", ls.xEnd),
			slog.Int("yStart", ls.yStart), slog.Int("yEnd", ls.yEnd))
		return nil
	}

	// A clipped-out Z or Array axis still performs one pass: the axes
	// follow the implicit-singleton convention.
	if ls.zEnd <= ls.zStart {
		ls.zEnd = ls.zStart + 1
	}
	if ls.aEnd <= ls.aStart {
		ls.aEnd = ls.aStart + 1
	}

	workers := e.pool.Workers()
	rows := ls.rowCount()

	if rows > 1 {
		// 2D row slicing: each claimed slice is a contiguous run of
		// rows; a row is processed by one kernel call over the full
		// clipped X range.
		stride := maxStride(in, out, (*Buffer).RowStride)
		ls.sliceSize = rowBudgetBytes / stride / (workers + 1)
		if ls.sliceSize < 1 {
			ls.sliceSize = 1
		}
		e.logger().Debug("dispatch: 2D row slicing",
			slog.Int("rows", rows),
			slog.Int("sliceRows", ls.sliceSize),
			slog.Int("workers", workers))
		e.run(ls, in, out, k, e.runRows)
		return nil
	}

	// 1D column slicing along X.
	stride := maxStride(in, out, (*Buffer).ElemSize)
	ls.sliceSize = rowBudgetBytes / stride / (workers + 1)
	if ls.sliceSize < 1 {
		ls.sliceSize = 1
	}

	// Fast path: a domain that one slice covers runs inline on the
	// calling goroutine with no worker wake-up.
	if ls.xEnd-ls.xStart <= ls.sliceSize {
		rc := RowContext{}
		e.processRow(&rc, in, out, k, ls.xStart, ls.xEnd, ls.yStart, ls.zStart, ls.aStart)
		return nil
	}

	e.logger().Debug("dispatch: 1D column slicing",
		slog.Int("elements", ls.xEnd-ls.xStart),
		slog.Int("sliceElements", ls.sliceSize),
		slog.Int("workers", workers))
	e.run(ls, in, out, k, e.runColumns)
	return nil
}

// run executes one launch through the worker pool, or serially on the
// calling goroutine when this dispatch is nested inside a running
// launch. The reentrancy guard prevents recursive parallel fan-out and
// a deadlock on the pool's completion signal.
func (e *Engine) run(ls *launchState, in, out *Buffer, k Kernel,
	body func(ls *launchState, in, out *Buffer, k Kernel)) {
	if !e.inLaunch.CompareAndSwap(false, true) {
		body(ls, in, out, k)
		return
	}
	defer e.inLaunch.Store(false)

	e.pool.Launch(func(worker int) {
		body(ls, in, out, k)
	})
}

// runRows is the per-worker loop of the 2D strategy: claim a run of
// rows, process each row with one kernel call over the clipped X range.
func (e *Engine) runRows(ls *launchState, in, out *Buffer, k Kernel) {
	rows := ls.rowCount()
	rc := RowContext{}
	for {
		start, end, ok := ls.nextSlice(rows)
		if !ok {
			return
		}
		for idx := start; idx < end; idx++ {
			y, z, a := ls.rowAt(idx)
			e.processRow(&rc, in, out, k, ls.xStart, ls.xEnd, y, z, a)
		}
	}
}

// runColumns is the per-worker loop of the 1D strategy: claim a run of
// elements along X within the single row of the domain.
func (e *Engine) runColumns(ls *launchState, in, out *Buffer, k Kernel) {
	total := ls.xEnd - ls.xStart
	rc := RowContext{}
	for {
		start, end, ok := ls.nextSlice(total)
		if !ok {
			return
		}
		e.processRow(&rc, in, out, k,
			ls.xStart+start, ls.xStart+end, ls.yStart, ls.zStart, ls.aStart)
	}
}

// processRow fills rc for row (y, z, a) and invokes the kernel once
// over [xStart, xEnd). Rows are resolved through the buffers'
// bounds-checked accessors; a side whose buffer does not cover the
// coordinates gets a nil row.
func (e *Engine) processRow(rc *RowContext, in, out *Buffer, k Kernel,
	xStart, xEnd, y, z, a int) {
	rc.In = nil
	rc.InStride = 0
	if in != nil {
		rc.InStride = in.ElemSize()
		if y < in.dimY && z < in.dimZ && a < in.dimA {
			rc.In = in.Row(y, z, a)
		}
	}
	rc.Out = nil
	rc.OutStride = 0
	if out != nil {
		rc.OutStride = out.ElemSize()
		if y < out.dimY && z < out.dimZ && a < out.dimA {
			rc.Out = out.Row(y, z, a)
		}
	}
	rc.XStart = xStart
	rc.XEnd = xEnd
	rc.Y = y
	rc.Z = z
	rc.Array = a
	rc.Input = in
	rc.Output = out
	k.Process(rc)
}

// maxStride returns the larger stride of the two buffers, ignoring nil
// sides. At least one buffer is non-nil.
func maxStride(in, out *Buffer, stride func(*Buffer) int) int {
	s := 0
	if out != nil {
		s = stride(out)
	}
	if in != nil && stride(in) > s {
		s = stride(in)
	}
	if s < 1 {
		s = 1
	}
	return s
}
