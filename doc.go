// Package pixkern provides a data-parallel kernel execution engine for Go.
//
// # Overview
//
// pixkern dispatches a per-element computation (a "kernel") over a 1D, 2D,
// 3D, or array-indexed buffer domain using a fixed pool of workers. It
// ships a catalog of built-in kernels (Gaussian blur, 3x3/5x5 convolution,
// color matrix, per-channel lookup table, YUV to RGB conversion, alpha
// blending) and can combine several dependent kernels into a single graph
// that is executed either sequentially or as one fused pass.
//
// # Quick Start
//
//	import "github.com/pixkern/pixkern"
//
//	// Create an engine (one worker per spare CPU by default)
//	eng := pixkern.NewEngine()
//	defer eng.Close()
//
//	// Allocate buffers
//	src, _ := pixkern.NewBuffer(pixkern.FormatRGBA8, 512, 512)
//	dst, _ := pixkern.NewBuffer(pixkern.FormatRGBA8, 512, 512)
//
//	// Run a built-in kernel
//	blur := pixkern.NewGaussianBlur()
//	blur.SetRadius(5)
//	eng.Dispatch(src, dst, blur, nil)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Buffer, Kernel, RowContext, Graph
//   - Built-in kernels: LUT, ColorMatrix, Convolve3x3/5x5, GaussianBlur,
//     YUVToRGB, Blend
//   - Internal: parallel (worker pool)
//
// # Execution Model
//
// A Dispatch clips the iteration domain, splits it into contiguous slices,
// and lets every worker atomically claim slices until the domain is
// exhausted. The calling goroutine always participates as worker 0. No
// ordering is guaranteed between elements of one launch; each element is
// processed exactly once. Kernels must not have cross-element side effects.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right, Y increases down
//   - Z and Array extents model 3D and allocation-array domains; a value
//     of 0 is treated as a single implicit slice
package pixkern

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
