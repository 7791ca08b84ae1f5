package pixkern

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Buffer validation errors.
var (
	// ErrInvalidDimensions indicates width or height <= 0.
	ErrInvalidDimensions = errors.New("pixkern: invalid dimensions")

	// ErrInvalidFormat indicates an unknown element format.
	ErrInvalidFormat = errors.New("pixkern: invalid format")

	// ErrFormatMismatch indicates incompatible buffer formats.
	ErrFormatMismatch = errors.New("pixkern: format mismatch")

	// ErrShapeMismatch indicates incompatible buffer shapes.
	ErrShapeMismatch = errors.New("pixkern: shape mismatch")
)

// Buffer is a rectangular (optionally 3D or array-indexed) element buffer.
//
// Storage is row-major: all rows of one Z plane are contiguous, all planes
// of one array slice are contiguous. Dimensions of 0 on Z or Array are
// promoted to 1, meaning "present but single slice".
//
// The engine only ever references a Buffer during a launch; it never
// resizes or reallocates one. Kernels access rows through bounds-checked
// accessors, never through raw offset arithmetic.
//
// Thread safety: concurrent launches against the same Buffer from
// different callers are undefined; callers must serialize such use.
type Buffer struct {
	format Format
	dimX   int
	dimY   int
	dimZ   int
	dimA   int

	// rowStride is the byte distance between vertically adjacent elements.
	rowStride int

	data []byte
}

// NewBuffer creates a 2D buffer with the given format and dimensions.
func NewBuffer(format Format, width, height int) (*Buffer, error) {
	return NewBuffer3D(format, width, height, 1, 1)
}

// NewBuffer3D creates a buffer with explicit Z and Array extents.
// Z or Array extents of 0 are promoted to 1.
func NewBuffer3D(format Format, width, height, depth, arrayLen int) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d (both must be > 0)",
			ErrInvalidDimensions, width, height)
	}
	if depth < 0 || arrayLen < 0 {
		return nil, fmt.Errorf("%w: depth=%d, arrayLen=%d (must be >= 0)",
			ErrInvalidDimensions, depth, arrayLen)
	}
	if depth == 0 {
		depth = 1
	}
	if arrayLen == 0 {
		arrayLen = 1
	}

	elemSize := format.BytesPerElement()
	rowStride := width * elemSize

	return &Buffer{
		format:    format,
		dimX:      width,
		dimY:      height,
		dimZ:      depth,
		dimA:      arrayLen,
		rowStride: rowStride,
		data:      make([]byte, rowStride*height*depth*arrayLen),
	}, nil
}

// Format returns the element format.
func (b *Buffer) Format() Format { return b.format }

// DimX returns the width in elements.
func (b *Buffer) DimX() int { return b.dimX }

// DimY returns the height in elements.
func (b *Buffer) DimY() int { return b.dimY }

// DimZ returns the depth in planes (always >= 1).
func (b *Buffer) DimZ() int { return b.dimZ }

// DimArray returns the array length (always >= 1).
func (b *Buffer) DimArray() int { return b.dimA }

// ElemSize returns the element stride in bytes.
func (b *Buffer) ElemSize() int { return b.format.BytesPerElement() }

// RowStride returns the row stride in bytes.
func (b *Buffer) RowStride() int { return b.rowStride }

// Data returns the raw backing storage.
// Layout is [array][z][y][x], row-major.
func (b *Buffer) Data() []byte { return b.data }

// rowOffset returns the byte offset of row (y, z, a).
func (b *Buffer) rowOffset(y, z, a int) int {
	return ((a*b.dimZ+z)*b.dimY + y) * b.rowStride
}

// Row returns the bytes of row y in plane z of array slice a.
// The returned slice covers exactly DimX elements and aliases the
// buffer's storage.
//
// Row panics if any coordinate is out of range; passing an invalid
// coordinate is a programming error, not a recoverable condition.
func (b *Buffer) Row(y, z, a int) []byte {
	if y < 0 || y >= b.dimY || z < 0 || z >= b.dimZ || a < 0 || a >= b.dimA {
		panic(fmt.Sprintf("pixkern: row (%d,%d,%d) out of range %dx%dx%d",
			y, z, a, b.dimY, b.dimZ, b.dimA))
	}
	off := b.rowOffset(y, z, a)
	return b.data[off : off+b.rowStride : off+b.rowStride]
}

// Element returns the bytes of the element at (x, y) in the first plane.
// The returned slice has ElemSize bytes and aliases the buffer's storage.
//
// Element panics if x or y is out of range.
func (b *Buffer) Element(x, y int) []byte {
	if x < 0 || x >= b.dimX {
		panic(fmt.Sprintf("pixkern: element x=%d out of range %d", x, b.dimX))
	}
	row := b.Row(y, 0, 0)
	es := b.ElemSize()
	off := x * es
	return row[off : off+es : off+es]
}

// Fill sets every byte of the buffer to v.
func (b *Buffer) Fill(v byte) {
	for i := range b.data {
		b.data[i] = v
	}
}

// CopyFrom copies the contents of src into b.
// Both buffers must have identical formats and dimensions.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.format != b.format {
		return fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, src.format, b.format)
	}
	if src.dimX != b.dimX || src.dimY != b.dimY || src.dimZ != b.dimZ || src.dimA != b.dimA {
		return fmt.Errorf("%w: %dx%dx%dx%d vs %dx%dx%dx%d", ErrShapeMismatch,
			src.dimX, src.dimY, src.dimZ, src.dimA, b.dimX, b.dimY, b.dimZ, b.dimA)
	}
	copy(b.data, src.data)
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	nb := &Buffer{
		format:    b.format,
		dimX:      b.dimX,
		dimY:      b.dimY,
		dimZ:      b.dimZ,
		dimA:      b.dimA,
		rowStride: b.rowStride,
		data:      make([]byte, len(b.data)),
	}
	copy(nb.data, b.data)
	return nb
}

// ToImage converts the first plane of an RGBA buffer to an image.RGBA.
func (b *Buffer) ToImage() (*image.RGBA, error) {
	if b.format != FormatRGBA8 && b.format != FormatRGBAPremul {
		return nil, fmt.Errorf("%w: ToImage requires an RGBA format, have %s",
			ErrFormatMismatch, b.format)
	}
	img := image.NewRGBA(image.Rect(0, 0, b.dimX, b.dimY))
	for y := 0; y < b.dimY; y++ {
		copy(img.Pix[y*img.Stride:], b.Row(y, 0, 0))
	}
	return img, nil
}

// BufferFromImage creates an RGBA8 buffer from an arbitrary image.
// Pixel format conversion goes through x/image/draw, so any image.Image
// implementation works as a source.
func BufferFromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	b, err := NewBuffer(FormatRGBA8, width, height)
	if err != nil {
		return nil, err
	}

	dst := &image.RGBA{
		Pix:    b.data,
		Stride: b.rowStride,
		Rect:   image.Rect(0, 0, width, height),
	}
	xdraw.Copy(dst, image.Point{}, img, bounds, xdraw.Src, nil)
	return b, nil
}
