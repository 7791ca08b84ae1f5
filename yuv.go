package pixkern

import (
	"fmt"
	"image"
	"sync/atomic"
)

// YUVSource describes a planar YUV 4:2:0 frame with interleaved VU
// chroma (NV21 layout): a full-resolution luma plane followed by one
// V,U byte pair per 2x2 luma block.
type YUVSource struct {
	// Y is the luma plane, YStride bytes per row.
	Y []byte

	// UV is the interleaved chroma plane (V first), UVStride bytes
	// per chroma row. One chroma row covers two luma rows.
	UV []byte

	// Width and Height are the luma dimensions. Width must be even.
	Width  int
	Height int

	// YStride and UVStride are the row strides in bytes.
	YStride  int
	UVStride int
}

// YUVSourceFromImage builds a YUVSource from an image.YCbCr.
// Only 4:2:0 subsampling is supported.
func YUVSourceFromImage(img *image.YCbCr) (*YUVSource, error) {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return nil, fmt.Errorf("%w: need 4:2:0 YCbCr, have %s",
			ErrFormatMismatch, img.SubsampleRatio)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	s := &YUVSource{
		Y:        img.Y,
		Width:    width,
		Height:   height,
		YStride:  img.YStride,
		UVStride: 2 * img.CStride,
		UV:       make([]byte, 2*len(img.Cb)),
	}
	// Interleave the separate Cb/Cr planes as V,U pairs.
	for i := range img.Cb {
		s.UV[2*i] = img.Cr[i]
		s.UV[2*i+1] = img.Cb[i]
	}
	return s, nil
}

// YUVToRGB is a built-in kernel converting a bound YUV 4:2:0 source to
// RGBA output using the fixed BT.601 integer coefficient matrix. Each
// 2x1 luma pair shares one chroma sample; every output channel is
// saturated to [0, 255].
//
// The kernel requires a source set with SetSource; dispatching it
// without one logs and skips rather than failing.
type YUVToRGB struct {
	src atomic.Pointer[YUVSource]
}

// NewYUVToRGB creates a YUV conversion kernel with no source bound.
func NewYUVToRGB() *YUVToRGB {
	return &YUVToRGB{}
}

// SetSource binds the YUV frame to convert.
func (k *YUVToRGB) SetSource(s *YUVSource) {
	k.src.Store(s)
}

// Process converts every element of the claimed slice to RGBA.
func (k *YUVToRGB) Process(rc *RowContext) {
	s := k.src.Load()
	if s == nil || rc.Out == nil {
		Logger().Warn("YUVToRGB: no bound source, skipping slice")
		return
	}
	if rc.Y >= s.Height {
		return
	}

	yRow := s.Y[rc.Y*s.YStride:]
	uvRow := s.UV[(rc.Y/2)*s.UVStride:]
	xEnd := minInt(rc.XEnd, s.Width)

	for x := rc.XStart; x < xEnd; x++ {
		// The chroma sample is shared by the even/odd luma pair.
		uvIdx := x &^ 1
		c := int32(yRow[x]) - 16
		v := int32(uvRow[uvIdx]) - 128
		u := int32(uvRow[uvIdx+1]) - 128

		// BT.601 integer coefficients.
		y298 := 298 * c
		out := rc.Out[x*rc.OutStride:]
		out[0] = clampU8i((y298 + 409*v + 128) >> 8)
		out[1] = clampU8i((y298 - 100*u - 208*v + 128) >> 8)
		out[2] = clampU8i((y298 + 516*u + 128) >> 8)
		if rc.OutStride >= 4 {
			out[3] = 255
		}
	}
}
