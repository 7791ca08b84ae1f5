package pixkern

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// =============================================================================
// Buffer Creation Tests
// =============================================================================

func TestNewBuffer(t *testing.T) {
	b, err := NewBuffer(FormatRGBA8, 16, 8)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	if b.DimX() != 16 || b.DimY() != 8 {
		t.Errorf("dims = %dx%d, want 16x8", b.DimX(), b.DimY())
	}
	if b.DimZ() != 1 || b.DimArray() != 1 {
		t.Errorf("DimZ/DimArray = %d/%d, want 1/1", b.DimZ(), b.DimArray())
	}
	if b.ElemSize() != 4 {
		t.Errorf("ElemSize() = %d, want 4", b.ElemSize())
	}
	if b.RowStride() != 64 {
		t.Errorf("RowStride() = %d, want 64", b.RowStride())
	}
	if len(b.Data()) != 16*8*4 {
		t.Errorf("len(Data()) = %d, want %d", len(b.Data()), 16*8*4)
	}
}

func TestNewBuffer_InvalidDimensions(t *testing.T) {
	cases := []struct{ w, h int }{
		{0, 10}, {10, 0}, {-1, 10}, {10, -1},
	}
	for _, tc := range cases {
		if _, err := NewBuffer(FormatRGBA8, tc.w, tc.h); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewBuffer(%d, %d) error = %v, want ErrInvalidDimensions", tc.w, tc.h, err)
		}
	}
}

func TestNewBuffer_InvalidFormat(t *testing.T) {
	if _, err := NewBuffer(Format(99), 8, 8); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewBuffer(Format(99)) error = %v, want ErrInvalidFormat", err)
	}
}

func TestNewBuffer3D_PromotesZeroExtents(t *testing.T) {
	// Z/Array extents of 0 mean "present but single slice".
	b, err := NewBuffer3D(FormatGray8, 4, 4, 0, 0)
	if err != nil {
		t.Fatalf("NewBuffer3D() error = %v", err)
	}
	if b.DimZ() != 1 || b.DimArray() != 1 {
		t.Errorf("DimZ/DimArray = %d/%d, want 1/1", b.DimZ(), b.DimArray())
	}
}

// =============================================================================
// Accessor Tests
// =============================================================================

func TestBuffer_RowAliasesStorage(t *testing.T) {
	b, _ := NewBuffer3D(FormatGray8, 4, 3, 2, 2)

	row := b.Row(2, 1, 1)
	if len(row) != 4 {
		t.Fatalf("len(Row) = %d, want 4", len(row))
	}
	row[3] = 0xAB

	// Last row of the last plane of the last array slice is the tail
	// of the backing storage.
	data := b.Data()
	if data[len(data)-1] != 0xAB {
		t.Error("Row() does not alias backing storage")
	}
}

func TestBuffer_RowOutOfRangePanics(t *testing.T) {
	b, _ := NewBuffer(FormatGray8, 4, 4)

	defer func() {
		if recover() == nil {
			t.Error("Row(4, 0, 0) did not panic")
		}
	}()
	b.Row(4, 0, 0)
}

func TestBuffer_Element(t *testing.T) {
	b, _ := NewBuffer(FormatRGBA8, 4, 4)
	el := b.Element(2, 1)
	el[0], el[1], el[2], el[3] = 1, 2, 3, 4

	row := b.Row(1, 0, 0)
	for c := 0; c < 4; c++ {
		if row[8+c] != byte(c+1) {
			t.Errorf("row[%d] = %d, want %d", 8+c, row[8+c], c+1)
		}
	}
}

func TestBuffer_FillAndCopyFrom(t *testing.T) {
	a, _ := NewBuffer(FormatRGBA8, 8, 8)
	b, _ := NewBuffer(FormatRGBA8, 8, 8)
	a.Fill(7)

	if err := b.CopyFrom(a); err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	for i, v := range b.Data() {
		if v != 7 {
			t.Fatalf("Data()[%d] = %d, want 7", i, v)
		}
	}
}

func TestBuffer_CopyFromMismatch(t *testing.T) {
	a, _ := NewBuffer(FormatRGBA8, 8, 8)
	b, _ := NewBuffer(FormatRGBA8, 8, 9)
	c, _ := NewBuffer(FormatGray8, 8, 8)

	if err := b.CopyFrom(a); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("CopyFrom(shape) error = %v, want ErrShapeMismatch", err)
	}
	if err := c.CopyFrom(a); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("CopyFrom(format) error = %v, want ErrFormatMismatch", err)
	}
}

// =============================================================================
// Image Interop Tests
// =============================================================================

func TestBufferFromImage_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	b, err := BufferFromImage(img)
	if err != nil {
		t.Fatalf("BufferFromImage() error = %v", err)
	}

	out, err := b.ToImage()
	if err != nil {
		t.Fatalf("ToImage() error = %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got, want := out.RGBAAt(x, y), img.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestBuffer_ToImageRequiresRGBA(t *testing.T) {
	b, _ := NewBuffer(FormatGray8, 4, 4)
	if _, err := b.ToImage(); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("ToImage() error = %v, want ErrFormatMismatch", err)
	}
}

// =============================================================================
// Format Tests
// =============================================================================

func TestFormat_Info(t *testing.T) {
	cases := []struct {
		format   Format
		bytes    int
		channels int
	}{
		{FormatGray8, 1, 1},
		{FormatGray16, 2, 1},
		{FormatRGB8, 3, 3},
		{FormatRGBA8, 4, 4},
		{FormatRGBAPremul, 4, 4},
	}
	for _, tc := range cases {
		if got := tc.format.BytesPerElement(); got != tc.bytes {
			t.Errorf("%s.BytesPerElement() = %d, want %d", tc.format, got, tc.bytes)
		}
		if got := tc.format.Channels(); got != tc.channels {
			t.Errorf("%s.Channels() = %d, want %d", tc.format, got, tc.channels)
		}
	}

	if Format(99).Valid() {
		t.Error("Format(99).Valid() = true, want false")
	}
}
