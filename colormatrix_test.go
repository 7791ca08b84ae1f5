package pixkern

import "testing"

// =============================================================================
// Matrix Classification Tests
// =============================================================================

func TestColorMatrix_Classify(t *testing.T) {
	cases := []struct {
		name string
		m    [16]float32
		want cmMode
	}{
		{"identity", IdentityMatrix(), cmDiagonal},
		{"brightness", BrightnessMatrix(1.5), cmDiagonal},
		{"grayscale", GrayscaleMatrix(), cm3x3},
		{"alpha mix", [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0.5, 0, 0, 1,
		}, cmFull},
	}
	for _, tc := range cases {
		if got := classifyMatrix(tc.m); got != tc.want {
			t.Errorf("%s: classifyMatrix() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

// =============================================================================
// Transform Tests
// =============================================================================

func TestColorMatrix_IdentityPreservesInput(t *testing.T) {
	eng := NewEngine(WithWorkers(2))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 16, 16)
	out, _ := NewBuffer(FormatRGBA8, 16, 16)
	fillPattern(in)

	if err := eng.Dispatch(in, out, NewColorMatrix(), nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	inData, outData := in.Data(), out.Data()
	for i := range inData {
		if outData[i] != inData[i] {
			t.Fatalf("byte %d: got %d, want %d", i, outData[i], inData[i])
		}
	}
}

func TestColorMatrix_Grayscale(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 1, 1)
	out, _ := NewBuffer(FormatRGBA8, 1, 1)
	el := in.Element(0, 0)
	el[0], el[1], el[2], el[3] = 200, 100, 50, 180

	cm := NewColorMatrix()
	cm.SetMatrix(GrayscaleMatrix())
	if err := eng.Dispatch(in, out, cm, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	// 0.299*200 + 0.587*100 + 0.114*50 = 124.2, rounds to 124.
	got := out.Element(0, 0)
	if got[0] != 124 || got[1] != 124 || got[2] != 124 {
		t.Errorf("rgb = [%d %d %d], want [124 124 124]", got[0], got[1], got[2])
	}
	if got[3] != 180 {
		t.Errorf("alpha = %d, want 180 (pass-through)", got[3])
	}
}

func TestColorMatrix_ClampsToByteRange(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 1, 1)
	out, _ := NewBuffer(FormatRGBA8, 1, 1)
	el := in.Element(0, 0)
	el[0], el[1], el[2], el[3] = 200, 200, 200, 255

	cm := NewColorMatrix()
	cm.SetMatrix([16]float32{
		2, 0, 0, 0, // overflows: 400 clamps to 255
		-1, 0, 0, 0, // underflows: -200 clamps to 0
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	if err := eng.Dispatch(in, out, cm, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	got := out.Element(0, 0)
	if got[0] != 255 {
		t.Errorf("overflow channel = %d, want 255", got[0])
	}
	if got[1] != 0 {
		t.Errorf("underflow channel = %d, want 0", got[1])
	}
}

func TestColorMatrix_Brightness(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 1, 1)
	out, _ := NewBuffer(FormatRGBA8, 1, 1)
	el := in.Element(0, 0)
	el[0], el[1], el[2], el[3] = 100, 60, 20, 200

	cm := NewColorMatrix()
	cm.SetMatrix(BrightnessMatrix(0.5))
	if err := eng.Dispatch(in, out, cm, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	got := out.Element(0, 0)
	if got[0] != 50 || got[1] != 30 || got[2] != 10 {
		t.Errorf("rgb = [%d %d %d], want [50 30 10]", got[0], got[1], got[2])
	}
	if got[3] != 200 {
		t.Errorf("alpha = %d, want 200 (pass-through)", got[3])
	}
}
