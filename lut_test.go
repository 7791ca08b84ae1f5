package pixkern

import "testing"

// =============================================================================
// Lookup Table Tests
// =============================================================================

func TestLUT_Identity(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 8, 8)
	out, _ := NewBuffer(FormatRGBA8, 8, 8)
	fillPattern(in)

	if err := eng.Dispatch(in, out, NewLUT(), nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	inData, outData := in.Data(), out.Data()
	for i := range inData {
		if outData[i] != inData[i] {
			t.Fatalf("byte %d: got %d, want %d (identity)", i, outData[i], inData[i])
		}
	}
}

func TestLUT_SingleChannelRemap(t *testing.T) {
	eng := NewEngine(WithWorkers(2))
	defer eng.Close()

	in, _ := NewBuffer(FormatGray8, 4, 4)
	out, _ := NewBuffer(FormatGray8, 4, 4)
	in.Fill(10)

	lut := NewLUT()
	var table [256]byte
	for i := range table {
		table[i] = byte(i)
	}
	table[10] = 200
	lut.SetChannel(0, table)

	if err := eng.Dispatch(in, out, lut, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	for i, v := range out.Data() {
		if v != 200 {
			t.Fatalf("byte %d = %d, want 200", i, v)
		}
	}
}

func TestLUT_IndependentChannels(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 2, 1)
	out, _ := NewBuffer(FormatRGBA8, 2, 1)
	in.Fill(100)

	lut := NewLUT()
	var invert [256]byte
	for i := range invert {
		invert[i] = byte(255 - i)
	}
	lut.SetGreen(invert)

	if err := eng.Dispatch(in, out, lut, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	for x := 0; x < 2; x++ {
		el := out.Element(x, 0)
		if el[0] != 100 || el[1] != 155 || el[2] != 100 || el[3] != 100 {
			t.Errorf("element %d = %v, want [100 155 100 100]", x, el[:4])
		}
	}
}

func TestLUT_ChannelOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("SetChannel(4, ...) did not panic")
		}
	}()
	NewLUT().SetChannel(4, [256]byte{})
}
