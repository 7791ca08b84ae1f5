package pixkern

import (
	"errors"
	"testing"
)

// =============================================================================
// Build Tests
// =============================================================================

func TestGraph_CycleDetection(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewColorMatrix())
	b := gb.AddKernel(NewLUT())
	shape := Shape{Format: FormatRGBA8, Width: 4, Height: 4}
	gb.Connect(a, b, shape)
	gb.Connect(b, a, shape)

	if _, err := gb.Build(); !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("Build() error = %v, want ErrCyclicGraph", err)
	}
}

func TestGraph_SelfLoopIsACycle(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewLUT())
	gb.Connect(a, a, Shape{Format: FormatRGBA8, Width: 4, Height: 4})

	if _, err := gb.Build(); !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("Build() error = %v, want ErrCyclicGraph", err)
	}
}

func TestGraph_UnknownIDPanics(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewLUT())

	defer func() {
		if recover() == nil {
			t.Error("Connect with unknown id did not panic")
		}
	}()
	gb.Connect(a, KernelID(7), Shape{Format: FormatRGBA8, Width: 4, Height: 4})
}

func TestGraph_FieldEdgeRequiresInputBinder(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewColorMatrix())
	b := gb.AddKernel(NewLUT()) // LUT takes no named bindings
	gb.ConnectField(a, b, Shape{Format: FormatRGBA8, Width: 4, Height: 4})

	if _, err := gb.Build(); err == nil {
		t.Error("Build() error = nil, want field-binding error")
	}
}

// =============================================================================
// Execute Tests
// =============================================================================

func TestGraph_UnboundNode(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	gb := NewGraphBuilder(eng)
	gb.AddKernel(NewLUT())
	g, err := gb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if err := g.Execute(); !errors.Is(err, ErrUnboundNode) {
		t.Errorf("Execute() error = %v, want ErrUnboundNode", err)
	}
}

func TestGraph_FusedMatchesSequentialDispatch(t *testing.T) {
	eng := NewEngine(WithWorkers(3))
	defer eng.Close()

	const w, h = 64, 48
	in, _ := NewBuffer(FormatRGBA8, w, h)
	fillPattern(in)

	cm := NewColorMatrix()
	cm.SetMatrix(GrayscaleMatrix())
	var invert [256]byte
	for i := range invert {
		invert[i] = byte(255 - i)
	}
	lut := NewLUT()
	lut.SetRed(invert)
	lut.SetGreen(invert)
	lut.SetBlue(invert)

	// Reference: two plain dispatches through an explicit intermediate.
	mid, _ := NewBuffer(FormatRGBA8, w, h)
	want, _ := NewBuffer(FormatRGBA8, w, h)
	if err := eng.Dispatch(in, mid, cm, nil); err != nil {
		t.Fatalf("reference Dispatch() error = %v", err)
	}
	if err := eng.Dispatch(mid, want, lut, nil); err != nil {
		t.Fatalf("reference Dispatch() error = %v", err)
	}

	// Graph: the same chain fused into one launch.
	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(cm)
	b := gb.AddKernel(lut)
	gb.Connect(a, b, Shape{Format: FormatRGBA8, Width: w, Height: h})
	g, err := gb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, _ := NewBuffer(FormatRGBA8, w, h)
	g.SetInput(a, in)
	g.SetOutput(b, got)
	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantData, gotData := want.Data(), got.Data()
	for i := range wantData {
		if gotData[i] != wantData[i] {
			t.Fatalf("byte %d: fused=%d, sequential=%d", i, gotData[i], wantData[i])
		}
	}
}

func TestGraph_FieldEdgeExecutesSequentially(t *testing.T) {
	eng := NewEngine(WithWorkers(3))
	defer eng.Close()

	const w, h = 32, 32
	in, _ := NewBuffer(FormatRGBA8, w, h)
	fillPattern(in)

	cm := NewColorMatrix()
	cm.SetMatrix(BrightnessMatrix(0.5))
	blur := NewGaussianBlur()
	blur.SetRadius(3)

	// Blur samples rows beyond the current one, so the producer must
	// finish before the consumer starts. A field edge delivers the
	// producer's full buffer through BindInput.
	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(cm)
	b := gb.AddKernel(blur)
	gb.ConnectField(a, b, Shape{Format: FormatRGBA8, Width: w, Height: h})
	g, err := gb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, _ := NewBuffer(FormatRGBA8, w, h)
	g.SetInput(a, in)
	g.SetOutput(b, got)
	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Reference: the same two stages dispatched by hand.
	mid, _ := NewBuffer(FormatRGBA8, w, h)
	want, _ := NewBuffer(FormatRGBA8, w, h)
	if err := eng.Dispatch(in, mid, cm, nil); err != nil {
		t.Fatalf("reference Dispatch() error = %v", err)
	}
	ref := NewGaussianBlur()
	ref.SetRadius(3)
	ref.BindInput(mid)
	if err := eng.Dispatch(nil, want, ref, nil); err != nil {
		t.Fatalf("reference Dispatch() error = %v", err)
	}

	wantData, gotData := want.Data(), got.Data()
	for i := range wantData {
		if gotData[i] != wantData[i] {
			t.Fatalf("byte %d: graph=%d, reference=%d", i, gotData[i], wantData[i])
		}
	}
}

func TestGraph_ShapeMismatchInFusedChain(t *testing.T) {
	eng := NewEngine(WithWorkers(0))
	defer eng.Close()

	in, _ := NewBuffer(FormatRGBA8, 8, 8)
	out, _ := NewBuffer(FormatRGBA8, 16, 16) // wrong size

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewColorMatrix())
	b := gb.AddKernel(NewLUT())
	gb.Connect(a, b, Shape{Format: FormatRGBA8, Width: 8, Height: 8})
	g, err := gb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	g.SetInput(a, in)
	g.SetOutput(b, out)
	if err := g.Execute(); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Execute() error = %v, want ErrShapeMismatch", err)
	}
}

func TestGraph_RepeatedExecute(t *testing.T) {
	eng := NewEngine(WithWorkers(2))
	defer eng.Close()

	const w, h = 16, 16
	in, _ := NewBuffer(FormatRGBA8, w, h)
	out, _ := NewBuffer(FormatRGBA8, w, h)

	gb := NewGraphBuilder(eng)
	a := gb.AddKernel(NewColorMatrix())
	b := gb.AddKernel(NewLUT())
	gb.Connect(a, b, Shape{Format: FormatRGBA8, Width: w, Height: h})
	g, err := gb.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	g.SetInput(a, in)
	g.SetOutput(b, out)

	// The topological order and intermediates are reused; rebinding the
	// input between runs must be reflected in the output.
	for round := 0; round < 3; round++ {
		in.Fill(byte(40 * (round + 1)))
		if err := g.Execute(); err != nil {
			t.Fatalf("round %d: Execute() error = %v", round, err)
		}
		for i, v := range out.Data() {
			if v != byte(40*(round+1)) {
				t.Fatalf("round %d: byte %d = %d, want %d", round, i, v, 40*(round+1))
			}
		}
	}
}
