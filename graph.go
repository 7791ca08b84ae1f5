package pixkern

import (
	"errors"
	"fmt"
)

// Graph errors.
var (
	// ErrCyclicGraph indicates the declared links form a cycle.
	ErrCyclicGraph = errors.New("pixkern: cyclic kernel graph")

	// ErrUnboundNode indicates a graph node with neither an input nor
	// an output buffer at execution time.
	ErrUnboundNode = errors.New("pixkern: graph node has no bound buffers")
)

// KernelID identifies a kernel registered with a GraphBuilder.
type KernelID int

// Shape describes the intermediate buffer allocated for a link when the
// caller does not supply one.
type Shape struct {
	Format Format
	Width  int
	Height int
}

// graphLink records one producer-to-consumer dependency. A field link
// delivers the produced buffer to the consumer through BindInput (a
// named binding) instead of as its primary input, which forces strict
// sequential execution of the whole graph.
type graphLink struct {
	from  KernelID
	to    KernelID
	field bool
	shape Shape
}

// GraphBuilder declares a set of kernels and their data dependencies.
//
// Example:
//
//	gb := pixkern.NewGraphBuilder(eng)
//	a := gb.AddKernel(colorMatrix)
//	b := gb.AddKernel(lut)
//	gb.Connect(a, b, pixkern.Shape{Format: pixkern.FormatRGBA8, Width: 512, Height: 512})
//	g, err := gb.Build()
type GraphBuilder struct {
	engine  *Engine
	kernels []Kernel
	links   []graphLink
}

// NewGraphBuilder creates a builder dispatching through the given engine.
func NewGraphBuilder(e *Engine) *GraphBuilder {
	return &GraphBuilder{engine: e}
}

// AddKernel registers a kernel and returns its ID.
// AddKernel panics on a nil kernel.
func (gb *GraphBuilder) AddKernel(k Kernel) KernelID {
	if k == nil {
		panic("pixkern: nil kernel added to graph")
	}
	gb.kernels = append(gb.kernels, k)
	return KernelID(len(gb.kernels) - 1)
}

// Connect declares a plain buffer edge: the producer's output buffer
// becomes the consumer's primary input. shape sizes the intermediate
// buffer allocated for the edge.
//
// Connect panics if either ID is unknown; referencing an unregistered
// kernel is a programming error.
func (gb *GraphBuilder) Connect(from, to KernelID, shape Shape) {
	gb.checkID(from)
	gb.checkID(to)
	gb.links = append(gb.links, graphLink{from: from, to: to, shape: shape})
}

// ConnectField declares a field edge: the produced buffer is delivered
// to the consumer through its BindInput binding rather than as its
// primary input. Field edges force the graph to execute strictly
// sequentially in dependency order.
func (gb *GraphBuilder) ConnectField(from, to KernelID, shape Shape) {
	gb.checkID(from)
	gb.checkID(to)
	gb.links = append(gb.links, graphLink{from: from, to: to, field: true, shape: shape})
}

func (gb *GraphBuilder) checkID(id KernelID) {
	if id < 0 || int(id) >= len(gb.kernels) {
		panic(fmt.Sprintf("pixkern: kernel id %d out of range", id))
	}
}

// graphNode is one schedulable kernel with its resolved buffers.
type graphNode struct {
	id KernelID
	k  Kernel

	// in and out are the primary dispatch buffers. Either may be
	// overridden with SetInput/SetOutput and either may be nil until
	// execution time.
	in  *Buffer
	out *Buffer

	// fieldSrcs lists producers delivered through BindInput before
	// this node runs.
	fieldSrcs []*graphNode
}

// Graph is a built, topologically ordered kernel graph. The order is
// computed once at Build time and reused across Execute calls as long
// as the bindings don't change.
type Graph struct {
	engine   *Engine
	nodes    []*graphNode // indexed by KernelID
	order    []*graphNode // topological execution order
	hasField bool
}

// Build validates the declared links, allocates intermediate buffers,
// and topologically orders the graph. A cycle is a build-time failure.
func (gb *GraphBuilder) Build() (*Graph, error) {
	n := len(gb.kernels)
	g := &Graph{
		engine: gb.engine,
		nodes:  make([]*graphNode, n),
	}
	for i, k := range gb.kernels {
		g.nodes[i] = &graphNode{id: KernelID(i), k: k}
	}

	// Field-edge consumers must accept named bindings.
	for _, l := range gb.links {
		if l.field {
			if _, ok := gb.kernels[l.to].(InputBinder); !ok {
				return nil, fmt.Errorf("pixkern: kernel %d does not accept field bindings", l.to)
			}
			g.hasField = true
		}
	}

	order, err := topoOrder(n, gb.links)
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		g.order = append(g.order, g.nodes[id])
	}

	// Allocate one intermediate buffer per producer, shared across all
	// of its links, and wire it to the consumers.
	produced := make(map[KernelID]*Buffer)
	for _, l := range gb.links {
		buf := produced[l.from]
		if buf == nil {
			var err error
			buf, err = NewBuffer(l.shape.Format, l.shape.Width, l.shape.Height)
			if err != nil {
				return nil, fmt.Errorf("pixkern: allocating link buffer for kernel %d: %w", l.from, err)
			}
			produced[l.from] = buf
			g.nodes[l.from].out = buf
		}
		if l.field {
			g.nodes[l.to].fieldSrcs = append(g.nodes[l.to].fieldSrcs, g.nodes[l.from])
		} else if g.nodes[l.to].in == nil {
			g.nodes[l.to].in = buf
		}
	}

	return g, nil
}

// topoOrder orders node IDs so every producer precedes its consumers.
// It runs an iterative depth-first traversal with three-color node
// state; revisiting a node that is still being visited is a cycle.
func topoOrder(n int, links []graphLink) ([]KernelID, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	adj := make([][]KernelID, n)
	for _, l := range links {
		adj[l.from] = append(adj[l.from], l.to)
	}

	color := make([]uint8, n)
	post := make([]KernelID, 0, n)

	type frame struct {
		id   KernelID
		next int
	}

	for s := 0; s < n; s++ {
		if color[s] != unvisited {
			continue
		}
		color[s] = visiting
		stack := []frame{{id: KernelID(s)}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(adj[f.id]) {
				nb := adj[f.id][f.next]
				f.next++
				switch color[nb] {
				case visiting:
					return nil, ErrCyclicGraph
				case unvisited:
					color[nb] = visiting
					stack = append(stack, frame{id: nb})
				}
				continue
			}
			color[f.id] = done
			post = append(post, f.id)
			stack = stack[:len(stack)-1]
		}
	}

	// Reverse post-order is a topological order.
	order := make([]KernelID, n)
	for i, id := range post {
		order[n-1-i] = id
	}
	return order, nil
}

// SetInput binds the primary input buffer of a kernel, replacing any
// intermediate wired at Build time.
// SetInput panics on an unknown ID.
func (g *Graph) SetInput(id KernelID, b *Buffer) {
	g.node(id).in = b
}

// SetOutput binds the output buffer of a kernel, replacing any
// intermediate allocated at Build time.
// SetOutput panics on an unknown ID.
func (g *Graph) SetOutput(id KernelID, b *Buffer) {
	g.node(id).out = b
}

func (g *Graph) node(id KernelID) *graphNode {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("pixkern: kernel id %d out of range", id))
	}
	return g.nodes[id]
}

// Execute runs the graph.
//
// If any link is a field edge, kernels run strictly one at a time in
// topological order, each dispatched to completion before the next
// starts. Otherwise all kernels fuse into a single launch whose body
// invokes every kernel in topological order per row, each against its
// own bound buffers. That costs one pass over the worker pool instead
// of one per kernel.
func (g *Graph) Execute() error {
	for _, n := range g.order {
		if n.in == nil && n.out == nil {
			return fmt.Errorf("%w: kernel %d", ErrUnboundNode, n.id)
		}
	}

	if g.hasField {
		for _, n := range g.order {
			for _, src := range n.fieldSrcs {
				n.k.(InputBinder).BindInput(src.out)
			}
			if err := g.engine.Dispatch(n.in, n.out, n.k, nil); err != nil {
				return fmt.Errorf("pixkern: dispatching kernel %d: %w", n.id, err)
			}
		}
		return nil
	}

	// Fused execution over the common iteration domain.
	domain := g.order[0].out
	if domain == nil {
		domain = g.order[0].in
	}
	for _, n := range g.order {
		if n.out != nil && (n.out.dimX != domain.dimX || n.out.dimY != domain.dimY) {
			return fmt.Errorf("%w: kernel %d output %dx%d, domain %dx%d",
				ErrShapeMismatch, n.id, n.out.dimX, n.out.dimY, domain.dimX, domain.dimY)
		}
	}

	fused := &fusedKernel{members: g.order}
	return g.engine.Dispatch(nil, domain, fused, nil)
}

// fusedKernel runs every member kernel in topological order for each
// claimed slice, each member addressing its own bound buffers. Members
// connected by buffer edges see their producer's bytes for the current
// row because producers run first within the slice.
type fusedKernel struct {
	members []*graphNode
}

// Process invokes each member over the claimed range.
func (f *fusedKernel) Process(rc *RowContext) {
	mrc := RowContext{
		XStart: rc.XStart,
		XEnd:   rc.XEnd,
		Y:      rc.Y,
		Z:      rc.Z,
		Array:  rc.Array,
	}
	for _, n := range f.members {
		mrc.In = nil
		mrc.InStride = 0
		if n.in != nil {
			mrc.InStride = n.in.ElemSize()
			if rc.Y < n.in.dimY && rc.Z < n.in.dimZ && rc.Array < n.in.dimA {
				mrc.In = n.in.Row(rc.Y, rc.Z, rc.Array)
			}
		}
		mrc.Out = nil
		mrc.OutStride = 0
		if n.out != nil {
			mrc.OutStride = n.out.ElemSize()
			if rc.Y < n.out.dimY && rc.Z < n.out.dimZ && rc.Array < n.out.dimA {
				mrc.Out = n.out.Row(rc.Y, rc.Z, rc.Array)
			}
		}
		mrc.Input = n.in
		mrc.Output = n.out
		n.k.Process(&mrc)
	}
}
