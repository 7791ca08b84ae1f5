package pixkern

import (
	"fmt"
	"sync/atomic"
)

// BlendMode selects a Porter-Duff compositing operator or arithmetic
// blend. All modes operate on premultiplied RGBA values in [0, 255].
type BlendMode uint8

const (
	// Porter-Duff modes (standard compositing operators)
	BlendClear   BlendMode = iota // Result: 0 (clear destination)
	BlendSrc                      // Result: S (replace with source)
	BlendDst                      // Result: D (keep destination)
	BlendSrcOver                  // Result: S + D*(1-Sa) [default]
	BlendDstOver                  // Result: S*(1-Da) + D
	BlendSrcIn                    // Result: S*Da
	BlendDstIn                    // Result: D*Sa
	BlendSrcOut                   // Result: S*(1-Da)
	BlendDstOut                   // Result: D*(1-Sa)
	BlendSrcAtop                  // Result: S*Da + D*(1-Sa)
	BlendDstAtop                  // Result: S*(1-Da) + D*Sa
	BlendXor                      // Result: S*(1-Da) + D*(1-Sa)

	// Arithmetic modes
	BlendMultiply // Result: S*D
	BlendAdd      // Result: S + D (clamped to 255)
	BlendSubtract // Result: D - S (clamped to 0)

	blendModeCount
)

// String returns the mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendClear:
		return "Clear"
	case BlendSrc:
		return "Src"
	case BlendDst:
		return "Dst"
	case BlendSrcOver:
		return "SrcOver"
	case BlendDstOver:
		return "DstOver"
	case BlendSrcIn:
		return "SrcIn"
	case BlendDstIn:
		return "DstIn"
	case BlendSrcOut:
		return "SrcOut"
	case BlendDstOut:
		return "DstOut"
	case BlendSrcAtop:
		return "SrcAtop"
	case BlendDstAtop:
		return "DstAtop"
	case BlendXor:
		return "Xor"
	case BlendMultiply:
		return "Multiply"
	case BlendAdd:
		return "Add"
	case BlendSubtract:
		return "Subtract"
	default:
		return "Invalid"
	}
}

// blendFunc is the per-pixel signature shared by all modes.
// All values are premultiplied alpha, 0-255.
type blendFunc func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// Blend is a built-in kernel compositing the input buffer (source) into
// the output buffer (destination) with the selected mode. The output is
// read as the destination and overwritten with the result, so both
// sides of the dispatch must be 4-channel premultiplied RGBA.
//
// A new Blend uses BlendSrcOver.
type Blend struct {
	fn atomic.Pointer[blendFunc]
}

// NewBlend creates a blend kernel in SrcOver mode.
func NewBlend() *Blend {
	b := &Blend{}
	b.SetMode(BlendSrcOver)
	return b
}

// SetMode selects the blend operator.
// SetMode panics on a mode outside the implemented catalog; requesting
// an unimplemented operator is a programming error, not a recoverable
// condition.
func (b *Blend) SetMode(m BlendMode) {
	if m >= blendModeCount {
		panic(fmt.Sprintf("pixkern: unimplemented blend mode %d", m))
	}
	fn := blendFuncs[m]
	b.fn.Store(&fn)
}

// Process composites every element of the claimed slice.
func (b *Blend) Process(rc *RowContext) {
	if rc.In == nil || rc.Out == nil {
		Logger().Warn("blend: no bound input or output, skipping slice")
		return
	}
	fn := *b.fn.Load()

	for x := rc.XStart; x < rc.XEnd; x++ {
		s := rc.In[x*rc.InStride:]
		d := rc.Out[x*rc.OutStride:]
		d[0], d[1], d[2], d[3] = fn(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
	}
}

// blendFuncs maps each mode to its per-pixel formula.
var blendFuncs = [blendModeCount]blendFunc{
	BlendClear:    blendClear,
	BlendSrc:      blendSrc,
	BlendDst:      blendDst,
	BlendSrcOver:  blendSrcOver,
	BlendDstOver:  blendDstOver,
	BlendSrcIn:    blendSrcIn,
	BlendDstIn:    blendDstIn,
	BlendSrcOut:   blendSrcOut,
	BlendDstOut:   blendDstOut,
	BlendSrcAtop:  blendSrcAtop,
	BlendDstAtop:  blendDstAtop,
	BlendXor:      blendXor,
	BlendMultiply: blendMultiply,
	BlendAdd:      blendAdd,
	BlendSubtract: blendSubtract,
}

// Porter-Duff implementations (premultiplied alpha)

func blendClear(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return 0, 0, 0, 0
}

func blendSrc(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return sr, sg, sb, sa
}

func blendDst(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return dr, dg, db, da
}

// Formula: S + D * (1 - Sa)
func blendSrcOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := inv255(sa)
	return addClamp(sr, mulDiv255(dr, invSa)),
		addClamp(sg, mulDiv255(dg, invSa)),
		addClamp(sb, mulDiv255(db, invSa)),
		addClamp(sa, mulDiv255(da, invSa))
}

// Formula: S * (1 - Da) + D
func blendDstOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := inv255(da)
	return addClamp(mulDiv255(sr, invDa), dr),
		addClamp(mulDiv255(sg, invDa), dg),
		addClamp(mulDiv255(sb, invDa), db),
		addClamp(mulDiv255(sa, invDa), da)
}

// Formula: S * Da
func blendSrcIn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(sr, da), mulDiv255(sg, da), mulDiv255(sb, da), mulDiv255(sa, da)
}

// Formula: D * Sa
func blendDstIn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(dr, sa), mulDiv255(dg, sa), mulDiv255(db, sa), mulDiv255(da, sa)
}

// Formula: S * (1 - Da)
func blendSrcOut(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := inv255(da)
	return mulDiv255(sr, invDa), mulDiv255(sg, invDa), mulDiv255(sb, invDa), mulDiv255(sa, invDa)
}

// Formula: D * (1 - Sa)
func blendDstOut(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := inv255(sa)
	return mulDiv255(dr, invSa), mulDiv255(dg, invSa), mulDiv255(db, invSa), mulDiv255(da, invSa)
}

// Formula: S * Da + D * (1 - Sa)
func blendSrcAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := inv255(sa)
	return addClamp(mulDiv255(sr, da), mulDiv255(dr, invSa)),
		addClamp(mulDiv255(sg, da), mulDiv255(dg, invSa)),
		addClamp(mulDiv255(sb, da), mulDiv255(db, invSa)),
		addClamp(mulDiv255(sa, da), mulDiv255(da, invSa))
}

// Formula: S * (1 - Da) + D * Sa
func blendDstAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := inv255(da)
	return addClamp(mulDiv255(sr, invDa), mulDiv255(dr, sa)),
		addClamp(mulDiv255(sg, invDa), mulDiv255(dg, sa)),
		addClamp(mulDiv255(sb, invDa), mulDiv255(db, sa)),
		addClamp(mulDiv255(sa, invDa), mulDiv255(da, sa))
}

// Formula: S * (1 - Da) + D * (1 - Sa)
func blendXor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := inv255(sa)
	invDa := inv255(da)
	return addClamp(mulDiv255(sr, invDa), mulDiv255(dr, invSa)),
		addClamp(mulDiv255(sg, invDa), mulDiv255(dg, invSa)),
		addClamp(mulDiv255(sb, invDa), mulDiv255(db, invSa)),
		addClamp(mulDiv255(sa, invDa), mulDiv255(da, invSa))
}

// Formula: S * D
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(sr, dr), mulDiv255(sg, dg), mulDiv255(sb, db), mulDiv255(sa, da)
}

// Formula: S + D, clamped
func blendAdd(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return addClamp(sr, dr), addClamp(sg, dg), addClamp(sb, db), addClamp(sa, da)
}

// Formula: D - S, clamped
func blendSubtract(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return subClamp(dr, sr), subClamp(dg, sg), subClamp(db, sb), subClamp(da, sa)
}
