package pixkern

// Format represents an element storage format.
type Format uint8

const (
	// FormatGray8 is 8-bit single channel (1 byte per element).
	FormatGray8 Format = iota

	// FormatGray16 is 16-bit single channel (2 bytes per element).
	FormatGray16

	// FormatRGB8 is 24-bit RGB (3 bytes per element, no alpha).
	FormatRGB8

	// FormatRGBA8 is 32-bit RGBA (4 bytes per element).
	// This is the standard format for the built-in kernels.
	FormatRGBA8

	// FormatRGBAPremul is 32-bit RGBA with premultiplied alpha
	// (4 bytes per element). The Blend kernel expects this format.
	FormatRGBAPremul

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about an element format.
type FormatInfo struct {
	// BytesPerElement is the element stride in bytes.
	BytesPerElement int

	// Channels is the number of color channels.
	Channels int

	// HasAlpha indicates if the format has an alpha channel.
	HasAlpha bool

	// IsPremultiplied indicates if alpha is premultiplied.
	IsPremultiplied bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8: {
		BytesPerElement: 1,
		Channels:        1,
	},
	FormatGray16: {
		BytesPerElement: 2,
		Channels:        1,
	},
	FormatRGB8: {
		BytesPerElement: 3,
		Channels:        3,
	},
	FormatRGBA8: {
		BytesPerElement: 4,
		Channels:        4,
		HasAlpha:        true,
	},
	FormatRGBAPremul: {
		BytesPerElement: 4,
		Channels:        4,
		HasAlpha:        true,
		IsPremultiplied: true,
	},
}

// Valid returns true if the format is a known format.
func (f Format) Valid() bool {
	return f < formatCount
}

// Info returns the metadata for the format.
// Invalid formats return the zero FormatInfo.
func (f Format) Info() FormatInfo {
	if !f.Valid() {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerElement returns the element stride in bytes.
func (f Format) BytesPerElement() int {
	return f.Info().BytesPerElement
}

// Channels returns the number of color channels.
func (f Format) Channels() int {
	return f.Info().Channels
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatGray16:
		return "Gray16"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBAPremul:
		return "RGBAPremul"
	default:
		return "Invalid"
	}
}
