package domain

import "time"

// PixelFormat tags the layout of a raw frame payload.
type PixelFormat string

const (
	PixelFormatUnknown      PixelFormat = "unknown"
	PixelFormatGreyscaleU8  PixelFormat = "greyscale_u8"
	PixelFormatRGBU8        PixelFormat = "rgb_u8"
	PixelFormatRGBAU8       PixelFormat = "rgba_u8"
	PixelFormatDepthU16     PixelFormat = "depth_u16"
	PixelFormatGreyscaleU16 PixelFormat = "greyscale_u16"
)

// ImageFormat tags the container a payload is stored in.
type ImageFormat string

const (
	FormatUnknown ImageFormat = "unknown"
	FormatRaw     ImageFormat = "raw"
	FormatJPEG    ImageFormat = "jpeg"
	FormatRLE     ImageFormat = "rle"
)

// SensorFrame is one raw payload returned for a camera source.
// Frames are treated as immutable once received.
type SensorFrame struct {
	Source      string      `json:"source"`
	PixelFormat PixelFormat `json:"pixel_format"`
	Format      ImageFormat `json:"format"`
	Rows        int         `json:"rows"`
	Cols        int         `json:"cols"`
	Data        []byte      `json:"data"`
	AcquiredAt  time.Time   `json:"acquired_at,omitzero"`
}

// SampleDepth is the element type of a decoded buffer.
type SampleDepth int

const (
	Uint8 SampleDepth = iota
	Uint16
)

func (d SampleDepth) String() string {
	if d == Uint16 {
		return "uint16"
	}
	return "uint8"
}

// DecodedImage is a row-major, channel-interleaved pixel buffer.
// Pix holds 8-bit samples and Pix16 holds 16-bit samples; only the one matching Depth is set.
type DecodedImage struct {
	Width    int
	Height   int
	Channels int
	Depth    SampleDepth
	Pix      []uint8
	Pix16    []uint16
}

// Len returns the number of samples the dimensions call for.
func (d *DecodedImage) Len() int {
	return d.Width * d.Height * d.Channels
}

// FusedImage is a blended depth/visual composite, already rotated for its camera.
type FusedImage struct {
	DecodedImage
	Position CameraPosition
	Angle    float64
}
