package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // registers the JPEG decoder for compressed frames
	_ "image/png"  // registers the PNG decoder for compressed frames

	"github.com/aretw0/strider/pkg/domain"
)

// layout describes how a raw payload of a given pixel format is reshaped.
type layout struct {
	channels int
	depth    domain.SampleDepth
}

// visualLayouts is the raw decode dispatch table. greyscale_u16 keeps the legacy
// mapping: two bytes per pixel read as 8-bit samples.
var visualLayouts = map[domain.PixelFormat]layout{
	domain.PixelFormatDepthU16:     {channels: 1, depth: domain.Uint16},
	domain.PixelFormatRGBU8:        {channels: 3, depth: domain.Uint8},
	domain.PixelFormatRGBAU8:       {channels: 4, depth: domain.Uint8},
	domain.PixelFormatGreyscaleU8:  {channels: 1, depth: domain.Uint8},
	domain.PixelFormatGreyscaleU16: {channels: 2, depth: domain.Uint8},
}

// Codec turns raw sensor frames into canonical pixel buffers.
type Codec struct {
	correctGrey16 bool
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCorrectedGrey16 decodes greyscale_u16 frames as one 16-bit channel instead of
// the legacy two 8-bit channels.
func WithCorrectedGrey16() CodecOption {
	return func(c *Codec) {
		c.correctGrey16 = true
	}
}

// NewCodec creates a Codec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) layoutFor(pf domain.PixelFormat) (layout, bool) {
	if c.correctGrey16 && pf == domain.PixelFormatGreyscaleU16 {
		return layout{channels: 1, depth: domain.Uint16}, true
	}
	l, ok := visualLayouts[pf]
	return l, ok
}

// DecodeVisual decodes a visual frame. Raw payloads are reshaped according to the
// pixel format; compressed payloads, and raw payloads whose size does not match the
// declared dimensions, go through general image decoding.
func (c *Codec) DecodeVisual(frame domain.SensorFrame) (domain.DecodedImage, error) {
	l, ok := c.layoutFor(frame.PixelFormat)
	if !ok {
		return domain.DecodedImage{}, fmt.Errorf("%w: pixel format %q", domain.ErrUnsupportedFormat, frame.PixelFormat)
	}

	if frame.Format == domain.FormatRaw {
		if img, ok := reshape(frame.Data, frame.Rows, frame.Cols, l); ok {
			return img, nil
		}
	}
	return decodeContainer(frame.Data)
}

// DecodeDepth decodes a 16-bit depth frame. The payload must match rows×cols exactly.
func (c *Codec) DecodeDepth(frame domain.SensorFrame) (domain.DecodedImage, error) {
	if frame.Rows <= 0 || frame.Cols <= 0 {
		return domain.DecodedImage{}, fmt.Errorf("%w: invalid dimensions %dx%d", domain.ErrDecodeFailed, frame.Cols, frame.Rows)
	}
	img, ok := reshape(frame.Data, frame.Rows, frame.Cols, layout{channels: 1, depth: domain.Uint16})
	if !ok {
		return domain.DecodedImage{}, fmt.Errorf("%w: depth payload is %d bytes, want %d",
			domain.ErrDecodeFailed, len(frame.Data), frame.Rows*frame.Cols*2)
	}
	return img, nil
}

// reshape interprets data as a rows×cols buffer. It reports false on a size mismatch.
func reshape(data []byte, rows, cols int, l layout) (domain.DecodedImage, bool) {
	if rows <= 0 || cols <= 0 {
		return domain.DecodedImage{}, false
	}
	img := domain.DecodedImage{Width: cols, Height: rows, Channels: l.channels, Depth: l.depth}
	n := img.Len()

	switch l.depth {
	case domain.Uint16:
		if len(data) != n*2 {
			return domain.DecodedImage{}, false
		}
		img.Pix16 = make([]uint16, n)
		for i := range img.Pix16 {
			img.Pix16[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
	default:
		if len(data) != n {
			return domain.DecodedImage{}, false
		}
		img.Pix = append([]uint8(nil), data...)
	}
	return img, true
}

// decodeContainer decodes an encoded image (JPEG, PNG) into a canonical buffer.
func decodeContainer(data []byte) (domain.DecodedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.DecodedImage{}, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}
	return FromImage(src), nil
}

// FromImage converts a standard library image into a canonical buffer.
// Gray images keep one channel, opaque images become RGB and the rest RGBA.
func FromImage(src image.Image) domain.DecodedImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch s := src.(type) {
	case *image.Gray:
		out := domain.DecodedImage{Width: w, Height: h, Channels: 1, Depth: domain.Uint8, Pix: make([]uint8, w*h)}
		for y := 0; y < h; y++ {
			copy(out.Pix[y*w:(y+1)*w], s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	case *image.Gray16:
		out := domain.DecodedImage{Width: w, Height: h, Channels: 1, Depth: domain.Uint16, Pix16: make([]uint16, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix16[y*w+x] = s.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
		return out
	}

	channels := 4
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}
	out := domain.DecodedImage{Width: w, Height: h, Channels: channels, Depth: domain.Uint8, Pix: make([]uint8, w*h*channels)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
			if channels == 4 {
				out.Pix[i+3] = c.A
			}
			i += channels
		}
	}
	return out
}

// MaxRawViewPixels bounds the header-declared size RawView will allocate.
const MaxRawViewPixels = 1 << 24

// RawView reinterprets a frame's bytes as an 8-bit greyscale rows×cols image,
// zero-padding or truncating the payload. It never fails; it is the degraded
// view saved when decoding does not succeed. Headers larger than
// MaxRawViewPixels are shrunk to the rows the payload actually fills.
func RawView(frame domain.SensorFrame) domain.DecodedImage {
	rows, cols := frame.Rows, frame.Cols
	switch {
	case rows <= 0 || cols <= 0 || cols > MaxRawViewPixels:
		rows, cols = 1, len(frame.Data)
	case cols > MaxRawViewPixels/rows:
		rows = (len(frame.Data) + cols - 1) / cols
	}
	rows, cols = max(rows, 1), max(cols, 1)
	out := domain.DecodedImage{Width: cols, Height: rows, Channels: 1, Depth: domain.Uint8, Pix: make([]uint8, rows*cols)}
	copy(out.Pix, frame.Data)
	return out
}
