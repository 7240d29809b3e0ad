package imaging

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/aretw0/strider/pkg/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/palette"
)

// depthColors is a 256-entry blue-to-red lookup table, close to the classic jet map.
// Hues are computed from the far end so index 255 lands exactly on red.
var depthColors = sync.OnceValue(func() [256][3]uint8 {
	var lut [256][3]uint8
	for i := range lut {
		h := float64(palette.Blue-palette.Red) * float64(255-i) / 255
		c := color.NRGBAModel.Convert(palette.HSVA{H: h, S: 1, V: 1, A: 1}).(color.NRGBA)
		lut[i] = [3]uint8{c.R, c.G, c.B}
	}
	return lut
})

// Blend fuses a depth image and a visual image from the same camera, then rotates
// the composite by the camera's correction angle. Rotation may change the output
// dimensions.
func Blend(depth, visual domain.DecodedImage, position domain.CameraPosition) (domain.FusedImage, error) {
	if !position.Valid() {
		return domain.FusedImage{}, fmt.Errorf("%w: %q", domain.ErrUnknownCamera, position)
	}
	norm, err := NormalizeDepth(depth)
	if err != nil {
		return domain.FusedImage{}, err
	}
	gray, err := ToGrayRGB(visual)
	if err != nil {
		return domain.FusedImage{}, err
	}
	comp, err := Composite(Colorize(norm), gray)
	if err != nil {
		return domain.FusedImage{}, err
	}
	rotated, err := Rotate(comp, position.Angle())
	if err != nil {
		return domain.FusedImage{}, err
	}
	return domain.FusedImage{DecodedImage: rotated, Position: position, Angle: position.Angle()}, nil
}

// NormalizeDepth stretches a 16-bit single-channel image to the 8-bit range using
// its own minimum and maximum. A constant image normalizes to all zeros.
func NormalizeDepth(depth domain.DecodedImage) (domain.DecodedImage, error) {
	if depth.Channels != 1 || depth.Depth != domain.Uint16 {
		return domain.DecodedImage{}, fmt.Errorf("%w: depth must be 1x%s, got %dx%s",
			domain.ErrUnsupportedFormat, domain.Uint16, depth.Channels, depth.Depth)
	}
	if len(depth.Pix16) != depth.Len() || len(depth.Pix16) == 0 {
		return domain.DecodedImage{}, fmt.Errorf("%w: depth buffer has %d samples, want %d",
			domain.ErrDecodeFailed, len(depth.Pix16), depth.Len())
	}

	values := make([]float64, len(depth.Pix16))
	for i, v := range depth.Pix16 {
		values[i] = float64(v)
	}
	lo, hi := floats.Min(values), floats.Max(values)

	out := domain.DecodedImage{Width: depth.Width, Height: depth.Height, Channels: 1, Depth: domain.Uint8, Pix: make([]uint8, len(values))}
	span := hi - lo
	if span == 0 {
		return out, nil
	}
	for i, v := range values {
		out.Pix[i] = uint8(math.Round((v - lo) / span * 255))
	}
	return out, nil
}

// Colorize maps a normalized single-channel image through the depth color table.
func Colorize(norm domain.DecodedImage) domain.DecodedImage {
	lut := depthColors()
	out := domain.DecodedImage{Width: norm.Width, Height: norm.Height, Channels: 3, Depth: domain.Uint8, Pix: make([]uint8, len(norm.Pix)*3)}
	for i, v := range norm.Pix {
		c := lut[v]
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = c[0], c[1], c[2]
	}
	return out
}

// ToGrayRGB collapses a 1, 3 or 4 channel image to luma replicated over three channels.
func ToGrayRGB(img domain.DecodedImage) (domain.DecodedImage, error) {
	n := img.Width * img.Height
	out := domain.DecodedImage{Width: img.Width, Height: img.Height, Channels: 3, Depth: domain.Uint8, Pix: make([]uint8, n*3)}

	var luma func(i int) uint8
	switch {
	case img.Depth == domain.Uint16 && img.Channels == 1 && len(img.Pix16) == n:
		luma = func(i int) uint8 { return uint8(img.Pix16[i] >> 8) }
	case img.Depth == domain.Uint8 && img.Channels == 1 && len(img.Pix) == n:
		luma = func(i int) uint8 { return img.Pix[i] }
	case img.Depth == domain.Uint8 && (img.Channels == 3 || img.Channels == 4) && len(img.Pix) == n*img.Channels:
		ch := img.Channels
		luma = func(i int) uint8 {
			p := img.Pix[i*ch : i*ch+3]
			return uint8((19595*uint32(p[0]) + 38470*uint32(p[1]) + 7471*uint32(p[2]) + 1<<15) >> 16)
		}
	default:
		return domain.DecodedImage{}, fmt.Errorf("%w: cannot convert %dx%s to grayscale",
			domain.ErrUnsupportedFormat, img.Channels, img.Depth)
	}

	for i := 0; i < n; i++ {
		y := luma(i)
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = y, y, y
	}
	return out, nil
}

// Composite averages two 3-channel 8-bit images of equal size, weighting both layers equally.
func Composite(a, b domain.DecodedImage) (domain.DecodedImage, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return domain.DecodedImage{}, fmt.Errorf("%w: layer size mismatch %dx%d vs %dx%d",
			domain.ErrDecodeFailed, a.Width, a.Height, b.Width, b.Height)
	}
	if a.Channels != 3 || b.Channels != 3 || len(a.Pix) != len(b.Pix) {
		return domain.DecodedImage{}, fmt.Errorf("%w: composite needs two RGB layers", domain.ErrUnsupportedFormat)
	}
	out := domain.DecodedImage{Width: a.Width, Height: a.Height, Channels: 3, Depth: domain.Uint8, Pix: make([]uint8, len(a.Pix))}
	for i := range a.Pix {
		out.Pix[i] = uint8((uint16(a.Pix[i]) + uint16(b.Pix[i]) + 1) / 2)
	}
	return out, nil
}
