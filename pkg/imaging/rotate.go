package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/aretw0/strider/pkg/domain"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotate turns img counter-clockwise by degrees about its center using nearest
// neighbour sampling. The canvas grows to hold the whole rotated image and the
// uncovered corners are zero.
func Rotate(img domain.DecodedImage, degrees float64) (domain.DecodedImage, error) {
	src, err := ToImage(img)
	if err != nil {
		return domain.DecodedImage{}, err
	}
	if math.Mod(degrees, 360) == 0 {
		return img, nil
	}

	rad := degrees * math.Pi / 180
	cos, sin := snap(math.Cos(rad)), snap(math.Sin(rad))

	w, h := float64(img.Width), float64(img.Height)
	nw := int(math.Abs(w*cos) + math.Abs(h*sin) + 0.5)
	nh := int(math.Abs(w*sin) + math.Abs(h*cos) + 0.5)
	dstRect := image.Rect(0, 0, max(nw, 1), max(nh, 1))

	dst, err := canvasLike(src, dstRect)
	if err != nil {
		return domain.DecodedImage{}, err
	}

	// src-space (x, y) maps to dst-space (cos*x + sin*y + tx, -sin*x + cos*y + ty),
	// which is a visual counter-clockwise turn with y pointing down.
	cxS, cyS := w/2, h/2
	cxD, cyD := float64(dstRect.Dx())/2, float64(dstRect.Dy())/2
	m := f64.Aff3{
		cos, sin, cxD - (cos*cxS + sin*cyS),
		-sin, cos, cyD - (-sin*cxS + cos*cyS),
	}
	draw.NearestNeighbor.Transform(dst, m, src, src.Bounds(), draw.Src, nil)

	return fromCanvas(dst, img), nil
}

// snap removes floating point noise so quarter turns are exact.
func snap(v float64) float64 {
	const eps = 1e-12
	switch {
	case math.Abs(v) < eps:
		return 0
	case math.Abs(v-1) < eps:
		return 1
	case math.Abs(v+1) < eps:
		return -1
	}
	return v
}

func canvasLike(src image.Image, r image.Rectangle) (draw.Image, error) {
	switch src.(type) {
	case *image.Gray:
		return image.NewGray(r), nil
	case *image.Gray16:
		return image.NewGray16(r), nil
	case *image.RGBA:
		return image.NewRGBA(r), nil
	case *image.NRGBA:
		return image.NewNRGBA(r), nil
	}
	return nil, fmt.Errorf("%w: cannot rotate %T", domain.ErrUnsupportedFormat, src)
}

// fromCanvas converts a rotated canvas back to the layout of like.
func fromCanvas(dst image.Image, like domain.DecodedImage) domain.DecodedImage {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	out := domain.DecodedImage{Width: w, Height: h, Channels: like.Channels, Depth: like.Depth}

	switch d := dst.(type) {
	case *image.Gray:
		out.Pix = append([]uint8(nil), d.Pix...)
	case *image.Gray16:
		if like.Depth == domain.Uint16 {
			out.Pix16 = make([]uint16, w*h)
			for i := range out.Pix16 {
				out.Pix16[i] = uint16(d.Pix[i*2])<<8 | uint16(d.Pix[i*2+1])
			}
		} else {
			// Two 8-bit channels packed little-endian into one 16-bit sample.
			out.Pix = make([]uint8, w*h*2)
			for i := 0; i < w*h; i++ {
				out.Pix[i*2], out.Pix[i*2+1] = d.Pix[i*2+1], d.Pix[i*2]
			}
		}
	case *image.RGBA:
		out.Pix = make([]uint8, w*h*3)
		for i := 0; i < w*h; i++ {
			copy(out.Pix[i*3:i*3+3], d.Pix[i*4:i*4+3])
		}
	case *image.NRGBA:
		out.Pix = append([]uint8(nil), d.Pix...)
	}
	return out
}

// ToImage wraps a canonical buffer in the matching standard library image type.
func ToImage(img domain.DecodedImage) (image.Image, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", domain.ErrDecodeFailed, img.Width, img.Height)
	}
	r := image.Rect(0, 0, img.Width, img.Height)
	n := img.Width * img.Height

	if img.Depth == domain.Uint16 {
		if img.Channels != 1 || len(img.Pix16) != n {
			return nil, fmt.Errorf("%w: %dx%s buffer", domain.ErrUnsupportedFormat, img.Channels, img.Depth)
		}
		out := image.NewGray16(r)
		for i, v := range img.Pix16 {
			out.Pix[i*2], out.Pix[i*2+1] = uint8(v>>8), uint8(v)
		}
		return out, nil
	}

	if len(img.Pix) != n*img.Channels {
		return nil, fmt.Errorf("%w: buffer has %d samples, want %d", domain.ErrDecodeFailed, len(img.Pix), n*img.Channels)
	}
	switch img.Channels {
	case 1:
		out := image.NewGray(r)
		copy(out.Pix, img.Pix)
		return out, nil
	case 2:
		out := image.NewGray16(r)
		for i := 0; i < n; i++ {
			out.Pix[i*2], out.Pix[i*2+1] = img.Pix[i*2+1], img.Pix[i*2]
		}
		return out, nil
	case 3:
		out := image.NewRGBA(r)
		for i := 0; i < n; i++ {
			copy(out.Pix[i*4:i*4+3], img.Pix[i*3:i*3+3])
			out.Pix[i*4+3] = 0xff
		}
		return out, nil
	case 4:
		out := image.NewNRGBA(r)
		copy(out.Pix, img.Pix)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d channels", domain.ErrUnsupportedFormat, img.Channels)
}
