package imaging_test

import (
	"testing"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayRow(values ...uint8) domain.DecodedImage {
	return domain.DecodedImage{Width: len(values), Height: 1, Channels: 1, Depth: domain.Uint8, Pix: values}
}

func TestRotate_Zero(t *testing.T) {
	in := grayRow(1, 2, 3)
	out, err := imaging.Rotate(in, 0)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRotate_HalfTurn(t *testing.T) {
	out, err := imaging.Rotate(grayRow(1, 2, 3), domain.CameraRight.Angle())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Width)
	assert.Equal(t, 1, out.Height)
	assert.Equal(t, []uint8{3, 2, 1}, out.Pix)
}

func TestRotate_QuarterTurnCounterClockwise(t *testing.T) {
	out, err := imaging.Rotate(grayRow(10, 20), 90)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Width)
	assert.Equal(t, 2, out.Height)
	assert.Equal(t, []uint8{20, 10}, out.Pix, "right end moves to the top")

	out, err = imaging.Rotate(grayRow(10, 20), -90)
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 20}, out.Pix, "left end moves to the top")
}

func TestRotate_ExpandsCanvas(t *testing.T) {
	in := rgbImage(64, 48, func(int) (uint8, uint8, uint8) { return 200, 200, 200 })
	out, err := imaging.Rotate(in, domain.CameraFrontLeft.Angle())
	require.NoError(t, err)

	assert.Equal(t, 3, out.Channels)
	assert.Greater(t, out.Width, 48)
	assert.Greater(t, out.Height, 64-1)
	assert.Len(t, out.Pix, out.Width*out.Height*3)

	// The corner is outside the rotated source and stays black; the center is covered.
	assert.Equal(t, []uint8{0, 0, 0}, out.Pix[:3])
	c := (out.Height/2*out.Width + out.Width/2) * 3
	assert.Equal(t, []uint8{200, 200, 200}, out.Pix[c:c+3])
}

func TestRotate_KeepsSampleLayout(t *testing.T) {
	depth := domain.DecodedImage{Width: 2, Height: 1, Channels: 1, Depth: domain.Uint16, Pix16: []uint16{1000, 60000}}
	out, err := imaging.Rotate(depth, 180)
	require.NoError(t, err)
	assert.Equal(t, domain.Uint16, out.Depth)
	assert.Equal(t, []uint16{60000, 1000}, out.Pix16)

	legacy := domain.DecodedImage{Width: 2, Height: 1, Channels: 2, Depth: domain.Uint8, Pix: []uint8{1, 2, 3, 4}}
	out, err = imaging.Rotate(legacy, 180)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Channels)
	assert.Equal(t, []uint8{3, 4, 1, 2}, out.Pix)
}

func TestToImage_RejectsEmpty(t *testing.T) {
	_, err := imaging.ToImage(domain.DecodedImage{})
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)

	_, err = imaging.ToImage(domain.DecodedImage{Width: 1, Height: 1, Channels: 5, Pix: make([]uint8, 5)})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
