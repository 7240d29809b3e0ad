package memory_test

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobot_Authenticate(t *testing.T) {
	r := memory.NewRobot(memory.WithCredentials("user", "secret"))
	ctx := context.Background()

	assert.NoError(t, r.Authenticate(ctx, "user", "secret"))
	assert.ErrorIs(t, r.Authenticate(ctx, "user", "wrong"), domain.ErrAuthenticationFailed)
}

func TestRobot_PollScriptRepeatsLastSample(t *testing.T) {
	r := memory.NewRobot()
	ctx := context.Background()

	id, err := r.Command().Move(ctx, domain.GoalTransform{}, domain.MobilityParams{}, time.Now())
	require.NoError(t, err)

	script := memory.DefaultMoveScript()
	for i, want := range []domain.CommandFeedback{script[0], script[1], script[1]} {
		got, err := r.Command().Poll(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "poll %d", i)
	}

	_, err = r.Command().Poll(ctx, "nope")
	assert.Error(t, err)
}

func TestRobot_FetchFrames(t *testing.T) {
	custom := domain.SensorFrame{Source: "back_fisheye_image", PixelFormat: domain.PixelFormatRGBU8, Format: domain.FormatRaw, Rows: 1, Cols: 1, Data: []byte{1, 2, 3}}
	r := memory.NewRobot(memory.WithFrame(custom))

	frames, err := r.Images().FetchFrames(context.Background(), []string{"back_depth", "back_fisheye_image"})
	require.NoError(t, err)
	require.Len(t, frames, 2)

	depth := frames[0]
	assert.Equal(t, domain.PixelFormatDepthU16, depth.PixelFormat)
	assert.Len(t, depth.Data, memory.FrameRows*memory.FrameCols*2)
	assert.Equal(t, uint16(507), binary.LittleEndian.Uint16(depth.Data[2:]))
	assert.Equal(t, custom, frames[1])

	_, err = r.Images().FetchFrames(context.Background(), []string{"roof_depth"})
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestRobot_Power(t *testing.T) {
	r := memory.NewRobot()
	ctx := context.Background()

	require.NoError(t, r.Power().PowerOn(ctx, time.Second))
	on, err := r.Power().IsPoweredOn(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, r.Power().PowerOff(ctx, true, time.Second))
	assert.False(t, r.Powered())
	assert.Equal(t, []string{"power on", "power off graceful=true"}, r.Calls())
}

func TestConnector(t *testing.T) {
	c := memory.NewConnector()
	robot := memory.NewRobot()
	c.Register("spot", robot)

	got, err := c.Connect(context.Background(), "spot")
	require.NoError(t, err)
	assert.Same(t, robot, got)

	_, err = c.Connect(context.Background(), "other")
	assert.Error(t, err)
}
