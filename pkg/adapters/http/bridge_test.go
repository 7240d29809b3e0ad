package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bridge "github.com/aretw0/strider/pkg/adapters/http"
	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func serve(t *testing.T, robot *memory.Robot) ports.Robot {
	t.Helper()
	srv := httptest.NewServer(bridge.NewHandler(robot, nil))
	t.Cleanup(srv.Close)

	client, err := (&bridge.Connector{HTTPClient: srv.Client()}).Connect(context.Background(), srv.URL)
	require.NoError(t, err)
	return client
}

func TestBridge_LeaseContract(t *testing.T) {
	client := serve(t, memory.NewRobot())
	ports.RunLeaseServiceContract(t, client.Lease())
}

func TestBridge_RoundTrip(t *testing.T) {
	robot := memory.NewRobot(memory.WithCredentials("user", "secret"), memory.WithPose(domain.Pose{X: 1, Y: 2, Yaw: 0.5}))
	client := serve(t, robot)
	ctx := context.Background()

	require.NoError(t, client.Authenticate(ctx, "user", "secret"))

	stopped, err := client.IsEstopped(ctx)
	require.NoError(t, err)
	assert.False(t, stopped)

	pose, err := client.State().Pose(ctx, domain.FrameVision)
	require.NoError(t, err)
	assert.Equal(t, domain.Pose{X: 1, Y: 2, Yaw: 0.5}, pose)

	id, err := client.Command().Move(ctx, domain.GoalTransform{Frame: domain.FrameOdom}, domain.MobilityParams{}, time.Now().Add(time.Second))
	require.NoError(t, err)
	fb, err := client.Command().Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultMoveScript()[0], fb)

	frames, err := client.Images().FetchFrames(ctx, []string{"back_depth", "left_fisheye_image"})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "left_fisheye_image", frames[1].Source)
	assert.Len(t, frames[0].Data, memory.FrameRows*memory.FrameCols*2, "payload survives the JSON hop")

	require.NoError(t, client.Power().PowerOn(ctx, time.Second))
	on, err := client.Power().IsPoweredOn(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, client.Power().PowerOff(ctx, true, time.Second))
	assert.False(t, robot.Powered())

	require.NoError(t, client.Log().AppendComment(ctx, "bridge ok"))
	assert.Equal(t, []string{"bridge ok"}, robot.Comments())
}

func TestBridge_ErrorsKeepTheirKind(t *testing.T) {
	robot := memory.NewRobot(memory.WithCredentials("user", "secret"))
	client := serve(t, robot)
	ctx := context.Background()

	err := client.Authenticate(ctx, "user", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, err := client.Lease().Take(ctx)
	require.NoError(t, err)
	_, err = client.Lease().Take(ctx)
	assert.ErrorIs(t, err, domain.ErrLeaseUnavailable)
	require.NoError(t, client.Lease().Return(ctx, token))

	_, err = client.Images().FetchFrames(ctx, []string{"roof_depth"})
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{domain.ErrEstopActive, codes.FailedPrecondition},
		{fmt.Errorf("wrapped: %w", domain.ErrLeaseUnavailable), codes.ResourceExhausted},
		{domain.ErrLeaseNotHeld, codes.PermissionDenied},
		{domain.ErrUnsupportedFormat, codes.InvalidArgument},
		{domain.ErrPowerFailed, codes.Aborted},
		{domain.ErrDecodeFailed, codes.DataLoss},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{errors.New("boom"), codes.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, bridge.CodeOf(tt.err))
		})
	}
}

func TestConnector_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := (&bridge.Connector{}).Connect(context.Background(), addr)
	assert.Error(t, err)
}
