package timeutil_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/strider/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMockClock_AutoAdvance(t *testing.T) {
	c := timeutil.NewMockClock(epoch)
	c.SetAutoAdvance(true)

	<-c.After(500 * time.Millisecond)
	<-c.After(250 * time.Millisecond)

	assert.Equal(t, 750*time.Millisecond, c.Since(epoch))
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 250 * time.Millisecond}, c.Waits())
}

func TestMockClock_ManualAdvance(t *testing.T) {
	c := timeutil.NewMockClock(epoch)
	ch := c.After(time.Second)

	c.Advance(500 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("timer fired early")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case got := <-ch:
		assert.Equal(t, epoch.Add(time.Second), got)
	default:
		t.Fatal("timer did not fire")
	}
}

func TestMockTicker(t *testing.T) {
	c := timeutil.NewMockClock(epoch)
	tk := c.NewTicker(time.Second)

	c.Advance(time.Second)
	require.Len(t, tk.C(), 1)
	<-tk.C()

	tk.Stop()
	c.Advance(time.Second)
	assert.Len(t, tk.C(), 0)
}

func TestSleep_Cancelled(t *testing.T) {
	c := timeutil.NewMockClock(epoch)
	cause := errors.New("stop")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	err := timeutil.Sleep(ctx, c, time.Hour)
	assert.ErrorIs(t, err, cause)
}

func TestSleep_RealClock(t *testing.T) {
	err := timeutil.Sleep(context.Background(), timeutil.RealClock{}, time.Millisecond)
	assert.NoError(t, err)
}
