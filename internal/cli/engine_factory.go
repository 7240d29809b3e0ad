package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/internal/config"
	"github.com/aretw0/strider/pkg/adapters/file"
	httpbridge "github.com/aretw0/strider/pkg/adapters/http"
	"github.com/aretw0/strider/pkg/adapters/memory"
	redisarbiter "github.com/aretw0/strider/pkg/adapters/redis"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// SimulatedHost is the host name of the in-process robot used by --simulate.
const SimulatedHost = "sim"

// applyOverrides copies non-empty flag values over the file values.
func applyOverrides(f *config.File, opts RunOptions) error {
	if opts.Host != "" {
		f.Host = opts.Host
	}
	if opts.Bridge != "" {
		f.Bridge = opts.Bridge
	}
	if opts.User != "" {
		f.User = opts.User
	}
	if opts.Redis != "" {
		f.Redis = opts.Redis
	}
	if opts.MetricsAddr != "" {
		f.MetricsAddr = opts.MetricsAddr
	}
	if opts.Behavior != "" {
		b, err := domain.ParseBehavior(opts.Behavior)
		if err != nil {
			return err
		}
		f.Mission.Behavior = b
	}
	if opts.Source != "" {
		f.Mission.Source = opts.Source
	}
	if len(opts.Cameras) > 0 {
		cams, err := config.ParseCameras(opts.Cameras)
		if err != nil {
			return err
		}
		f.Mission.Cameras = cams
	}
	if opts.Output != "" {
		f.Mission.OutputDir = opts.Output
	}
	if opts.Simulate {
		f.Host = SimulatedHost
		f.Bridge = ""
	}
	return nil
}

// createConnector picks the transport for f and returns it with the address to dial.
func createConnector(f *config.File) (ports.Connector, string, error) {
	switch {
	case f.Host == SimulatedHost:
		c := memory.NewConnector()
		c.Register(SimulatedHost, memory.NewRobot())
		return c, SimulatedHost, nil
	case f.Bridge != "":
		return &httpbridge.Connector{}, f.Bridge, nil
	case f.Host != "":
		return &httpbridge.Connector{}, f.Host, nil
	default:
		return nil, "", fmt.Errorf("no robot address: set --host, --bridge or --simulate")
	}
}

// createArbiter wraps inner with a redis lease claim keyed by robot host.
func createArbiter(redisURL, host string, inner ports.LeaseService, logger *slog.Logger) (*redisarbiter.Arbiter, error) {
	opt, err := backend.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	owner, err := os.Hostname()
	if err != nil {
		owner = "strider"
	}
	logger.Debug("redis lease arbiter enabled", "addr", opt.Addr, "host", host, "owner", owner)
	return redisarbiter.NewFromClient(backend.NewClient(opt), inner,
		redisarbiter.WithKey("strider:lease:"+host),
		redisarbiter.WithOwner(owner),
	), nil
}

// createEngine builds the engine for robot from the resolved configuration.
func createEngine(robot ports.Robot, f *config.File, logger *slog.Logger, hooks domain.LifecycleHooks) (*strider.Engine, error) {
	opts := []strider.Option{
		strider.WithLogger(logger),
		strider.WithLifecycleHooks(hooks),
		strider.WithStore(file.New("")),
		strider.WithLeaseConfig(f.Lease),
		strider.WithMotionConfig(f.Motion),
	}
	if f.Redis != "" {
		host := f.Host
		if host == "" {
			host = f.Bridge
		}
		arb, err := createArbiter(f.Redis, host, robot.Lease(), logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, strider.WithLeaseService(arb))
	}

	eng, err := strider.New(robot, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}
