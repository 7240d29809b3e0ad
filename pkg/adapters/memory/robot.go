package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
)

// Default synthetic frame size.
const (
	FrameRows = 48
	FrameCols = 64
)

// DefaultMoveScript is the poll sequence a move command reports unless overridden:
// one in-flight sample, then at goal and settled.
func DefaultMoveScript() []domain.CommandFeedback {
	return []domain.CommandFeedback{
		{Status: domain.CommandProcessing, Trajectory: domain.TrajectoryGoingToGoal, Body: domain.BodyMoving},
		{Status: domain.CommandProcessing, Trajectory: domain.TrajectoryAtGoal, Body: domain.BodySettled},
	}
}

// DefaultStandScript is the poll sequence a stand command reports unless overridden.
func DefaultStandScript() []domain.CommandFeedback {
	return []domain.CommandFeedback{
		{Status: domain.CommandCompleted, Stand: domain.StandStanding},
	}
}

type command struct {
	script []domain.CommandFeedback
	next   int
}

// Robot is a scripted, in-process robot implementing ports.Robot.
// Command feedback follows a script; the last sample repeats once the script runs out.
// Safe for concurrent use.
type Robot struct {
	mu sync.Mutex

	username string
	password string
	estopped bool
	lease    ports.LeaseService

	pose        domain.Pose
	moveScript  []domain.CommandFeedback
	standScript []domain.CommandFeedback
	commands    map[domain.CommandID]*command
	nextID      int

	frames   map[string]domain.SensorFrame
	fetchErr error

	powered    bool
	powerFault error

	calls    []string
	comments []string
}

// RobotOption configures the Robot.
type RobotOption func(*Robot)

// WithEstop engages the emergency stop.
func WithEstop(engaged bool) RobotOption {
	return func(r *Robot) {
		r.estopped = engaged
	}
}

// WithCredentials sets the accepted username and password.
func WithCredentials(username, password string) RobotOption {
	return func(r *Robot) {
		r.username = username
		r.password = password
	}
}

// WithPose sets the pose reported in every frame.
func WithPose(p domain.Pose) RobotOption {
	return func(r *Robot) {
		r.pose = p
	}
}

// WithMoveFeedback replaces the poll script used for move commands.
func WithMoveFeedback(script ...domain.CommandFeedback) RobotOption {
	return func(r *Robot) {
		r.moveScript = script
	}
}

// WithStandFeedback replaces the poll script used for stand commands.
func WithStandFeedback(script ...domain.CommandFeedback) RobotOption {
	return func(r *Robot) {
		r.standScript = script
	}
}

// WithFrame overrides the frame returned for frame.Source.
func WithFrame(frame domain.SensorFrame) RobotOption {
	return func(r *Robot) {
		r.frames[frame.Source] = frame
	}
}

// WithFetchError makes every image fetch fail with err.
func WithFetchError(err error) RobotOption {
	return func(r *Robot) {
		r.fetchErr = err
	}
}

// WithLeaseService replaces the robot's lease service.
func WithLeaseService(svc ports.LeaseService) RobotOption {
	return func(r *Robot) {
		r.lease = svc
	}
}

// WithPowerFault makes PowerOn fail with err.
func WithPowerFault(err error) RobotOption {
	return func(r *Robot) {
		r.powerFault = err
	}
}

// NewRobot creates a scripted robot. Without options it accepts any credentials,
// reaches every move goal after two polls and serves synthetic frames for every source.
func NewRobot(opts ...RobotOption) *Robot {
	r := &Robot{
		lease:       NewLeaseService("memory"),
		moveScript:  DefaultMoveScript(),
		standScript: DefaultStandScript(),
		commands:    make(map[domain.CommandID]*command),
		frames:      make(map[string]domain.SensorFrame),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Robot) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns the operations received, in order.
func (r *Robot) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Comments returns the operator comments appended to the log.
func (r *Robot) Comments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.comments...)
}

// Powered reports the motor power state.
func (r *Robot) Powered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.powered
}

func (r *Robot) Authenticate(ctx context.Context, username, password string) error {
	r.record("authenticate %s", username)
	if r.username == "" {
		return nil
	}
	if username != r.username || password != r.password {
		return fmt.Errorf("%w: invalid credentials for %q", domain.ErrAuthenticationFailed, username)
	}
	return nil
}

func (r *Robot) IsEstopped(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.estopped, nil
}

// SetEstop engages or clears the emergency stop.
func (r *Robot) SetEstop(engaged bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.estopped = engaged
}

func (r *Robot) Lease() ports.LeaseService     { return r.lease }
func (r *Robot) Command() ports.CommandService { return (*commandService)(r) }
func (r *Robot) State() ports.StateService     { return (*stateService)(r) }
func (r *Robot) Images() ports.ImageService    { return (*imageService)(r) }
func (r *Robot) Power() ports.PowerService     { return (*powerService)(r) }
func (r *Robot) Log() ports.LogService         { return (*logService)(r) }

type commandService Robot

func (c *commandService) issue(kind string, script []domain.CommandFeedback) domain.CommandID {
	r := (*Robot)(c)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := domain.CommandID(fmt.Sprintf("%s-%d", kind, r.nextID))
	r.commands[id] = &command{script: append([]domain.CommandFeedback(nil), script...)}
	r.calls = append(r.calls, fmt.Sprintf("%s %s", kind, id))
	return id
}

func (c *commandService) Stand(ctx context.Context, params domain.StandParams) (domain.CommandID, error) {
	return c.issue("stand", c.standScript), nil
}

func (c *commandService) Move(ctx context.Context, goal domain.GoalTransform, params domain.MobilityParams, end time.Time) (domain.CommandID, error) {
	return c.issue("move", c.moveScript), nil
}

func (c *commandService) Poll(ctx context.Context, id domain.CommandID) (domain.CommandFeedback, error) {
	r := (*Robot)(c)
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return domain.CommandFeedback{}, fmt.Errorf("unknown command %s", id)
	}
	if len(cmd.script) == 0 {
		return domain.CommandFeedback{Status: domain.CommandUnknownState}, nil
	}
	fb := cmd.script[min(cmd.next, len(cmd.script)-1)]
	cmd.next++
	return fb, nil
}

type stateService Robot

func (s *stateService) Pose(ctx context.Context, frame domain.Frame) (domain.Pose, error) {
	r := (*Robot)(s)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pose, nil
}

type imageService Robot

func (s *imageService) FetchFrames(ctx context.Context, sources []string) ([]domain.SensorFrame, error) {
	r := (*Robot)(s)
	r.record("fetch %v", sources)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	frames := make([]domain.SensorFrame, 0, len(sources))
	for _, name := range sources {
		if f, ok := r.frames[name]; ok {
			frames = append(frames, f)
			continue
		}
		src, err := domain.ParseCameraSource(name)
		if err != nil {
			return nil, err
		}
		frames = append(frames, SyntheticFrame(src, FrameRows, FrameCols))
	}
	return frames, nil
}

// SyntheticFrame builds a raw frame with a gradient payload: 16-bit range for depth
// modalities, 8-bit greyscale otherwise.
func SyntheticFrame(src domain.CameraSource, rows, cols int) domain.SensorFrame {
	f := domain.SensorFrame{
		Source:     src.Name(),
		Format:     domain.FormatRaw,
		Rows:       rows,
		Cols:       cols,
		AcquiredAt: time.Now(),
	}
	n := rows * cols
	if src.Modality.IsDepth() {
		f.PixelFormat = domain.PixelFormatDepthU16
		f.Data = make([]byte, n*2)
		for i := range n {
			binary.LittleEndian.PutUint16(f.Data[i*2:], uint16(500+i*7))
		}
		return f
	}
	f.PixelFormat = domain.PixelFormatGreyscaleU8
	f.Data = make([]byte, n)
	for i := range n {
		f.Data[i] = uint8(i * 3)
	}
	return f
}

type powerService Robot

func (p *powerService) PowerOn(ctx context.Context, timeout time.Duration) error {
	r := (*Robot)(p)
	r.record("power on")
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.powerFault != nil {
		return r.powerFault
	}
	r.powered = true
	return nil
}

func (p *powerService) PowerOff(ctx context.Context, graceful bool, timeout time.Duration) error {
	r := (*Robot)(p)
	r.record("power off graceful=%t", graceful)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powered = false
	return nil
}

func (p *powerService) IsPoweredOn(ctx context.Context) (bool, error) {
	r := (*Robot)(p)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.powered, nil
}

type logService Robot

func (l *logService) AppendComment(ctx context.Context, text string) error {
	r := (*Robot)(l)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, text)
	return nil
}

// Connector implements ports.Connector over a fixed set of in-process robots.
type Connector struct {
	mu     sync.RWMutex
	robots map[string]*Robot
}

// NewConnector creates a connector with no registered hosts.
func NewConnector() *Connector {
	return &Connector{robots: make(map[string]*Robot)}
}

// Register makes robot reachable at host.
func (c *Connector) Register(host string, robot *Robot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.robots[host] = robot
}

func (c *Connector) Connect(ctx context.Context, host string) (ports.Robot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.robots[host]
	if !ok {
		return nil, fmt.Errorf("no robot at %q", host)
	}
	return r, nil
}
