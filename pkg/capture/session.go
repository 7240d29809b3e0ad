package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/strider/internal/logging"
	"github.com/aretw0/strider/internal/timeutil"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/imaging"
	"github.com/aretw0/strider/pkg/lease"
	"github.com/aretw0/strider/pkg/ports"
)

const (
	KindSingle = "single"
	KindBlend  = "blend"
)

// Artifact describes one capture result.
type Artifact struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Degraded is set when the frame could not be decoded and its raw bytes were saved instead.
	Degraded bool `json:"degraded,omitempty"`
	// Persisted is false when the store rejected the write.
	Persisted bool `json:"persisted"`
}

// Session captures images from one robot into one store. Calls are sequential.
type Session struct {
	images ports.ImageService
	store  ports.ArtifactStore
	codec  *imaging.Codec
	clock  timeutil.Clock
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Session.
type Option func(*Session)

// WithCodec replaces the default visual codec.
func WithCodec(codec *imaging.Codec) Option {
	return func(s *Session) {
		s.codec = codec
	}
}

// WithClock injects the clock used for event timestamps.
func WithClock(clock timeutil.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers the capture callback.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// NewSession creates a capture Session.
func NewSession(images ports.ImageService, store ports.ArtifactStore, opts ...Option) *Session {
	s := &Session{
		images: images,
		store:  store,
		codec:  imaging.NewCodec(),
		clock:  timeutil.RealClock{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CaptureSingle fetches one frame from source, decodes it by modality, rotates it
// for the source's camera and saves it to path.
//
// A decode failure is logged and the raw bytes are saved instead (Artifact.Degraded).
// Only lease and fetch failures are returned.
func (s *Session) CaptureSingle(ctx context.Context, source domain.CameraSource, path string) (Artifact, error) {
	art := Artifact{Kind: KindSingle, Name: source.Name(), Path: path}
	if _, err := lease.Require(ctx); err != nil {
		return art, err
	}
	if _, err := domain.ParseCameraSource(source.Name()); err != nil {
		s.emit(ctx, art, err)
		return art, err
	}

	frame, err := s.fetchOne(ctx, source)
	if err != nil {
		s.emit(ctx, art, err)
		return art, err
	}

	img, err := s.decode(frame, source.Modality)
	if err != nil {
		s.logger.Warn("decode failed, saving raw frame", "source", source.Name(), "err", err)
		img = imaging.RawView(frame)
		art.Degraded = true
	}

	rotated, err := imaging.Rotate(img, source.Position.Angle())
	if err != nil {
		err = fmt.Errorf("failed to rotate %s: %w", source.Name(), err)
		s.emit(ctx, art, err)
		return art, err
	}

	art.Width, art.Height = rotated.Width, rotated.Height
	art.Persisted = s.persist(ctx, rotated, path)
	s.emit(ctx, art, nil)
	return art, nil
}

func (s *Session) decode(frame domain.SensorFrame, m domain.Modality) (domain.DecodedImage, error) {
	if !m.IsDepth() {
		return s.codec.DecodeVisual(frame)
	}
	depth, err := s.codec.DecodeDepth(frame)
	if err != nil {
		return domain.DecodedImage{}, err
	}
	norm, err := imaging.NormalizeDepth(depth)
	if err != nil {
		return domain.DecodedImage{}, err
	}
	return imaging.Colorize(norm), nil
}

// CaptureBlend fetches the depth-in-visual-frame and fisheye frames of position,
// fuses them and saves the result to path. Any decode or fusion error is returned
// and nothing is written.
func (s *Session) CaptureBlend(ctx context.Context, position domain.CameraPosition, path string) (Artifact, error) {
	art := Artifact{Kind: KindBlend, Name: position.String(), Path: path}
	if _, err := lease.Require(ctx); err != nil {
		return art, err
	}

	fused, err := s.blend(ctx, position)
	if err != nil {
		err = fmt.Errorf("failed to blend %s: %w", position, err)
		s.emit(ctx, art, err)
		return art, err
	}

	art.Width, art.Height = fused.Width, fused.Height
	art.Persisted = s.persist(ctx, fused.DecodedImage, path)
	s.emit(ctx, art, nil)
	return art, nil
}

func (s *Session) blend(ctx context.Context, position domain.CameraPosition) (domain.FusedImage, error) {
	depthSrc, visualSrc, err := domain.BlendPair(position)
	if err != nil {
		return domain.FusedImage{}, err
	}
	frames, err := s.images.FetchFrames(ctx, []string{depthSrc.Name(), visualSrc.Name()})
	if err != nil {
		return domain.FusedImage{}, fmt.Errorf("failed to fetch frames: %w", err)
	}
	if len(frames) != 2 {
		return domain.FusedImage{}, fmt.Errorf("%w: expected 2 frames, got %d", domain.ErrDecodeFailed, len(frames))
	}
	bySource := make(map[string]domain.SensorFrame, len(frames))
	for _, f := range frames {
		bySource[f.Source] = f
	}
	depthFrame, okDepth := bySource[depthSrc.Name()]
	visualFrame, okVisual := bySource[visualSrc.Name()]
	if !okDepth || !okVisual {
		return domain.FusedImage{}, fmt.Errorf("%w: frames for %s do not match requested sources %s, %s",
			domain.ErrDecodeFailed, position, depthSrc.Name(), visualSrc.Name())
	}

	depth, err := s.codec.DecodeDepth(depthFrame)
	if err != nil {
		return domain.FusedImage{}, err
	}
	visual, err := s.codec.DecodeVisual(visualFrame)
	if err != nil {
		return domain.FusedImage{}, err
	}
	return imaging.Blend(depth, visual, position)
}

// CaptureAll blends every camera position into dir as <position>.png.
// A failing position is logged and skipped; the failures are joined in the returned error.
func (s *Session) CaptureAll(ctx context.Context, dir string) ([]Artifact, error) {
	var (
		arts []Artifact
		errs []error
	)
	for _, p := range domain.AllCameraPositions() {
		art, err := s.CaptureBlend(ctx, p, filepath.Join(dir, p.String()+".png"))
		if err != nil {
			if ctx.Err() != nil {
				return arts, errors.Join(append(errs, err)...)
			}
			s.logger.Warn("blend capture failed", "camera", p, "err", err)
			errs = append(errs, err)
			continue
		}
		arts = append(arts, art)
	}
	return arts, errors.Join(errs...)
}

func (s *Session) fetchOne(ctx context.Context, source domain.CameraSource) (domain.SensorFrame, error) {
	frames, err := s.images.FetchFrames(ctx, []string{source.Name()})
	if err != nil {
		return domain.SensorFrame{}, fmt.Errorf("failed to fetch %s: %w", source.Name(), err)
	}
	if len(frames) != 1 {
		return domain.SensorFrame{}, fmt.Errorf("failed to fetch %s: expected 1 frame, got %d", source.Name(), len(frames))
	}
	return frames[0], nil
}

// persist saves img and reports whether it was written. Failures are logged, never returned.
func (s *Session) persist(ctx context.Context, img domain.DecodedImage, path string) bool {
	out, err := imaging.ToImage(img)
	if err == nil {
		err = s.store.Save(ctx, path, out)
	}
	if err != nil {
		s.logger.Warn("artifact not saved", "path", path, "err", fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err))
		return false
	}
	s.logger.Debug("artifact saved", "path", path, "width", img.Width, "height", img.Height)
	return true
}

func (s *Session) emit(ctx context.Context, art Artifact, err error) {
	if s.hooks.OnCapture == nil {
		return
	}
	token, _ := lease.FromContext(ctx)
	s.hooks.OnCapture(ctx, &domain.CaptureEvent{
		EventBase: domain.EventBase{Timestamp: s.clock.Now(), LeaseID: token.ID},
		Kind:      art.Kind,
		Name:      art.Name,
		Path:      art.Path,
		Degraded:  art.Degraded,
		Persisted: art.Persisted,
		Err:       err,
	})
}
