package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/strider/internal/logging"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a ports.Robot over HTTP so operator processes can reach a robot
// session owned by another host.
type Server struct {
	Robot  ports.Robot
	Logger *slog.Logger
}

// NewHandler creates a new HTTP handler for the robot.
func NewHandler(robot ports.Robot, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{Robot: robot, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.GetHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth", s.Authenticate)
		r.Get("/estop", s.GetEstop)

		r.Post("/lease/take", s.TakeLease)
		r.Post("/lease/return", s.ReturnLease)
		r.Post("/lease/keepalive", s.KeepAlive)

		r.Post("/commands/stand", s.Stand)
		r.Post("/commands/move", s.Move)
		r.Get("/commands/{id}", s.Poll)

		r.Get("/pose", s.GetPose)
		r.Post("/images", s.FetchFrames)

		r.Get("/power", s.GetPower)
		r.Post("/power/on", s.PowerOn)
		r.Post("/power/off", s.PowerOff)

		r.Post("/log", s.AppendComment)
	})
	return r
}

func decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string) (T, bool) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, logger, op, fmt.Errorf("%w: invalid request body: %v", domain.ErrUnsupportedFormat, err))
		return body, false
	}
	return body, true
}

func (s *Server) reply(w http.ResponseWriter, op string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("bridge response encode failed", "op", op, "err", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.reply(w, "health", healthResponse{Status: "ok"})
}

// Authenticate handles the POST /v1/auth request.
func (s *Server) Authenticate(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[authRequest](w, r, s.Logger, "auth")
	if !ok {
		return
	}
	if err := s.Robot.Authenticate(r.Context(), body.Username, body.Password); err != nil {
		writeError(w, s.Logger, "auth", err)
		return
	}
	s.reply(w, "auth", nil)
}

// GetEstop handles the GET /v1/estop request.
func (s *Server) GetEstop(w http.ResponseWriter, r *http.Request) {
	stopped, err := s.Robot.IsEstopped(r.Context())
	if err != nil {
		writeError(w, s.Logger, "estop", err)
		return
	}
	s.reply(w, "estop", estopResponse{Estopped: stopped})
}

// TakeLease handles the POST /v1/lease/take request.
func (s *Server) TakeLease(w http.ResponseWriter, r *http.Request) {
	token, err := s.Robot.Lease().Take(r.Context())
	if err != nil {
		writeError(w, s.Logger, "lease.take", err)
		return
	}
	s.reply(w, "lease.take", token)
}

// ReturnLease handles the POST /v1/lease/return request.
func (s *Server) ReturnLease(w http.ResponseWriter, r *http.Request) {
	token, ok := decode[domain.LeaseToken](w, r, s.Logger, "lease.return")
	if !ok {
		return
	}
	if err := s.Robot.Lease().Return(r.Context(), token); err != nil {
		writeError(w, s.Logger, "lease.return", err)
		return
	}
	s.reply(w, "lease.return", nil)
}

// KeepAlive handles the POST /v1/lease/keepalive request.
func (s *Server) KeepAlive(w http.ResponseWriter, r *http.Request) {
	token, ok := decode[domain.LeaseToken](w, r, s.Logger, "lease.keepalive")
	if !ok {
		return
	}
	if err := s.Robot.Lease().KeepAlive(r.Context(), token); err != nil {
		writeError(w, s.Logger, "lease.keepalive", err)
		return
	}
	s.reply(w, "lease.keepalive", nil)
}

// Stand handles the POST /v1/commands/stand request.
func (s *Server) Stand(w http.ResponseWriter, r *http.Request) {
	params, ok := decode[domain.StandParams](w, r, s.Logger, "stand")
	if !ok {
		return
	}
	id, err := s.Robot.Command().Stand(r.Context(), params)
	if err != nil {
		writeError(w, s.Logger, "stand", err)
		return
	}
	s.reply(w, "stand", commandResponse{ID: id})
}

// Move handles the POST /v1/commands/move request.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[moveRequest](w, r, s.Logger, "move")
	if !ok {
		return
	}
	id, err := s.Robot.Command().Move(r.Context(), body.Goal, body.Params, body.End)
	if err != nil {
		writeError(w, s.Logger, "move", err)
		return
	}
	s.reply(w, "move", commandResponse{ID: id})
}

// Poll handles the GET /v1/commands/{id} request.
func (s *Server) Poll(w http.ResponseWriter, r *http.Request) {
	id := domain.CommandID(chi.URLParam(r, "id"))
	fb, err := s.Robot.Command().Poll(r.Context(), id)
	if err != nil {
		writeError(w, s.Logger, "poll", err)
		return
	}
	s.reply(w, "poll", fb)
}

// GetPose handles the GET /v1/pose?frame= request.
func (s *Server) GetPose(w http.ResponseWriter, r *http.Request) {
	frame := domain.Frame(r.URL.Query().Get("frame"))
	if frame == "" {
		frame = domain.FrameOdom
	}
	pose, err := s.Robot.State().Pose(r.Context(), frame)
	if err != nil {
		writeError(w, s.Logger, "pose", err)
		return
	}
	s.reply(w, "pose", pose)
}

// FetchFrames handles the POST /v1/images request.
func (s *Server) FetchFrames(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[framesRequest](w, r, s.Logger, "images")
	if !ok {
		return
	}
	frames, err := s.Robot.Images().FetchFrames(r.Context(), body.Sources)
	if err != nil {
		writeError(w, s.Logger, "images", err)
		return
	}
	s.reply(w, "images", framesResponse{Frames: frames})
}

// GetPower handles the GET /v1/power request.
func (s *Server) GetPower(w http.ResponseWriter, r *http.Request) {
	on, err := s.Robot.Power().IsPoweredOn(r.Context())
	if err != nil {
		writeError(w, s.Logger, "power", err)
		return
	}
	s.reply(w, "power", powerResponse{Powered: on})
}

// PowerOn handles the POST /v1/power/on request.
func (s *Server) PowerOn(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[powerRequest](w, r, s.Logger, "power.on")
	if !ok {
		return
	}
	if err := s.Robot.Power().PowerOn(r.Context(), body.Timeout); err != nil {
		writeError(w, s.Logger, "power.on", err)
		return
	}
	s.reply(w, "power.on", nil)
}

// PowerOff handles the POST /v1/power/off request.
func (s *Server) PowerOff(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[powerRequest](w, r, s.Logger, "power.off")
	if !ok {
		return
	}
	if err := s.Robot.Power().PowerOff(r.Context(), body.Graceful, body.Timeout); err != nil {
		writeError(w, s.Logger, "power.off", err)
		return
	}
	s.reply(w, "power.off", nil)
}

// AppendComment handles the POST /v1/log request.
func (s *Server) AppendComment(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[commentRequest](w, r, s.Logger, "log")
	if !ok {
		return
	}
	if err := s.Robot.Log().AppendComment(r.Context(), body.Text); err != nil {
		writeError(w, s.Logger, "log", err)
		return
	}
	s.reply(w, "log", nil)
}
