package http

import (
	"time"

	"github.com/aretw0/strider/pkg/domain"
)

// Request and response bodies of the bridge. Durations travel as nanoseconds.

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type estopResponse struct {
	Estopped bool `json:"estopped"`
}

type commandResponse struct {
	ID domain.CommandID `json:"id"`
}

type moveRequest struct {
	Goal   domain.GoalTransform  `json:"goal"`
	Params domain.MobilityParams `json:"params"`
	End    time.Time             `json:"end"`
}

type framesRequest struct {
	Sources []string `json:"sources"`
}

type framesResponse struct {
	Frames []domain.SensorFrame `json:"frames"`
}

type powerRequest struct {
	Graceful bool          `json:"graceful,omitempty"`
	Timeout  time.Duration `json:"timeout"`
}

type powerResponse struct {
	Powered bool `json:"powered"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status string `json:"status"`
}
