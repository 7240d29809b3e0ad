package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/strider/pkg/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sentinels lists the domain errors that cross the bridge, each with its status code.
// Order matters: the first match wins when an error wraps several.
var sentinels = []struct {
	err  error
	code codes.Code
}{
	{domain.ErrEstopActive, codes.FailedPrecondition},
	{domain.ErrLeaseUnavailable, codes.ResourceExhausted},
	{domain.ErrLeaseNotHeld, codes.PermissionDenied},
	{domain.ErrAuthenticationFailed, codes.Unauthenticated},
	{domain.ErrUnsupportedFormat, codes.InvalidArgument},
	{domain.ErrPowerFailed, codes.Aborted},
	{domain.ErrDecodeFailed, codes.DataLoss},
	{domain.ErrUnknownSource, codes.NotFound},
}

// CodeOf classifies err for the wire.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unknown
}

// httpStatus maps a code to the HTTP status carried alongside it.
func httpStatus(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted, codes.FailedPrecondition, codes.Aborted:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	c := CodeOf(err)
	if c == codes.Unknown || c == codes.Internal {
		logger.Error("bridge request failed", "op", op, "err", err)
	} else {
		logger.Debug("bridge request rejected", "op", op, "code", c, "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(c))
	_ = json.NewEncoder(w).Encode(errorBody{Code: c, Message: err.Error()})
}

// decodeError turns an error body back into an error that matches the original
// sentinel with errors.Is and carries the status for status.Code.
func decodeError(body errorBody) error {
	st := status.Error(body.Code, body.Message)
	for _, s := range sentinels {
		if s.code == body.Code {
			return fmt.Errorf("%w: %w", s.err, st)
		}
	}
	switch body.Code {
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, st)
	case codes.Canceled:
		return fmt.Errorf("%w: %w", context.Canceled, st)
	}
	return st
}
