package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
)

// Connector implements ports.Connector by reaching a bridge Server.
type Connector struct {
	// HTTPClient is used for every request. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Connect checks that the bridge at host is healthy and returns a client for it.
// host may be a bare host:port or a full http(s) URL.
func (c *Connector) Connect(ctx context.Context, host string) (ports.Robot, error) {
	base := host
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid bridge address %q: %w", host, err)
	}

	client := &Client{base: strings.TrimRight(base, "/"), http: c.HTTPClient}
	if client.http == nil {
		client.http = http.DefaultClient
	}
	var health healthResponse
	if err := client.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, fmt.Errorf("bridge at %s is not reachable: %w", host, err)
	}
	return client, nil
}

// Client implements ports.Robot against a bridge Server.
type Client struct {
	base string
	http *http.Client
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// Failed requests are decoded back into domain errors.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
			return fmt.Errorf("request %s %s failed with status %d", method, path, resp.StatusCode)
		}
		return decodeError(eb)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth", authRequest{Username: username, Password: password}, nil)
}

func (c *Client) IsEstopped(ctx context.Context) (bool, error) {
	var resp estopResponse
	err := c.do(ctx, http.MethodGet, "/v1/estop", nil, &resp)
	return resp.Estopped, err
}

func (c *Client) Lease() ports.LeaseService     { return (*leaseClient)(c) }
func (c *Client) Command() ports.CommandService { return (*commandClient)(c) }
func (c *Client) State() ports.StateService     { return (*stateClient)(c) }
func (c *Client) Images() ports.ImageService    { return (*imageClient)(c) }
func (c *Client) Power() ports.PowerService     { return (*powerClient)(c) }
func (c *Client) Log() ports.LogService         { return (*logClient)(c) }

type leaseClient Client

func (l *leaseClient) Take(ctx context.Context) (domain.LeaseToken, error) {
	var token domain.LeaseToken
	err := (*Client)(l).do(ctx, http.MethodPost, "/v1/lease/take", struct{}{}, &token)
	return token, err
}

func (l *leaseClient) Return(ctx context.Context, token domain.LeaseToken) error {
	return (*Client)(l).do(ctx, http.MethodPost, "/v1/lease/return", token, nil)
}

func (l *leaseClient) KeepAlive(ctx context.Context, token domain.LeaseToken) error {
	return (*Client)(l).do(ctx, http.MethodPost, "/v1/lease/keepalive", token, nil)
}

type commandClient Client

func (c *commandClient) Stand(ctx context.Context, params domain.StandParams) (domain.CommandID, error) {
	var resp commandResponse
	err := (*Client)(c).do(ctx, http.MethodPost, "/v1/commands/stand", params, &resp)
	return resp.ID, err
}

func (c *commandClient) Move(ctx context.Context, goal domain.GoalTransform, params domain.MobilityParams, end time.Time) (domain.CommandID, error) {
	var resp commandResponse
	err := (*Client)(c).do(ctx, http.MethodPost, "/v1/commands/move", moveRequest{Goal: goal, Params: params, End: end}, &resp)
	return resp.ID, err
}

func (c *commandClient) Poll(ctx context.Context, id domain.CommandID) (domain.CommandFeedback, error) {
	var fb domain.CommandFeedback
	err := (*Client)(c).do(ctx, http.MethodGet, "/v1/commands/"+url.PathEscape(string(id)), nil, &fb)
	return fb, err
}

type stateClient Client

func (s *stateClient) Pose(ctx context.Context, frame domain.Frame) (domain.Pose, error) {
	var pose domain.Pose
	err := (*Client)(s).do(ctx, http.MethodGet, "/v1/pose?frame="+url.QueryEscape(string(frame)), nil, &pose)
	return pose, err
}

type imageClient Client

func (i *imageClient) FetchFrames(ctx context.Context, sources []string) ([]domain.SensorFrame, error) {
	var resp framesResponse
	err := (*Client)(i).do(ctx, http.MethodPost, "/v1/images", framesRequest{Sources: sources}, &resp)
	return resp.Frames, err
}

type powerClient Client

func (p *powerClient) PowerOn(ctx context.Context, timeout time.Duration) error {
	return (*Client)(p).do(ctx, http.MethodPost, "/v1/power/on", powerRequest{Timeout: timeout}, nil)
}

func (p *powerClient) PowerOff(ctx context.Context, graceful bool, timeout time.Duration) error {
	return (*Client)(p).do(ctx, http.MethodPost, "/v1/power/off", powerRequest{Graceful: graceful, Timeout: timeout}, nil)
}

func (p *powerClient) IsPoweredOn(ctx context.Context) (bool, error) {
	var resp powerResponse
	err := (*Client)(p).do(ctx, http.MethodGet, "/v1/power", nil, &resp)
	return resp.Powered, err
}

type logClient Client

func (l *logClient) AppendComment(ctx context.Context, text string) error {
	return (*Client)(l).do(ctx, http.MethodPost, "/v1/log", commentRequest{Text: text}, nil)
}
