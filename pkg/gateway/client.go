// Package gateway is the only component that talks to the OpenPaw backend.
// It issues REST calls, decodes their JSON bodies and maps failures to *Error.
// It never retries and never touches local state.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/openpaw/pawdeck/pkg/metrics"
	"github.com/openpaw/pawdeck/pkg/models"
)

const defaultUserAgent = "pawdeck/1.0"

type Client struct {
	baseURL    string
	timeout    time.Duration
	transport  *http.Client
	httpClient *resty.Client
	metrics    *metrics.Metrics

	Tasks         Resource[models.Task]
	Agents        Resource[models.Agent]
	Conversations Resource[models.Conversation]
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.transport = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 75 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport != nil {
		c.httpClient = resty.NewWithClient(c.transport)
	} else {
		c.httpClient = resty.New()
	}
	c.httpClient.
		SetBaseURL(c.baseURL).
		SetHeader("User-Agent", defaultUserAgent).
		SetTimeout(c.timeout)

	c.httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.metrics.ObserveRequest(opFromContext(resp.Request.Context()), resp.Request.Method, resp.StatusCode(), resp.Time())
		return nil
	})
	c.httpClient.OnError(func(req *resty.Request, _ error) {
		c.metrics.ObserveRequest(opFromContext(req.Context()), req.Method, 0, time.Since(req.Time))
	})

	c.Tasks = NewResource[models.Task](c, "/api/tasks")
	c.Agents = NewResource[models.Agent](c, "/api/agents")
	c.Conversations = NewResource[models.Conversation](c, "/api/chat/conversations")
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type opKey struct{}

func withOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

func opFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if op, ok := ctx.Value(opKey{}).(string); ok {
		return op
	}
	return "unknown"
}

// call executes one request and decodes the body into out when out is not nil.
func (c *Client) call(ctx context.Context, op, method, path string, build func(*resty.Request), out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.httpClient.R().
		SetContext(withOp(ctx, op)).
		SetHeader("Accept", "application/json")
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &Error{
			Kind:    KindNetwork,
			Op:      op,
			Message: networkMessage(ctx, err),
			Err:     errors.Wrapf(err, "%s %s", method, path),
		}
	}
	if resp.IsError() {
		return &Error{
			Kind:    KindServer,
			Op:      op,
			Status:  resp.StatusCode(),
			Message: serverMessage(resp.StatusCode(), resp.Body()),
			Err:     errors.Errorf("%s %s: %s", method, path, resp.Status()),
		}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{
			Kind:    KindServer,
			Op:      op,
			Status:  resp.StatusCode(),
			Message: "Malformed response from server",
			Err:     errors.Wrapf(err, "decode %s %s", method, path),
		}
	}
	return nil
}

func networkMessage(ctx context.Context, err error) string {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	return "Network error: " + errors.Cause(err).Error()
}

func jsonBody(body any) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}
