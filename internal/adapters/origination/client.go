package origination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tarit-loan/internal/pkg/ids"
)

// ErrTokenAcquisition marks a credential failure before the first dispatch.
// It is the only error Request ever returns.
var ErrTokenAcquisition = errors.New("origination token acquisition failed")

const configErrorMessage = "origination service is not configured (missing base URL)"

// Options configure the outbound transport
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RPS of zero disables throttling
	RPS   float64
	Burst int
}

// RequestOptions describe a single call
type RequestOptions struct {
	Method   string
	Body     any
	Headers  map[string]string
	SkipAuth bool
}

// Requester is the call surface consumed by the typed API
type Requester interface {
	Request(ctx context.Context, endpoint string, opts RequestOptions) (Envelope, error)
}

// Client sends authenticated requests and normalizes every outcome into an Envelope.
type Client struct {
	rest    *resty.Client
	tokens  TokenSource
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewClient builds the request wrapper around a token source
func NewClient(opts Options, tokens TokenSource) *Client {
	c := &Client{
		rest:   newRestClient(opts),
		tokens: tokens,
		log:    logrus.WithField("component", "origination"),
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c
}

func newRestClient(opts Options) *resty.Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetLogger(logrus.WithField("component", "resty"))
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return rc
}

type attempt int

const (
	firstAttempt attempt = iota
	retryAttempt
)

// Request issues one call. An expired credential ("401" or a "token expired"
// message) is refreshed and the identical request reissued exactly once; the
// retry result is returned as is. Transport failures and unparseable bodies
// come back as "500" envelopes.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (Envelope, error) {
	if c.rest.BaseURL == "" {
		return Failure(configErrorMessage), nil
	}

	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}

	var payload []byte
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return Failure(fmt.Sprintf("encode request body: %v", err)), nil
		}
		payload = b
	}

	reqID := ids.NewRequestID()
	log := c.log.WithFields(logrus.Fields{"endpoint": endpoint, "request_id": reqID})

	var token string
	if !opts.SkipAuth {
		cred, err := c.tokens.EnsureValidToken(ctx)
		if err != nil {
			log.WithError(err).Warn("credential unavailable")
			return Envelope{}, fmt.Errorf("%w: %w", ErrTokenAcquisition, err)
		}
		token = cred.Value
	}

	for at := firstAttempt; ; at = retryAttempt {
		env := c.dispatch(ctx, method, endpoint, payload, opts.Headers, token, reqID)

		if at == retryAttempt || opts.SkipAuth || !env.IsAuthExpired() {
			if !env.IsSuccess() {
				log.WithFields(logrus.Fields{"status": env.Status, "retried": at == retryAttempt}).
					Info("origination call not successful")
			}
			return env, nil
		}

		authRetriesTotal.Inc()
		log.Info("credential expired, refreshing once")
		c.tokens.Invalidate()
		cred, err := c.tokens.EnsureValidToken(ctx)
		if err != nil {
			log.WithError(err).Warn("credential refresh failed")
			return Failure(fmt.Sprintf("token refresh failed: %v", err)), nil
		}
		token = cred.Value
	}
}

func (c *Client) dispatch(ctx context.Context, method, endpoint string, payload []byte, headers map[string]string, token, reqID string) Envelope {
	start := time.Now()
	env := c.send(ctx, method, endpoint, payload, headers, token, reqID)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(endpoint, env.Status).Inc()
	return env
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, headers map[string]string, token, reqID string) Envelope {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Failure(fmt.Sprintf("origination request throttled: %v", err))
		}
	}

	req := c.rest.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	req.SetHeader("Content-Type", "application/json").
		SetHeader(HeaderRequestID, reqID)
	if token != "" {
		req.SetHeader(HeaderAPIKey, token)
	}
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		err = errors.Wrap(err, "origination service unreachable")
		return Failure(err.Error())
	}

	env, err := DecodeEnvelope(resp.Body())
	if err != nil {
		return Failure(fmt.Sprintf("unexpected response from origination service (HTTP %d)", resp.StatusCode()))
	}
	return env
}
