// Package arxsapi talks to the ARXS platform: token exchange, master data
// reads, blob upload and task request submission.
package arxsapi

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

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
)

// Bodies larger than this are truncated when read.
const maxResponseSize = 32 << 20

var tracer = otel.Tracer("fm-taskrequest/arxsapi")

type Options struct {
	IdentityURL     string
	BaseURL         string
	APIKey          string
	TenantID        string
	RequestTimeout  time.Duration
	RequestIDHeader string
	BlobVersion     string
	// Transport defaults to a tuned *http.Transport.
	Transport http.RoundTripper
	Logger    logrus.FieldLogger
}

// Client holds everything needed before authentication. Calls that need the
// bearer token go through a Session.
type Client struct {
	identityURL     *url.URL
	baseURL         *url.URL
	apiKey          string
	tenantID        string
	timeout         time.Duration
	requestIDHeader string
	blobVersion     string
	transport       http.RoundTripper
	httpClient      *http.Client
	log             logrus.FieldLogger
}

func New(opts Options) (*Client, error) {
	identityURL, err := parseBaseURL("identity url", opts.IdentityURL)
	if err != nil {
		return nil, err
	}
	baseURL, err := parseBaseURL("base url", opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("api key is required")
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	blobVersion := strings.TrimSpace(opts.BlobVersion)
	if blobVersion == "" {
		blobVersion = "2020-04-08"
	}

	return &Client{
		identityURL:     identityURL,
		baseURL:         baseURL,
		apiKey:          strings.TrimSpace(opts.APIKey),
		tenantID:        strings.TrimSpace(opts.TenantID),
		timeout:         timeout,
		requestIDHeader: opts.RequestIDHeader,
		blobVersion:     blobVersion,
		transport:       transport,
		httpClient:      &http.Client{Transport: transport},
		log:             logger.WithField("component", "arxsapi"),
	}, nil
}

func parseBaseURL(name, raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid %s: %q", name, raw)
	}
	return u, nil
}

// resolve appends an already escaped path to base.
func (c *Client) resolve(base *url.URL, escapedPath string, query url.Values) *url.URL {
	u := *base
	joined := strings.TrimRight(u.EscapedPath(), "/") + escapedPath
	if p, err := url.PathUnescape(joined); err == nil {
		u.Path, u.RawPath = p, joined
	} else {
		u.Path, u.RawPath = joined, ""
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return &u
}

type call struct {
	stage    failure.Stage
	endpoint string
	method   string
	url      *url.URL
	// Reported in errors and logs instead of the real path when set.
	path   string
	header http.Header

	jsonBody      any
	rawBody       io.Reader
	contentLength int64
}

func (cl call) displayPath() string {
	if cl.path != "" {
		return cl.path
	}
	return cl.url.Path
}

// do executes one request under its own timeout. A 2xx body is decoded into
// out (*[]byte receives the raw body); anything else becomes a *failure.Error
// for the call's stage.
func (c *Client) do(ctx context.Context, hc *http.Client, cl call, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "arxsapi."+cl.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.path", cl.displayPath()),
		),
	)
	defer span.End()

	started := time.Now()
	status, err := c.roundTrip(ctx, hc, cl, out)
	recordAPIRequest(cl.endpoint, status, err, time.Since(started))

	entry := c.log.WithFields(logrus.Fields{
		"stage":    cl.stage,
		"endpoint": cl.endpoint,
		"path":     cl.displayPath(),
		"status":   status,
		"duration": time.Since(started).String(),
	})
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.WithError(err).Debug("arxs call failed")
		return err
	}
	entry.Debug("arxs call ok")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, cl call, out any) (int, error) {
	fail := func(status int, err error) (int, error) {
		return status, &failure.Error{Stage: cl.stage, Path: cl.displayPath(), StatusCode: status, Err: err}
	}

	body := cl.rawBody
	if cl.jsonBody != nil {
		b, err := json.Marshal(cl.jsonBody)
		if err != nil {
			return fail(0, errors.Wrap(err, "json marshal request"))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url.String(), body)
	if err != nil {
		return fail(0, errors.Wrap(err, "http request"))
	}
	if cl.rawBody != nil {
		req.ContentLength = cl.contentLength
	}
	req.Header.Set("Accept", "application/json")
	if cl.jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(0, errors.Wrapf(err, "timed out after %s", c.timeout))
		}
		return fail(0, errors.Wrap(err, "http do"))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(resp.StatusCode, errors.Wrap(err, "http read"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fe := &failure.Error{
			Stage:      cl.stage,
			Path:       cl.displayPath(),
			StatusCode: resp.StatusCode,
			Message:    failure.RemoteMessage(respBody),
		}
		if fe.Message == "" {
			fe.Message = http.StatusText(resp.StatusCode)
		}
		if json.Valid(respBody) {
			fe.Payload = append(json.RawMessage(nil), respBody...)
		}
		return resp.StatusCode, fe
	}

	switch dst := out.(type) {
	case nil:
	case *[]byte:
		*dst = respBody
	default:
		if err := json.Unmarshal(respBody, out); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("json unmarshal response: %w", err))
		}
	}
	return resp.StatusCode, nil
}
