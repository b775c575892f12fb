package engine

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/plantview/pkg/observability"
)

// syntaxErrorHeader is set by the engine on 200 responses whose body is an
// error image rendered from a diagram syntax problem.
const syntaxErrorHeader = "X-Plantuml-Diagram-Error"

// Output is the result of a successful engine round trip.
// SyntaxError distinguishes a rendered error image from a real diagram;
// both carry image bytes.
type Output struct {
	Data        []byte
	MIME        string
	SyntaxError bool
	Message     string
}

// Client calls the external rendering engine over HTTP.
//
// The client holds no per-request state and is safe for concurrent use.
// Timeouts are controlled by the caller's context; the transport keeps
// connections alive sized to the expected parallelism so repeated renders
// stay within the latency budget.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an engine client for the given base URL.
// maxConns bounds idle keep-alive connections and should match the
// concurrency limit enforced by the broker.
func NewClient(baseURL string, maxConns int) *Client {
	if maxConns <= 0 {
		maxConns = 4
	}
	transport := &http.Transport{
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: maxConns,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http:    &http.Client{Transport: transport},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the engine base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Render converts diagram source to an image.
//
// The source is sent as the raw request body to POST {base}/{format}.
// Returns:
//   - Output with image bytes on 200, with SyntaxError set when the engine
//     rendered an error image instead of a diagram
//   - *ConnectError when the connection could not be established
//   - *StatusError for non-2xx responses
//   - the context error when the deadline expires
func (c *Client) Render(ctx context.Context, format Format, source string) (*Output, error) {
	url := c.baseURL + "/" + string(format)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	observability.Engine().OnRequest(ctx, string(format), len(source))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		err = classifyTransport(err)
		observability.Engine().OnError(ctx, string(format), err)
		return nil, err
	}
	defer resp.Body.Close()

	observability.Engine().OnResponse(ctx, string(format), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Data: data,
		MIME: format.MIME(),
	}
	if msg := resp.Header.Get(syntaxErrorHeader); msg != "" {
		out.SyntaxError = true
		out.Message = msg
	}
	return out, nil
}
