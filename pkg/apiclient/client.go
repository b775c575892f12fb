// Package apiclient is the editor-side client for the PlantView API server.
//
// Like the server-side broker, it never returns raw transport errors to the
// caller: every Convert call yields a classified result the editor can
// display directly.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/engine"
)

// OutcomeHeader carries the classified outcome on every convert response.
const OutcomeHeader = "X-Plantview-Outcome"

const (
	convertPath = "/api/v1/convert"
	healthPath  = "/api/v1/health"
)

// Client talks to a PlantView API server.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for the server at baseURL. The timeout should exceed
// the server's own engine ceiling so server-side timeouts surface as
// classified results rather than a dropped connection.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Convert sends one conversion request and returns the classified result.
// Transport failures are folded into the taxonomy: an unreachable or
// unresponsive server yields NetworkError or Timeout, never a bare error.
func (c *Client) Convert(ctx context.Context, req convert.Request) convert.Result {
	res := c.convert(ctx, req)
	res.Version = req.Version
	return res
}

func (c *Client) convert(ctx context.Context, req convert.Request) convert.Result {
	body, err := json.Marshal(req)
	if err != nil {
		return convert.Result{Outcome: convert.SystemError, Message: convert.Message(convert.SystemError)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, bytes.NewReader(body))
	if err != nil {
		return convert.Result{Outcome: convert.SystemError, Message: convert.Message(convert.SystemError)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if engine.IsTimeout(err) {
			return convert.Result{Outcome: convert.Timeout, Message: convert.Message(convert.Timeout)}
		}
		return convert.Result{Outcome: convert.NetworkError, Message: convert.Message(convert.NetworkError)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return convert.Result{Outcome: convert.NetworkError, Message: convert.Message(convert.NetworkError)}
	}

	if resp.StatusCode == http.StatusOK {
		outcome := convert.Outcome(resp.Header.Get(OutcomeHeader))
		if outcome != convert.Success && outcome != convert.SyntaxError {
			outcome = convert.Success
		}
		res := convert.Result{
			Outcome: outcome,
			Payload: data,
			MIME:    resp.Header.Get("Content-Type"),
		}
		if outcome == convert.SyntaxError {
			res.Message = convert.Message(convert.SyntaxError)
		}
		return res
	}

	// Error responses carry {"error": message, "outcome": class} as JSON.
	var errBody struct {
		Error   string          `json:"error"`
		Outcome convert.Outcome `json:"outcome"`
	}
	if err := json.Unmarshal(data, &errBody); err != nil || errBody.Outcome == "" {
		return convert.Result{Outcome: convert.SystemError, Message: convert.Message(convert.SystemError)}
	}
	return convert.Result{Outcome: errBody.Outcome, Message: errBody.Error}
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
