package convert

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/plantview/pkg/cache"
	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/engine"
	"github.com/matzehuels/plantview/pkg/httputil"
	"github.com/matzehuels/plantview/pkg/observability"
)

// Renderer is the rendering engine surface the broker depends on.
// *engine.Client implements it.
type Renderer interface {
	Render(ctx context.Context, format engine.Format, source string) (*engine.Output, error)
}

// Options configures a Broker. Zero values fall back to defaults.
type Options struct {
	// MaxContentChars is the validator ceiling (default document.DefaultMaxChars).
	MaxContentChars int

	// ConcurrencyLimit bounds parallel requests toward the engine (default 4).
	ConcurrencyLimit int

	// AdmissionWait bounds how long a request waits for a permit before
	// failing fast as overloaded (default 1s).
	AdmissionWait time.Duration

	// Timeout is the hard ceiling for one engine call (default 30s).
	Timeout time.Duration

	// RetryBackoff is the fixed delay before the single connect retry
	// (default 100ms).
	RetryBackoff time.Duration

	// Cache stores rendered artifacts keyed by source digest and format.
	// Nil disables caching.
	Cache cache.Cache

	// Logger receives one structured record per conversion.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.MaxContentChars <= 0 {
		o.MaxContentChars = document.DefaultMaxChars
	}
	if o.ConcurrencyLimit <= 0 {
		o.ConcurrencyLimit = 4
	}
	if o.AdmissionWait <= 0 {
		o.AdmissionWait = time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 100 * time.Millisecond
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Broker mediates between conversion requests and the rendering engine.
//
// The engine is a single logical instance, so the broker gates calls through
// a counting semaphore sized to the engine's safe parallel capacity. The
// permit is released on every exit path. Safe for concurrent use.
type Broker struct {
	renderer     Renderer
	sem          *semaphore.Weighted
	maxChars     int
	admission    time.Duration
	timeout      time.Duration
	retryBackoff time.Duration
	cache        cache.Cache
	logger       *log.Logger
}

// New creates a broker around the given renderer.
func New(r Renderer, opts Options) *Broker {
	opts.setDefaults()
	return &Broker{
		renderer:     r,
		sem:          semaphore.NewWeighted(int64(opts.ConcurrencyLimit)),
		maxChars:     opts.MaxContentChars,
		admission:    opts.AdmissionWait,
		timeout:      opts.Timeout,
		retryBackoff: opts.RetryBackoff,
		cache:        opts.Cache,
		logger:       opts.Logger,
	}
}

// MaxContentChars returns the validator ceiling the broker enforces.
func (b *Broker) MaxContentChars() int { return b.maxChars }

// Convert runs one conversion: re-validate, admit, render, classify.
// It always returns a classified Result, never a raw error, and emits one
// structured log record per invocation.
func (b *Broker) Convert(ctx context.Context, req Request) Result {
	start := time.Now()
	observability.Convert().OnConvertStart(ctx, string(req.Format), len(req.Content))

	res := b.convert(ctx, req)
	res.Version = req.Version

	duration := time.Since(start)
	b.logger.Info("conversion",
		"outcome", res.Outcome,
		"format", req.Format,
		"input_bytes", len(req.Content),
		"output_bytes", len(res.Payload),
		"duration", duration.Round(time.Millisecond))
	observability.Convert().OnConvertComplete(ctx, string(req.Format), string(res.Outcome), len(res.Payload), duration)

	return res
}

func (b *Broker) convert(ctx context.Context, req Request) Result {
	// Defense in depth: the client validates too, but never trust it.
	if err := document.Validate(req.Content, b.maxChars); err != nil {
		var verr *document.ValidationError
		errors.As(err, &verr)
		return classifyValidation(verr)
	}

	key := cache.ArtifactKey(req.Content, string(req.Format))
	if data, hit, err := b.cache.Get(ctx, key); err == nil && hit {
		observability.Convert().OnCacheHit(ctx, string(req.Format))
		return Result{Outcome: Success, Payload: data, MIME: req.Format.MIME()}
	}

	// Bounded admission: fail fast as overloaded instead of queuing
	// indefinitely against a saturated engine.
	actx, cancel := context.WithTimeout(ctx, b.admission)
	defer cancel()
	if err := b.sem.Acquire(actx, 1); err != nil {
		return Result{Outcome: SystemError, Message: msgOverloaded}
	}
	defer b.sem.Release(1)

	rctx, cancelRender := context.WithTimeout(ctx, b.timeout)
	defer cancelRender()

	out, err := b.render(rctx, req)
	res := classifyRender(out, err)

	if res.Outcome == Success {
		_ = b.cache.Set(ctx, key, res.Payload, cache.TTLArtifact)
	}
	return res
}

// render calls the engine, retrying exactly once after a fixed backoff and
// only for connection-establishment failures. Timeouts and engine-reported
// errors are deterministic and never retried.
func (b *Broker) render(ctx context.Context, req Request) (*engine.Output, error) {
	var out *engine.Output
	err := httputil.Retry(ctx, 2, b.retryBackoff, func() error {
		o, rerr := b.renderer.Render(ctx, req.Format, req.Content)
		if rerr != nil {
			if engine.IsConnectError(rerr) {
				// Pre-retry classification, surfaced in logs only.
				b.logger.Warn("engine unreachable", "outcome", NetworkError, "err", rerr)
				return &httputil.RetryableError{Err: rerr}
			}
			return rerr
		}
		out = o
		return nil
	})
	if err != nil {
		// Unwrap the retry marker so classification sees the engine error.
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, err
	}
	return out, nil
}
