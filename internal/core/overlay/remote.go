package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/logger"
)

// Trender turns a bucket-ordered vector into a same-length trend vector
type Trender interface {
	Trend(ctx context.Context, values []float64) ([]float64, error)
}

// Detector returns the anomalous buckets of a bucket-ordered vector, sorted by date
type Detector interface {
	Detect(ctx context.Context, dates []time.Time, values []float64) ([]Anomaly, error)
}

// Linear is the in-process Trender backed by LeastSquares
type Linear struct{ Formula Formula }

// Trend fits every value at x = position+1
func (l Linear) Trend(_ context.Context, values []float64) ([]float64, error) {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	slope, intercept := LeastSquares(xs, values, l.Formula)
	out := make([]float64, len(values))
	for i := range out {
		out[i] = slope*xs[i] + intercept
	}
	return out, nil
}

const (
	defaultRemoteTimeout = 10 * time.Second
	defaultRemoteRetries = 3
	defaultRetryBase     = 250 * time.Millisecond
)

// RemoteOptions configures RemoteClient
type RemoteOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// RemoteClient calls an external statistics service for trends and anomalies
type RemoteClient struct {
	http *http.Client
	opts RemoteOptions
	log  logger.Logger
}

// NewRemote builds a client; BaseURL is required
func NewRemote(o RemoteOptions) (*RemoteClient, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		return nil, perr.InvalidArgf("overlay: base url is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultRemoteTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultRemoteRetries
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &RemoteClient{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("overlay"),
	}, nil
}

type trendReq struct {
	Values []float64 `json:"values"`
}

type trendResp struct {
	Values []float64 `json:"values"`
}

type detectReq struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

type detectResp struct {
	Anomalies []Anomaly `json:"anomalies"`
}

// Trend posts values to {base}/trend
func (c *RemoteClient) Trend(ctx context.Context, values []float64) ([]float64, error) {
	var out trendResp
	if err := c.post(ctx, "/trend", trendReq{Values: values}, &out); err != nil {
		return nil, err
	}
	if len(out.Values) != len(values) {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "overlay: trend returned %d values for %d buckets", len(out.Values), len(values))
	}
	return out.Values, nil
}

// Detect posts the vector to {base}/anomalies
func (c *RemoteClient) Detect(ctx context.Context, dates []time.Time, values []float64) ([]Anomaly, error) {
	var out detectResp
	if err := c.post(ctx, "/anomalies", detectReq{Dates: dates, Values: values}, &out); err != nil {
		return nil, err
	}
	return out.Anomalies, nil
}

// post retries transport errors, 429 and 5xx with exponential backoff
func (c *RemoteClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "overlay: encode request")
	}
	url := c.opts.BaseURL + path

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.RetryBase
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.opts.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(perr.Wrap(err, perr.ErrorCodeUnknown, "overlay: new request"))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("overlay transport error")
			return perr.Wrap(err, perr.ErrorCodeUnavailable, "overlay: request failed")
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, resp.Body)
			c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Int("attempt", attempt).Msg("overlay retryable status")
			return perr.Newf(perr.ErrorCodeUnavailable, "overlay: %s returned %d", path, resp.StatusCode)
		case resp.StatusCode >= 300:
			_, _ = io.Copy(io.Discard, resp.Body)
			return backoff.Permanent(perr.Newf(perr.ErrorCodeInvalidArgument, "overlay: %s returned %d", path, resp.StatusCode))
		}

		if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out); err != nil {
			return backoff.Permanent(perr.Wrap(err, perr.ErrorCodeJSON, "overlay: decode response"))
		}
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		c.log.Debug().Err(err).Str("path", path).Int("attempts", attempt).Msg("overlay call failed")
		return err
	}
	return nil
}
