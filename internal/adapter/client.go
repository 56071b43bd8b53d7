package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetries       = 2
	initialRetryInterval = 250 * time.Millisecond
)

// client is the shared HTTP collaborator client. Every network-backed
// adapter goes through it, so timeout and retry policy live in one place
// instead of being duplicated per call site.
type client struct {
	tag     domain.SourceTag
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	retries uint64
	log     *logrus.Entry
}

func newClient(tag domain.SourceTag, baseURL string, timeout time.Duration, retries int, log *logrus.Logger) *client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 0 {
		retries = defaultRetries
	}
	return &client{
		tag:     tag,
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: timeout,
		retries: uint64(retries),
		log:     log.WithField("source", tag),
	}
}

// getJSON fetches baseURL+path and decodes the body into out. The adapter's
// timeout bounds the whole operation including retries; transient failures
// retry with exponential backoff, unparseable bodies and client-side HTTP
// statuses do not. The returned error is always an *Error.
func (c *client) getJSON(ctx context.Context, path string, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return newError(c.tag, KindUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(newError(c.tag, KindUnavailable, err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return newError(c.tag, classifyTransport(err), err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return newError(c.tag, KindUnavailable, fmt.Errorf("upstream status %d", resp.StatusCode))
		default:
			return backoff.Permanent(newError(c.tag, KindUnavailable, fmt.Errorf("upstream status %d", resp.StatusCode)))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return newError(c.tag, classifyTransport(err), err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(newError(c.tag, KindMalformed, err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryInterval
	bo.MaxElapsedTime = c.timeout

	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.retries), ctx))
	if err != nil {
		ae := newError(c.tag, classifyTransport(err), err)
		c.log.WithError(ae.Err).WithField("kind", ae.Kind).Warn("fetch failed")
		return ae
	}
	return nil
}

// classifyTransport maps low-level transport errors onto the error taxonomy.
func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}
