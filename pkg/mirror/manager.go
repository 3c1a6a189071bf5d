// Package mirror fetches raw repository files through an ordered chain of
// CDN front-ends, falling back to the origin's raw-file service.
package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/depotkit/depotkit/internal/logger"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
)

// Template is a mirror URL template. The placeholders {repo}, {ref} and
// {path} are substituted per fetch.
type Template string

// URL renders the template for one file.
func (t Template) URL(repo, ref, path string) string {
	r := strings.NewReplacer("{repo}", repo, "{ref}", ref, "{path}", path)
	return r.Replace(string(t))
}

// DefaultTemplates is the production mirror chain. Order matters: CDN edges
// first, the origin's raw-file service as the final fallback.
var DefaultTemplates = []Template{
	"https://gcore.jsdelivr.net/gh/{repo}@{ref}/{path}",
	"https://fastly.jsdelivr.net/gh/{repo}@{ref}/{path}",
	"https://cdn.jsdelivr.net/gh/{repo}@{ref}/{path}",
	"https://ghproxy.org/https://raw.githubusercontent.com/{repo}/{ref}/{path}",
	"https://raw.githubusercontent.com/{repo}/{ref}/{path}",
}

// RetryPolicy declares how the mirror chain is walked: the whole chain is
// traversed Cycles times, each mirror gets up to AttemptsPerMirror tries
// with AttemptDelay between them, and CycleDelay separates full cycles.
type RetryPolicy struct {
	Cycles            int
	AttemptsPerMirror int
	AttemptDelay      time.Duration
	CycleDelay        time.Duration
}

// DefaultRetryPolicy mirrors the production behavior: two passes over the
// chain, two tries per mirror.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Cycles:            2,
		AttemptsPerMirror: 2,
		AttemptDelay:      500 * time.Millisecond,
		CycleDelay:        3 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Cycles <= 0 {
		p.Cycles = 1
	}
	if p.AttemptsPerMirror <= 0 {
		p.AttemptsPerMirror = 1
	}
	return p
}

// Manager walks an ordered mirror chain with bounded retries. It implements
// Fetcher.
type Manager struct {
	client    *http.Client
	templates []Template
	policy    RetryPolicy
	userAgent string
}

var _ Fetcher = (*Manager)(nil)

// NewManager creates a mirror fetcher with the default chain and policy.
func NewManager(timeout time.Duration, userAgent string) *Manager {
	return NewManagerWithTemplates(timeout, userAgent, DefaultTemplates, DefaultRetryPolicy())
}

// NewManagerWithTemplates creates a mirror fetcher with a custom chain and
// retry policy.
func NewManagerWithTemplates(timeout time.Duration, userAgent string, templates []Template, policy RetryPolicy) *Manager {
	if userAgent == "" {
		userAgent = "depotkit/1.0"
	}
	return &Manager{
		client:    &http.Client{Timeout: timeout},
		templates: templates,
		policy:    policy.normalized(),
		userAgent: userAgent,
	}
}

// Fetch walks the mirror chain per the retry policy. A 404 is authoritative
// absence on that specific mirror and stops its remaining attempts without
// consuming the attempt delay; any other failure is transient and retried.
func (m *Manager) Fetch(ctx context.Context, repo, ref, path string) ([]byte, error) {
	for cycle := 0; cycle < m.policy.Cycles; cycle++ {
		if cycle > 0 {
			logger.Warn("retrying all mirrors", logger.Fields{"path": path, "cycle": cycle + 1})
			if err := sleepCtx(ctx, m.policy.CycleDelay); err != nil {
				return nil, err
			}
		}
		for _, tpl := range m.templates {
			data, err := m.fetchMirror(ctx, tpl.URL(repo, ref, path))
			if err == nil {
				return data, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", path, pkgerrors.ErrNotFound)
}

// fetchMirror runs the per-mirror attempt loop against one rendered URL.
func (m *Manager) fetchMirror(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < m.policy.AttemptsPerMirror; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, status, err := m.attempt(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if status == http.StatusNotFound {
			// Authoritative absence on this mirror; the next mirror in the
			// chain may still have the file.
			logger.Debug("mirror reports not found", logger.Fields{"url": url})
			return nil, lastErr
		}
		logger.Warn("mirror attempt failed", logger.Fields{"url": url, "attempt": attempt + 1, "error": err.Error()})
		if attempt < m.policy.AttemptsPerMirror-1 {
			if err := sleepCtx(ctx, m.policy.AttemptDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// attempt issues one GET. The returned status is zero for transport errors.
func (m *Manager) attempt(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "connection error")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "failed to read response body")
	}
	return data, resp.StatusCode, nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
