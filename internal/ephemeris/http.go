package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
)

// HTTP queries a remote ephemeris service.
//
//	GET {base}/next-new-moon?at=2020-01-01T00:00:00Z
//	{"instant": "2020-01-24T21:42:00Z"}
//
// Failures are returned as-is; the answers are deterministic so a retry
// with the same input has nothing to gain.
type HTTP struct {
	Client *http.Client
	base   *url.URL
	log    *slog.Logger
}

// phaseResponse is the JSON body returned by the service.
type phaseResponse struct {
	Instant time.Time `json:"instant"`
}

// NewHTTP validates baseURL and creates a client with configured timeouts.
func NewHTTP(baseURL string) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	// Security check: strictly HTTP or HTTPS.
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Strip query parameters from the logged URL, they might contain tokens.
	safeURL := u.Scheme + "://" + u.Host + u.Path

	return &HTTP{
		Client: &http.Client{Timeout: config.HTTPTimeout},
		base:   u,
		log: slog.With(
			slog.String(config.LogKeyComponent, config.CompEphemeris),
			slog.String(config.LogKeyURL, safeURL),
		),
	}, nil
}

func (h *HTTP) Name() string { return "http:" + h.base.Host }

func (h *HTTP) PreviousNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	inst, err := h.query(ctx, config.EphemPathPreviousNew, t)
	if err != nil {
		return time.Time{}, err
	}
	if !inst.Before(t) {
		return time.Time{}, fmt.Errorf("%w: %s returned %s for %s", ErrContract,
			config.EphemPathPreviousNew, inst.Format(time.RFC3339), t.Format(time.RFC3339))
	}
	return inst, nil
}

func (h *HTTP) NextNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return h.queryAfter(ctx, config.EphemPathNextNew, t)
}

func (h *HTTP) NextFullMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return h.queryAfter(ctx, config.EphemPathNextFull, t)
}

func (h *HTTP) queryAfter(ctx context.Context, op string, t time.Time) (time.Time, error) {
	inst, err := h.query(ctx, op, t)
	if err != nil {
		return time.Time{}, err
	}
	if !inst.After(t) {
		return time.Time{}, fmt.Errorf("%w: %s returned %s for %s", ErrContract,
			op, inst.Format(time.RFC3339), t.Format(time.RFC3339))
	}
	return inst, nil
}

// query performs one GET and decodes the instant.
func (h *HTTP) query(ctx context.Context, op string, t time.Time) (time.Time, error) {
	u := *h.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + op
	q := u.Query()
	q.Set(config.EphemQueryAt, t.UTC().Format(time.RFC3339Nano))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)

	resp, err := h.Client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrGatewayQuery, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		h.log.Warn("Ephemeris service returned error status",
			slog.Int(config.LogKeyStatus, resp.StatusCode),
			slog.String(config.LogKeyKind, op),
		)
		return time.Time{}, fmt.Errorf("%s: unexpected status: %d %s", config.ErrGatewayQuery, resp.StatusCode, resp.Status)
	}

	var body phaseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, config.MaxHTTPResponseSize)).Decode(&body); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrDecodeResponse, err)
	}
	if body.Instant.IsZero() {
		return time.Time{}, fmt.Errorf("%s: missing instant", config.ErrDecodeResponse)
	}

	h.log.Debug("Ephemeris answer",
		slog.String(config.LogKeyKind, op),
		slog.Time(config.LogKeyInstant, body.Instant),
	)
	return body.Instant.UTC(), nil
}
