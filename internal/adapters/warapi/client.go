// Package warapi implements the MapDataSource port against the public
// Foxhole War API.
package warapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
	"github.com/tenth-speed-writer/PFLTK/internal/version"
)

// Shards maps shard names to their API roots.
var Shards = map[string]string{
	"live_1": "https://war-service-live.foxholeservices.com/api/worldconquest/",
	"live_2": "https://war-service-live-2.foxholeservices.com/api/worldconquest/",
	"live_3": "https://war-service-live-3.foxholeservices.com/api/worldconquest/",
	"dev":    "https://war-service-dev.foxholeservices.com/api/worldconquest/",
}

// Config controls how the client reaches the API.
type Config struct {
	Shard             string
	BaseURL           string // overrides Shard when set
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// ResolveBaseURL returns the API root, with a trailing slash.
func (c Config) ResolveBaseURL() (string, error) {
	base := c.BaseURL
	if base == "" {
		var ok bool
		base, ok = Shards[c.Shard]
		if !ok {
			return "", apperr.New(apperr.InvalidArgument, "unknown war api shard %q", c.Shard)
		}
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

// Client fetches war state over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clock.Clock
	logger     logrus.FieldLogger
}

var _ secondary.MapDataSource = (*Client)(nil)

// NewClient creates a War API client.
func NewClient(cfg Config, clk clock.Clock, logger logrus.FieldLogger) (*Client, error) {
	base, err := cfg.ResolveBaseURL()
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    base,
		httpClient: newHTTPClient(cfg.Timeout),
		limiter:    rate.NewLimiter(limit, burst),
		clock:      clk,
		logger:     logger,
	}, nil
}

type warResponse struct {
	WarNumber int `json:"warNumber"`
}

type staticMapResponse struct {
	MapTextItems []struct {
		Text          string  `json:"text"`
		X             float64 `json:"x"`
		Y             float64 `json:"y"`
		MapMarkerType string  `json:"mapMarkerType"`
	} `json:"mapTextItems"`
}

type dynamicMapResponse struct {
	MapItems []struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		IconType int     `json:"iconType"`
		Flags    int     `json:"flags"`
	} `json:"mapItems"`
}

// FetchCurrentWar returns the current war number and when it was fetched.
func (c *Client) FetchCurrentWar(ctx context.Context) (int, time.Time, error) {
	var resp warResponse
	if err := c.get(ctx, "war", &resp); err != nil {
		return 0, time.Time{}, err
	}
	return resp.WarNumber, c.clock.Now(), nil
}

// FetchHexNames returns the names of every active hex.
func (c *Client) FetchHexNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "maps", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FetchLabels returns a hex's text labels passing filter.
func (c *Client) FetchLabels(ctx context.Context, hex string, filter secondary.LabelFilter) ([]secondary.LabelData, error) {
	if !filter.Valid() {
		return nil, apperr.New(apperr.InvalidArgument, "label filter must be Major, Minor or Both; got %q", filter)
	}

	var resp staticMapResponse
	if err := c.get(ctx, "maps/"+url.PathEscape(hex)+"/static", &resp); err != nil {
		return nil, err
	}

	labels := make([]secondary.LabelData, 0, len(resp.MapTextItems))
	for _, item := range resp.MapTextItems {
		if !filter.Match(item.MapMarkerType) {
			continue
		}
		labels = append(labels, secondary.LabelData{
			Text: item.Text,
			X:    item.X,
			Y:    item.Y,
			Kind: item.MapMarkerType,
		})
	}
	return labels, nil
}

// FetchIcons returns a hex's public map icons.
func (c *Client) FetchIcons(ctx context.Context, hex string) ([]secondary.IconData, error) {
	var resp dynamicMapResponse
	if err := c.get(ctx, "maps/"+url.PathEscape(hex)+"/dynamic/public", &resp); err != nil {
		return nil, err
	}

	icons := make([]secondary.IconData, len(resp.MapItems))
	for i, item := range resp.MapItems {
		icons[i] = secondary.IconData{X: item.X, Y: item.Y, IconType: item.IconType, Flags: item.Flags}
	}
	return icons, nil
}

// get waits on the rate limiter, fetches path and decodes its JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", path).Warn("war api request failed")
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).WithField("endpoint", path).Warn("failed to close war api response")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"endpoint": path,
			"status":   resp.StatusCode,
		}).Warn("war api returned an error status")
		return fmt.Errorf("failed to fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.WithError(err).WithField("endpoint", path).Warn("war api returned malformed json")
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
