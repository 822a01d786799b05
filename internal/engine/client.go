/*
PURPOSE:
  REST client for the simulation backend.
  Fetches operating conditions, simulation results and strain monitoring data.

REQUIREMENTS:
  User-specified:
  - Query fluid and structural conditions and results.
  - Query strain monitoring data for a time range.

  Implementation-discovered:
  - Every body is an envelope {code, msg, data}; payloads live under data.
  - Base URL and timeout come from config; the mesh decoder shares the base URL.
  - Results must never be cached: each fetch is a new result identity.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/viewer (as the slot Fetcher)
  - Uses: internal/config, internal/model, internal/output

ERROR HANDLING:
  - Retries network errors and 5xx with a fixed delay.
  - Never retries after the caller's context is done.
  - Errors are classified: Network/Connection Error, bad status, invalid JSON.

USAGE:
  c := engine.New(cfg)
  res, err := c.Result(ctx, model.DomainFluid, params)

RELATED FILES:
  - internal/engine/cache.go
  - internal/model/types.go
*/

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/turbine-viewer/internal/config"
	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
)

// Endpoint paths.
const (
	PathFluidConditions      = "/api/fluid/conditions"
	PathFluidResult          = "/api/fluid/result"
	PathStructuralConditions = "/api/structural/conditions"
	PathStructuralResult     = "/api/structural/result"
	PathStrainMonitoring     = "/api/strain_monitoring"
)

// ErrBadStatus is wrapped by errors for non-200 responses.
var ErrBadStatus = errors.New("bad status")

// Client handles backend interactions.
type Client struct {
	Config *config.Config
	HTTP   *http.Client

	strain *Cache[[]model.StrainPoint]
}

// New creates a new Client.
func New(cfg *config.Config) *Client {
	return &Client{
		Config: cfg,
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		strain: NewCache[[]model.StrainPoint](cfg.CacheTTL, cfg.CacheMaxEntries),
	}
}

// ResolveURL joins a backend-relative path onto the base URL.
// Absolute URLs are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	return mesh.ResolveURL(c.Config.BaseURL, path)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// getJSON performs GET path?query and decodes the envelope's data into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.ResolveURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for i := 0; i < c.Config.MaxRetries; i++ {
		if i > 0 {
			output.Logger.Info("Retrying request...", "path", path, "attempt", i+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Config.RetryDelay):
			}
		}

		retry, err := c.do(ctx, target, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, target string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("Network/Connection Error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode >= 500, fmt.Errorf("%w: %s: %s", ErrBadStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("backend returned invalid JSON: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return false, fmt.Errorf("backend returned no data (code=%d msg=%q)", env.Code, env.Msg)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("backend returned unexpected payload: %w", err)
	}
	return false, nil
}

// Conditions returns the operating conditions offered for a domain.
func (c *Client) Conditions(ctx context.Context, d model.Domain) ([]model.Condition, error) {
	path := PathFluidConditions
	if d == model.DomainStructural {
		path = PathStructuralConditions
	}

	var payload struct {
		Conditions []model.Condition `json:"conditions"`
	}
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("get %s conditions: %w", d, err)
	}
	return payload.Conditions, nil
}

// Result fetches a simulation result. Each call yields a fresh identity.
func (c *Client) Result(ctx context.Context, d model.Domain, p model.QueryParams) (*model.SimulationResult, error) {
	res := &model.SimulationResult{
		ID:     uuid.NewString(),
		Domain: d,
		Params: p,
	}

	var err error
	switch d {
	case model.DomainFluid:
		res.Fluid = &model.FluidResult{}
		err = c.getJSON(ctx, PathFluidResult, p.Values(), res.Fluid)
	case model.DomainStructural:
		res.Structural = &model.StructuralResult{}
		err = c.getJSON(ctx, PathStructuralResult, p.Values(), res.Structural)
	default:
		return nil, fmt.Errorf("unknown domain %q", d)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s result (%s): %w", d, p, err)
	}
	return res, nil
}

// StrainMonitoring returns strain points between start and stop (unix seconds).
// Responses are cached per range for the configured TTL.
func (c *Client) StrainMonitoring(ctx context.Context, start, stop int64) ([]model.StrainPoint, error) {
	key := strconv.FormatInt(start, 10) + ":" + strconv.FormatInt(stop, 10)
	return c.strain.GetOrLoad(key, func() ([]model.StrainPoint, error) {
		q := url.Values{}
		q.Set("start_time", strconv.FormatInt(start, 10))
		q.Set("stop_time", strconv.FormatInt(stop, 10))

		var payload struct {
			Points []model.StrainPoint `json:"points"`
		}
		if err := c.getJSON(ctx, PathStrainMonitoring, q, &payload); err != nil {
			return nil, fmt.Errorf("get strain monitoring: %w", err)
		}
		return payload.Points, nil
	})
}
