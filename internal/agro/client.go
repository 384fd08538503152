package agro

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// #endregion

// #region errors

// ErrNoAPIKey is returned when the gateway is called without credentials.
// Callers treat it like any other gateway failure: no enrichment.
var ErrNoAPIKey = errors.New("agro: api key missing")

// #endregion errors

// #region types

// Observation is one soil or weather reading after boundary
// normalization. The upstream API returns either a single object or an
// array of objects; the client always hands callers a flat mapping, so
// merge logic never branches on shape. Values may be missing or
// non-numeric; consumers must tolerate both.
type Observation map[string]any

// Polygon is the gateway's record of a stored geographic area.
type Polygon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchResult bundles the payloads from a coordinate-based fetch.
type FetchResult struct {
	PolygonID string
	Soil      Observation
	Weather   Observation
}

// TraceFunc receives human-readable gateway trace lines. The dialogue
// controller routes these into the session event log.
type TraceFunc func(format string, args ...any)

// #endregion types

// #region client-struct

// Client talks to the Agromonitoring REST API.
type Client struct {
	cfg   Config
	httpc *http.Client
	trace TraceFunc
}

// NewClient creates a gateway client. trace may be nil, in which case
// lines go to the process log.
func NewClient(cfg Config, trace TraceFunc) *Client {
	if trace == nil {
		trace = func(format string, args ...any) {
			log.Printf("[AGRO] "+format, args...)
		}
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		trace: trace,
	}
}

// #endregion client-struct

// #region create-polygon

// CreatePolygon registers a polygon with the gateway. geo may be a
// Feature, a FeatureCollection (first feature is used), or a bare
// geometry, which gets wrapped. Returns the stored polygon or an error;
// all errors are non-fatal to the conversation.
func (c *Client) CreatePolygon(ctx context.Context, geo map[string]any, name string) (*Polygon, error) {
	if c.cfg.APIKey == "" {
		c.trace("Agro API key missing.")
		return nil, ErrNoAPIKey
	}

	feature, err := normalizeFeature(geo)
	if err != nil {
		c.trace("%v", err)
		return nil, err
	}
	if name == "" {
		name = "field_" + uuid.New().String()[:8]
	}

	payload := map[string]any{"name": name, "geo_json": feature}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal polygon: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/polygons", nil), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create polygon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.trace("Polygon create error: %v", err)
		return nil, fmt.Errorf("create polygon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.trace("Polygon creation failed: %d %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("create polygon: status %d", resp.StatusCode)
	}

	var poly Polygon
	if err := json.NewDecoder(resp.Body).Decode(&poly); err != nil {
		return nil, fmt.Errorf("decode polygon: %w", err)
	}
	if poly.Name == "" {
		poly.Name = name
	}
	c.trace("Created polygon %s -> %s", name, poly.ID)
	return &poly, nil
}

// normalizeFeature reduces the accepted GeoJSON shapes to one Feature.
func normalizeFeature(geo map[string]any) (map[string]any, error) {
	switch geo["type"] {
	case "FeatureCollection":
		feats, _ := geo["features"].([]any)
		if len(feats) == 0 {
			return nil, errors.New("empty FeatureCollection")
		}
		first, ok := feats[0].(map[string]any)
		if !ok {
			return nil, errors.New("malformed FeatureCollection")
		}
		return first, nil
	case "Feature":
		return geo, nil
	default:
		return map[string]any{
			"type":       "Feature",
			"properties": map[string]any{},
			"geometry":   geo,
		}, nil
	}
}

// #endregion create-polygon

// #region delete-polygon

// DeletePolygon removes a stored polygon. Nil error means deleted.
func (c *Client) DeletePolygon(ctx context.Context, polyID string) error {
	if c.cfg.APIKey == "" || polyID == "" {
		return ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/polygons/"+polyID, nil), nil)
	if err != nil {
		return fmt.Errorf("delete polygon request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.trace("Polygon delete error: %v", err)
		return fmt.Errorf("delete polygon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.trace("Polygon delete failed: %d", resp.StatusCode)
		return fmt.Errorf("delete polygon: status %d", resp.StatusCode)
	}
	c.trace("Deleted polygon %s", polyID)
	return nil
}

// #endregion delete-polygon

// #region observations

// GetSoil fetches the current soil observation for a polygon.
func (c *Client) GetSoil(ctx context.Context, polyID string) (Observation, error) {
	return c.getObservation(ctx, "/soil", "Soil", polyID)
}

// GetWeather fetches the current weather observation for a polygon.
func (c *Client) GetWeather(ctx context.Context, polyID string) (Observation, error) {
	return c.getObservation(ctx, "/weather", "Weather", polyID)
}

func (c *Client) getObservation(ctx context.Context, path, label, polyID string) (Observation, error) {
	if c.cfg.APIKey == "" || polyID == "" {
		return nil, ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint(path, url.Values{"polyid": {polyID}}), nil)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", label, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.trace("%s fetch error: %v", label, err)
		return nil, fmt.Errorf("%s fetch: %w", label, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read: %w", label, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.trace("%s fetch failed: %d %s", label, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%s fetch: status %d", label, resp.StatusCode)
	}

	obs, err := firstObservation(body)
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", label, err)
	}
	return obs, nil
}

// firstObservation normalizes the API's two response shapes (object or
// array of objects) to a single mapping. An empty array yields nil.
func firstObservation(body []byte) (Observation, error) {
	var list []Observation
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return list[0], nil
	}
	var single Observation
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return single, nil
}

// #endregion observations

// #region fetch-by-coordinate

// halfWidthDeg is the half-width of the temporary square polygon built
// around a coordinate fetch.
const halfWidthDeg = 0.001

// FetchByCoordinate builds a small square polygon around the point,
// fetches soil and weather for it, and deletes the polygon again when
// cleanup is set. A delete failure is traced but does not fail the fetch.
func (c *Client) FetchByCoordinate(ctx context.Context, lat, lon float64, cleanup bool) (*FetchResult, error) {
	if c.cfg.APIKey == "" {
		c.trace("Agro API key missing; cannot fetch by location.")
		return nil, ErrNoAPIKey
	}

	geometry := map[string]any{
		"type": "Polygon",
		"coordinates": []any{[]any{
			[]any{lon - halfWidthDeg, lat - halfWidthDeg},
			[]any{lon + halfWidthDeg, lat - halfWidthDeg},
			[]any{lon + halfWidthDeg, lat + halfWidthDeg},
			[]any{lon - halfWidthDeg, lat + halfWidthDeg},
			[]any{lon - halfWidthDeg, lat - halfWidthDeg},
		}},
	}

	poly, err := c.CreatePolygon(ctx, geometry, "")
	if err != nil {
		return nil, err
	}
	if poly.ID == "" {
		return nil, errors.New("agro: polygon created without id")
	}

	soil, soilErr := c.GetSoil(ctx, poly.ID)
	weather, weatherErr := c.GetWeather(ctx, poly.ID)

	if cleanup {
		if err := c.DeletePolygon(ctx, poly.ID); err != nil {
			c.trace("Cleanup of polygon %s failed: %v", poly.ID, err)
		}
	}

	if soilErr != nil && weatherErr != nil {
		return nil, fmt.Errorf("fetch by coordinate: %w", soilErr)
	}
	return &FetchResult{PolygonID: poly.ID, Soil: soil, Weather: weather}, nil
}

// #endregion fetch-by-coordinate

// #region endpoint

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("appid", c.cfg.APIKey)
	return c.cfg.BaseURL + path + "?" + query.Encode()
}

// #endregion endpoint
