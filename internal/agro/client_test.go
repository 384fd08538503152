package agro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		Enabled: true,
	}
}

func discardTrace(format string, args ...any) {}

func TestCreatePolygon_WrapsBareGeometry(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/polygons" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("appid") != "test-key" {
			t.Error("appid query param missing")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(Polygon{ID: "poly-123"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	geometry := map[string]any{"type": "Polygon", "coordinates": []any{}}
	poly, err := c.CreatePolygon(context.Background(), geometry, "my field")
	if err != nil {
		t.Fatal(err)
	}
	if poly.ID != "poly-123" {
		t.Errorf("id: got %q", poly.ID)
	}
	if poly.Name != "my field" {
		t.Errorf("name: got %q, want fallback to requested name", poly.Name)
	}

	geo, _ := gotBody["geo_json"].(map[string]any)
	if geo["type"] != "Feature" {
		t.Errorf("bare geometry not wrapped as Feature: %v", geo["type"])
	}
	if _, ok := geo["geometry"]; !ok {
		t.Error("wrapped feature lacks geometry")
	}
}

func TestCreatePolygon_FeatureCollection(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(Polygon{ID: "poly-fc", Name: "server-name"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	collection := map[string]any{
		"type": "FeatureCollection",
		"features": []any{
			map[string]any{"type": "Feature", "properties": map[string]any{"n": 1.0}},
			map[string]any{"type": "Feature", "properties": map[string]any{"n": 2.0}},
		},
	}
	poly, err := c.CreatePolygon(context.Background(), collection, "f")
	if err != nil {
		t.Fatal(err)
	}
	if poly.Name != "server-name" {
		t.Errorf("server-assigned name should win: %q", poly.Name)
	}

	geo, _ := gotBody["geo_json"].(map[string]any)
	props, _ := geo["properties"].(map[string]any)
	if props["n"] != 1.0 {
		t.Errorf("expected first feature of collection, got %v", props)
	}
}

func TestCreatePolygon_EmptyFeatureCollection(t *testing.T) {
	c := NewClient(testConfig("http://unused"), discardTrace)
	_, err := c.CreatePolygon(context.Background(),
		map[string]any{"type": "FeatureCollection", "features": []any{}}, "f")
	if err == nil {
		t.Fatal("expected error for empty FeatureCollection")
	}
}

func TestCreatePolygon_NoAPIKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.APIKey = ""
	c := NewClient(cfg, discardTrace)
	_, err := c.CreatePolygon(context.Background(), map[string]any{"type": "Feature"}, "f")
	if err != ErrNoAPIKey {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

func TestCreatePolygon_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad polygon", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	_, err := c.CreatePolygon(context.Background(), map[string]any{"type": "Feature"}, "f")
	if err == nil || !strings.Contains(err.Error(), "status 422") {
		t.Errorf("got %v, want status error", err)
	}
}

func TestGetSoil_ObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/soil" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.URL.Query().Get("polyid") != "poly-1" {
			t.Errorf("polyid: got %q", r.URL.Query().Get("polyid"))
		}
		json.NewEncoder(w).Encode(map[string]any{"moisture": 0.22, "t10": 290.1})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	obs, err := c.GetSoil(context.Background(), "poly-1")
	if err != nil {
		t.Fatal(err)
	}
	if obs["moisture"] != 0.22 {
		t.Errorf("moisture: got %v", obs["moisture"])
	}
}

func TestGetWeather_ArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"temperature": 301.2, "rain": 0.0},
			{"temperature": 999.0},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	obs, err := c.GetWeather(context.Background(), "poly-1")
	if err != nil {
		t.Fatal(err)
	}
	if obs["temperature"] != 301.2 {
		t.Errorf("expected first element of array response, got %v", obs["temperature"])
	}
}

func TestGetSoil_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	obs, err := c.GetSoil(context.Background(), "poly-1")
	if err != nil {
		t.Fatal(err)
	}
	if obs != nil {
		t.Errorf("empty array should yield nil observation, got %v", obs)
	}
}

func TestGetSoil_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	if _, err := c.GetSoil(context.Background(), "poly-1"); err == nil {
		t.Error("expected error on 500")
	}
}

func TestFetchByCoordinate_CleanupDeletes(t *testing.T) {
	var deleted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/polygons":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			geo, _ := body["geo_json"].(map[string]any)
			if geo["type"] != "Feature" {
				t.Errorf("coordinate polygon not wrapped: %v", geo["type"])
			}
			json.NewEncoder(w).Encode(Polygon{ID: "tmp-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/soil":
			json.NewEncoder(w).Encode(map[string]any{"moisture": 0.3})
		case r.Method == http.MethodGet && r.URL.Path == "/weather":
			json.NewEncoder(w).Encode(map[string]any{"rain": 1.5})
		case r.Method == http.MethodDelete && r.URL.Path == "/polygons/tmp-1":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	res, err := c.FetchByCoordinate(context.Background(), 12.9716, 77.5946, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.PolygonID != "tmp-1" {
		t.Errorf("polygon id: got %q", res.PolygonID)
	}
	if res.Soil["moisture"] != 0.3 {
		t.Errorf("soil: got %v", res.Soil)
	}
	if res.Weather["rain"] != 1.5 {
		t.Errorf("weather: got %v", res.Weather)
	}
	if !deleted {
		t.Error("temporary polygon was not deleted")
	}
}

func TestFetchByCoordinate_PartialFailureTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(Polygon{ID: "tmp-2"})
		case r.URL.Path == "/soil":
			http.Error(w, "soil down", http.StatusBadGateway)
		case r.URL.Path == "/weather":
			json.NewEncoder(w).Encode(map[string]any{"temperature": 300.0})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	res, err := c.FetchByCoordinate(context.Background(), 1, 2, false)
	if err != nil {
		t.Fatalf("one working feed should be enough: %v", err)
	}
	if res.Soil != nil {
		t.Errorf("soil should be absent, got %v", res.Soil)
	}
	if res.Weather["temperature"] != 300.0 {
		t.Errorf("weather: got %v", res.Weather)
	}
}

func TestFetchByCoordinate_BothFeedsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(Polygon{ID: "tmp-3"})
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), discardTrace)
	if _, err := c.FetchByCoordinate(context.Background(), 1, 2, false); err == nil {
		t.Error("expected error when both feeds fail")
	}
}
