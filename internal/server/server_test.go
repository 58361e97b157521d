package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wayfinder/pkg/compose"
	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/navigator"
	"github.com/matzehuels/wayfinder/pkg/store"
)

func nb(id string, w float64) graph.NeighborSpec {
	return graph.NeighborSpec{ID: id, Weight: w, Direction: graph.Constant(graph.TurnStraight)}
}

// testSite: c1 --10-- c2 --5-- eP1_1 into P1, c2 --20-- eK_1 into K.
// Building Z has an entrance the campus does not know.
func testSite(t *testing.T) *graph.Site {
	t.Helper()
	c := graph.NewCampus("campus")
	check(t, c.Load([]graph.NodeSpec{
		{ID: "c1", Lat: 50.8100, Lon: 4.3800, Neighbors: []graph.NeighborSpec{nb("c2", 10)}},
		{ID: "c2", Lat: 50.8110, Lon: 4.3800, Neighbors: []graph.NeighborSpec{nb("c1", 10), nb("eP1_1", 5), nb("eK_1", 20)}},
		{ID: "eP1_1", Lat: 50.8120, Lon: 4.3800, Neighbors: []graph.NeighborSpec{nb("c2", 5)}},
		{ID: "eK_1", Lat: 50.8130, Lon: 4.3820, Neighbors: []graph.NeighborSpec{nb("c2", 20)}},
	}))
	check(t, c.Seal())
	s := graph.NewSite(c)
	s.Revision = "test"
	for name, rooms := range map[string][]graph.NodeSpec{
		"P1": {
			{ID: "eP1_1", Neighbors: []graph.NeighborSpec{nb("H1", 2)}},
			{ID: "H1", Neighbors: []graph.NeighborSpec{nb("E1", 3), nb("eP1_1", 2)}},
			{ID: "E1", Name: "Lab", Neighbors: []graph.NeighborSpec{nb("H1", 3)}},
		},
		"K": {
			{ID: "eK_1", Neighbors: []graph.NeighborSpec{nb("H1", 2)}},
			{ID: "H1", Neighbors: []graph.NeighborSpec{nb("E7", 2), nb("eK_1", 2)}},
			{ID: "E7", Neighbors: []graph.NeighborSpec{nb("H1", 2)}},
		},
		"Z": {
			{ID: "eZ_1", Neighbors: []graph.NeighborSpec{nb("E1", 1)}},
			{ID: "E1"},
		},
	} {
		b := graph.NewBuilding(name)
		check(t, b.Load([]graph.FloorSpec{{Floor: 0, Rooms: rooms}}))
		check(t, b.Seal())
		check(t, s.AddBuilding(b))
	}
	return s
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) http.Handler {
	t.Helper()
	logger := log.New(io.Discard)
	runner := navigator.NewRunner(compose.New(testSite(t)), nil, nil, logger)
	if cfg.Rate == 0 {
		cfg = config.Default().Server
	}
	return New(runner, store.NewMemory(), cfg, time.Hour, logger).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	w := do(t, newTestServer(t, config.ServerConfig{}), "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if resp := decode[map[string]string](t, w); resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestBuildings(t *testing.T) {
	w := do(t, newTestServer(t, config.ServerConfig{}), "GET", "/api/buildings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	resp := decode[struct {
		Campus    string          `json:"campus"`
		Bounds    [2]graph.LatLon `json:"bounds"`
		Buildings []BuildingInfo  `json:"buildings"`
	}](t, w)
	if want := [2]graph.LatLon{{Lat: 50.81, Lon: 4.38}, {Lat: 50.813, Lon: 4.382}}; resp.Bounds != want {
		t.Errorf("bounds = %v, want %v", resp.Bounds, want)
	}
	if resp.Campus != "campus" || len(resp.Buildings) != 3 || resp.Buildings[0].Name != "K" {
		t.Errorf("response = %+v", resp)
	}
	if got := resp.Buildings[1].Entrances; len(got) != 1 || got[0] != "eP1_1" {
		t.Errorf("P1 entrances = %v", got)
	}
}

func TestAskAndFetch(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{})
	tests := []struct {
		name  string
		path  string
		body  string
		kind  navigator.Kind
		total float64
	}{
		{"outside", "/api/ask_outside", `{"coords": [50.81, 4.38], "arrival": "P1:Lab"}`, navigator.KindOutside, 20},
		{"inside", "/api/ask_inside", `{"start": "P1:H1_0", "arrival": "P1:Lab"}`, navigator.KindInside, 3},
		{"from inside", "/api/ask_from_inside", `{"start": "K:E7_0", "arrival": "P1:Lab", "locale": "fr"}`, navigator.KindBetween, 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", tt.path, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status %d: %s", w.Code, w.Body)
			}
			resp := decode[RouteResponse](t, w)
			if resp.Result == nil || resp.Kind != tt.kind || resp.Total != tt.total {
				t.Fatalf("response = %+v", resp)
			}
			if err := store.ValidateID(resp.ID); err != nil {
				t.Fatal(err)
			}

			w = do(t, h, "GET", "/api/routes/"+resp.ID, "")
			if w.Code != http.StatusOK {
				t.Fatalf("fetch status %d: %s", w.Code, w.Body)
			}
			stored := decode[RouteResponse](t, w)
			if stored.ID != resp.ID || stored.Total != tt.total || len(stored.Legs) != len(resp.Legs) {
				t.Errorf("stored = %+v", stored)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{})
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed body", "POST", "/api/ask_inside", `{"start":`, 400, errors.ErrCodeInvalidInput},
		{"inside across buildings", "POST", "/api/ask_inside", `{"start": "K:E7_0", "arrival": "P1:Lab"}`, 400, errors.ErrCodeInvalidQuery},
		{"missing start", "POST", "/api/ask_from_inside", `{"arrival": "P1:Lab"}`, 400, errors.ErrCodeInvalidQuery},
		{"bad coords", "POST", "/api/ask_outside", `{"coords": [50.81], "arrival": "P1:Lab"}`, 400, errors.ErrCodeInvalidQuery},
		{"unknown building", "POST", "/api/ask_outside", `{"coords": [50.81, 4.38], "arrival": "Q:Lab"}`, 404, errors.ErrCodeUnknownBuilding},
		{"unknown room", "POST", "/api/ask_outside", `{"coords": [50.81, 4.38], "arrival": "P1:Attic"}`, 404, errors.ErrCodeNodeNotFound},
		{"no route", "POST", "/api/ask_outside", `{"coords": [50.81, 4.38], "arrival": "Z:E1_0"}`, 422, errors.ErrCodeNoRoute},
		{"unknown route id", "GET", "/api/routes/" + store.NewID(), "", 404, errors.ErrCodeNotFound},
		{"malformed route id", "GET", "/api/routes/abc", "", 400, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body)
			}
			if body := decode[errorBody](t, w); body.Code != tt.code || body.Error == "" {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{Rate: 0.5, Burst: 1, CORSOrigin: "*"})
	if w := do(t, h, "GET", "/api/buildings", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do(t, h, "GET", "/api/buildings", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q", got)
	}
	if body := decode[errorBody](t, w); body.Code != errors.ErrCodeRateLimited {
		t.Errorf("body = %+v", body)
	}
	// Health checks are not limited.
	if w := do(t, h, "GET", "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health: %d", w.Code)
	}
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{Rate: 1, Burst: 1, CORSOrigin: "*"})
	allowed := 0
	for i := range 10 {
		req := httptest.NewRequest("GET", "/api/buildings", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i+1))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("allowed %d of 10 requests with rotating X-Forwarded-For, want 1", allowed)
	}
}

func TestLimiterEvictsIdleClients(t *testing.T) {
	l := newLimiter(1, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	l.get("192.0.2.1")
	l.get("192.0.2.2")
	now = now.Add(limiterIdle / 2)
	l.get("192.0.2.2")
	if n := l.size(); n != 2 {
		t.Fatalf("clients = %d, want 2", n)
	}

	now = now.Add(limiterIdle / 2)
	l.get("192.0.2.3")
	if n := l.size(); n != 2 {
		t.Errorf("clients after sweep = %d, want 2", n)
	}
	if _, ok := l.clients["192.0.2.1"]; ok {
		t.Error("idle client was not evicted")
	}
}

func TestDefaultLocale(t *testing.T) {
	cfg := config.Default().Server
	cfg.Locale = "fr"
	h := newTestServer(t, cfg)

	w := do(t, h, "POST", "/api/ask_inside", `{"start": "P1:H1_0", "arrival": "P1:Lab"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	resp := decode[RouteResponse](t, w)
	if resp.Locale != "fr" || len(resp.Legs) != 1 || len(resp.Legs[0].Instructions) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if got := resp.Legs[0].Instructions[0].Text; got != "La salle Lab est en face de vous" {
		t.Errorf("text = %q", got)
	}

	w = do(t, h, "POST", "/api/ask_inside", `{"start": "P1:H1_0", "arrival": "P1:Lab", "locale": "en"}`)
	if resp := decode[RouteResponse](t, w); resp.Locale != "en" {
		t.Errorf("explicit locale overridden: %q", resp.Locale)
	}
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestServer(t, config.ServerConfig{}), "OPTIONS", "/api/ask_inside", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeInvalidQuery:    400,
		errors.ErrCodeUnknownBuilding: 404,
		errors.ErrCodeNoRoute:         422,
		errors.ErrCodeCorruptGraph:    500,
		errors.ErrCodeInternal:        500,
		errors.ErrCodeRateLimited:     429,
	}
	for code, want := range tests {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestRunShutsDown(t *testing.T) {
	logger := log.New(io.Discard)
	runner := navigator.NewRunner(compose.New(testSite(t)), nil, nil, logger)
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	srv := New(runner, store.NewMemory(), cfg, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
